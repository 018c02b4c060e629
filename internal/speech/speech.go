// Package speech holds the voice collaborators of the trainer: transcription
// of recorded clips, synthesis of spoken feedback and the explicit capture
// state used while a user records a multi-clip answer.
package speech

import (
	"context"
	"errors"
)

// ErrNoSpeech is returned when a clip was processed but contained nothing
// intelligible.
var ErrNoSpeech = errors.New("could not understand audio")

// Audio is an opaque recorded clip. Filename carries the container extension
// the provider uses to detect the format (e.g. "voice.ogg").
type Audio struct {
	Data     []byte
	Filename string
	MimeType string
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio) (string, error)
}

// Synthesizer returns encoded audio (OGG/Opus) for text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
