package speech

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidTransition = errors.New("invalid capture transition")

type CaptureState int

const (
	Idle CaptureState = iota
	Listening
	Stopped
)

func (s CaptureState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Listening:
		return "listening"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("CaptureState(%d)", int(s))
	}
}

// Capture accumulates transcribed clips of one answer. It is a value: every
// transition returns the next Capture and leaves the receiver untouched.
//
//	idle ──Start──► listening ──Stop──► stopped ──Start──► listening
type Capture struct {
	State      CaptureState
	Transcript string
}

// Start begins a new recording, discarding any previous transcript.
func (c Capture) Start() (Capture, error) {
	if c.State == Listening {
		return c, fmt.Errorf("%w: already listening", ErrInvalidTransition)
	}
	return Capture{State: Listening}, nil
}

// Add appends a transcribed clip while listening. Blank text is ignored.
func (c Capture) Add(text string) (Capture, error) {
	if c.State != Listening {
		return c, fmt.Errorf("%w: add while %s", ErrInvalidTransition, c.State)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return c, nil
	}
	if c.Transcript != "" {
		c.Transcript += " "
	}
	c.Transcript += text
	return c, nil
}

// Stop ends the recording; the transcript is kept for evaluation.
func (c Capture) Stop() (Capture, error) {
	if c.State != Listening {
		return c, fmt.Errorf("%w: stop while %s", ErrInvalidTransition, c.State)
	}
	c.State = Stopped
	return c, nil
}
