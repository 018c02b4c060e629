package speech

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gspeech "google.golang.org/api/speech/v1"
	"google.golang.org/api/texttospeech/v1"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// GoogleAuth selects how Google Cloud clients authenticate. With neither
// field set, Application Default Credentials are used.
type GoogleAuth struct {
	CredentialsFile string
	APIKey          string
}

func (a GoogleAuth) options(ctx context.Context) ([]option.ClientOption, error) {
	switch {
	case a.CredentialsFile != "":
		data, err := os.ReadFile(a.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read google credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("parse google credentials: %w", err)
		}
		return []option.ClientOption{option.WithCredentials(creds)}, nil
	case a.APIKey != "":
		return []option.ClientOption{option.WithAPIKey(a.APIKey)}, nil
	default:
		return nil, nil
	}
}

type GoogleTranscriber struct {
	svc      *gspeech.Service
	language string
}

// NewGoogleTranscriber creates a Cloud Speech-to-Text client. Extra options
// are appended after the auth options (tests point the endpoint elsewhere).
func NewGoogleTranscriber(ctx context.Context, auth GoogleAuth, language string, opts ...option.ClientOption) (*GoogleTranscriber, error) {
	base, err := auth.options(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := gspeech.NewService(ctx, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("init google speech: %w", err)
	}
	return &GoogleTranscriber{svc: svc, language: language}, nil
}

func (t *GoogleTranscriber) Transcribe(ctx context.Context, audio Audio) (string, error) {
	cfg := &gspeech.RecognitionConfig{
		LanguageCode:               t.language,
		EnableAutomaticPunctuation: true,
	}
	// Telegram voice notes are 48kHz OGG/Opus; other containers are detected
	// by the service from their headers.
	if isOgg(audio) {
		cfg.Encoding = "OGG_OPUS"
		cfg.SampleRateHertz = 48000
	}
	resp, err := t.svc.Speech.Recognize(&gspeech.RecognizeRequest{
		Config: cfg,
		Audio:  &gspeech.RecognitionAudio{Content: base64.StdEncoding.EncodeToString(audio.Data)},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("google speech recognition failed: %w", err)
	}
	var parts []string
	for _, r := range resp.Results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			continue
		}
		if s := strings.TrimSpace(r.Alternatives[0].Transcript); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "", ErrNoSpeech
	}
	return strings.Join(parts, " "), nil
}

type GoogleSynthesizer struct {
	svc      *texttospeech.Service
	language string
	voice    string
	rate     float64
}

func NewGoogleSynthesizer(ctx context.Context, auth GoogleAuth, language, voice string, rate float64, opts ...option.ClientOption) (*GoogleSynthesizer, error) {
	base, err := auth.options(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := texttospeech.NewService(ctx, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("init google text-to-speech: %w", err)
	}
	return &GoogleSynthesizer{svc: svc, language: language, voice: voice, rate: rate}, nil
}

func (s *GoogleSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := s.svc.Text.Synthesize(&texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{LanguageCode: s.language, Name: s.voice},
		AudioConfig: &texttospeech.AudioConfig{
			AudioEncoding: "OGG_OPUS",
			SpeakingRate:  s.rate,
		},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google synthesis failed: %w", err)
	}
	data, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode synthesized audio: %w", err)
	}
	return data, nil
}

func isOgg(a Audio) bool {
	return strings.Contains(a.MimeType, "ogg") ||
		strings.HasSuffix(strings.ToLower(a.Filename), ".ogg") ||
		strings.HasSuffix(strings.ToLower(a.Filename), ".oga")
}
