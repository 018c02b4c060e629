package speech

import (
	"context"
	"fmt"
	"strings"

	"verbal-trainer/internal/config"
	"verbal-trainer/internal/llm"
)

func googleAuth(cfg *config.Config) GoogleAuth {
	return GoogleAuth{CredentialsFile: cfg.GoogleCredentialsPath, APIKey: cfg.GoogleAPIKey}
}

// NewTranscriber builds the transcriber selected by STT_PROVIDER. It returns
// nil for "none", in which case voice input is disabled.
func NewTranscriber(ctx context.Context, cfg *config.Config) (Transcriber, error) {
	switch strings.ToLower(cfg.STTProvider) {
	case config.SpeechOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for openai transcription")
		}
		return NewOpenAITranscriber(llm.OpenAIConfig(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenRouterReferrer, cfg.OpenRouterTitle), cfg.SpeechLanguage), nil
	case config.SpeechGoogle:
		t, err := NewGoogleTranscriber(ctx, googleAuth(cfg), cfg.SpeechLanguage)
		if err != nil {
			return nil, err
		}
		return t, nil
	case config.SpeechNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown stt provider: %s", cfg.STTProvider)
	}
}

// NewSynthesizer builds the synthesizer selected by TTS_PROVIDER, or nil.
func NewSynthesizer(ctx context.Context, cfg *config.Config) (Synthesizer, error) {
	switch strings.ToLower(cfg.TTSProvider) {
	case config.SpeechGoogle:
		s, err := NewGoogleSynthesizer(ctx, googleAuth(cfg), cfg.SpeechLanguage, cfg.TTSVoice, cfg.TTSSpeakingRate)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.SpeechOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for openai speech")
		}
		return NewOpenAISynthesizer(llm.OpenAIConfig(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenRouterReferrer, cfg.OpenRouterTitle), cfg.TTSVoice, cfg.TTSSpeakingRate), nil
	case config.SpeechNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown tts provider: %s", cfg.TTSProvider)
	}
}
