package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
)

type OpenAITranscriber struct {
	client   *openai.Client
	model    string
	language string
}

// NewOpenAITranscriber uses the Whisper transcription endpoint. language is an
// ISO-639-1 code or a BCP-47 tag such as "en-US" (the region is dropped).
func NewOpenAITranscriber(cfg openai.ClientConfig, language string) *OpenAITranscriber {
	return &OpenAITranscriber{
		client:   openai.NewClientWithConfig(cfg),
		model:    openai.Whisper1,
		language: baseLanguage(language),
	}
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, audio Audio) (string, error) {
	name := audio.Filename
	if name == "" {
		name = "voice.ogg"
	}
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: name,
		Reader:   bytes.NewReader(audio.Data),
		Language: t.language,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

type OpenAISynthesizer struct {
	client *openai.Client
	voice  openai.SpeechVoice
	speed  float64
}

func NewOpenAISynthesizer(cfg openai.ClientConfig, voice string, speed float64) *OpenAISynthesizer {
	v := openai.VoiceAlloy
	if voice != "" {
		v = openai.SpeechVoice(voice)
	}
	return &OpenAISynthesizer{client: openai.NewClientWithConfig(cfg), voice: v, speed: speed}
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: openai.SpeechResponseFormatOpus,
		Speed:          s.speed,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech failed: %w", err)
	}
	defer func() {
		_ = resp.Close()
	}()
	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech: %w", err)
	}
	return data, nil
}

func baseLanguage(tag string) string {
	lang, _, _ := strings.Cut(tag, "-")
	return strings.ToLower(lang)
}
