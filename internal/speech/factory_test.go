package speech

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verbal-trainer/internal/config"
)

func TestNewTranscriber(t *testing.T) {
	ctx := context.Background()

	tr, err := NewTranscriber(ctx, &config.Config{STTProvider: "none"})
	require.NoError(t, err)
	assert.Nil(t, tr)

	tr, err = NewTranscriber(ctx, &config.Config{STTProvider: "OpenAI", OpenAIAPIKey: "key", SpeechLanguage: "en-US"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAITranscriber{}, tr)

	_, err = NewTranscriber(ctx, &config.Config{STTProvider: "openai"})
	assert.Error(t, err)

	_, err = NewTranscriber(ctx, &config.Config{STTProvider: "vosk"})
	assert.Error(t, err)
}

func TestNewSynthesizer(t *testing.T) {
	ctx := context.Background()

	s, err := NewSynthesizer(ctx, &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = NewSynthesizer(ctx, &config.Config{TTSProvider: "openai", OpenAIAPIKey: "key", TTSSpeakingRate: 1})
	require.NoError(t, err)
	assert.IsType(t, &OpenAISynthesizer{}, s)

	s, err = NewSynthesizer(ctx, &config.Config{TTSProvider: "google", GoogleAPIKey: "key", SpeechLanguage: "en-US"})
	require.NoError(t, err)
	assert.IsType(t, &GoogleSynthesizer{}, s)

	_, err = NewSynthesizer(ctx, &config.Config{TTSProvider: "espeak"})
	assert.Error(t, err)
}
