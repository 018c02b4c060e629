package speech

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAIServer(t *testing.T, handler http.HandlerFunc) openai.ClientConfig {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return cfg
}

func TestOpenAITranscriber(t *testing.T) {
	cfg := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "en", r.FormValue("language"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "clip.ogg", hdr.Filename)
		body, _ := io.ReadAll(f)
		assert.Equal(t, "OggS-data", string(body))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": " Teamwork matters. "})
	})

	tr := NewOpenAITranscriber(cfg, "en-US")
	text, err := tr.Transcribe(context.Background(), Audio{Data: []byte("OggS-data"), Filename: "clip.ogg"})
	require.NoError(t, err)
	assert.Equal(t, "Teamwork matters.", text)
}

func TestOpenAITranscriber_EmptyIsNoSpeech(t *testing.T) {
	cfg := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":""}`))
	})

	_, err := NewOpenAITranscriber(cfg, "").Transcribe(context.Background(), Audio{Data: []byte("x")})
	assert.True(t, errors.Is(err, ErrNoSpeech))
}

func TestOpenAISynthesizer(t *testing.T) {
	cfg := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/speech", r.URL.Path)
		var req openai.CreateSpeechRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Solid effort.", req.Input)
		assert.Equal(t, openai.SpeechResponseFormatOpus, req.ResponseFormat)
		assert.Equal(t, openai.VoiceAlloy, req.Voice)
		_, _ = w.Write([]byte("opus-bytes"))
	})

	audio, err := NewOpenAISynthesizer(cfg, "", 1.0).Synthesize(context.Background(), "Solid effort.")
	require.NoError(t, err)
	assert.Equal(t, []byte("opus-bytes"), audio)
}

func TestOpenAISynthesizer_Error(t *testing.T) {
	cfg := newOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
	})

	_, err := NewOpenAISynthesizer(cfg, "nova", 1.0).Synthesize(context.Background(), "x")
	assert.Error(t, err)
}

func TestBaseLanguage(t *testing.T) {
	assert.Equal(t, "en", baseLanguage("en-US"))
	assert.Equal(t, "de", baseLanguage("DE"))
	assert.Equal(t, "", baseLanguage(""))
}
