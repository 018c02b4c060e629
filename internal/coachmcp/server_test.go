package coachmcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verbal-trainer/internal/feedback"
	"verbal-trainer/internal/llm"
	"verbal-trainer/internal/progress"
	"verbal-trainer/internal/trainer"
)

type fakeLLM struct {
	resp llm.Response
	err  error
}

func (f *fakeLLM) Generate(context.Context, []llm.Message) (llm.Response, error) {
	return f.resp, f.err
}

const critique = "Clarity Score: 9/10\nTone Score: 6/10\nStrength: vivid details\nOverall: Engaging story."

func newTestServer(t *testing.T, client llm.Client) (*Server, *progress.FileStore) {
	t.Helper()
	store, err := progress.NewFileStore(filepath.Join(t.TempDir(), "progress.json"))
	require.NoError(t, err)
	coach := trainer.NewCoach(client, store, trainer.Options{})
	return NewServer(coach, store, nil), store
}

func resultText(t *testing.T, res *mcpsdk.CallToolResult, i int) string {
	t.Helper()
	require.NotNil(t, res)
	require.Greater(t, len(res.Content), i)
	tc, ok := res.Content[i].(*mcpsdk.TextContent)
	require.True(t, ok, "content %d is %T", i, res.Content[i])
	return tc.Text
}

func TestHandleExtractFeedback(t *testing.T) {
	s, _ := newTestServer(t, &fakeLLM{})

	res, _, err := s.handleExtractFeedback(context.Background(), &mcpsdk.CallToolRequest{}, &ExtractFeedbackParams{Text: critique})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res, 0), "**Clarity Score:** 9 / 10")
	assert.Contains(t, resultText(t, res, 0), "**Engagement Score:** N/A / 10")

	var rec feedback.Record
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res, 1)), &rec))
	assert.Equal(t, feedback.ScoreOf(9), rec.Score(feedback.Clarity))
	assert.False(t, rec.Score(feedback.Engagement).Valid)
	assert.Equal(t, []string{"- vivid details"}, rec.Strengths)
}

func TestHandleEvaluateResponse(t *testing.T) {
	s, store := newTestServer(t, &fakeLLM{resp: llm.Response{Content: critique}})

	res, _, err := s.handleEvaluateResponse(context.Background(), &mcpsdk.CallToolRequest{}, &EvaluateResponseParams{
		Input: "Once upon a time", Module: "Storytelling", UserID: 7,
	})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res, 0), "**Overall:**\nEngaging story.")

	entries := store.LoadAll()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(7), entries[0].UserID)
	assert.Equal(t, "storytelling", entries[0].ModuleType)
}

func TestHandleEvaluateResponse_Errors(t *testing.T) {
	s, store := newTestServer(t, &fakeLLM{err: errors.New("rate limited")})
	ctx := context.Background()

	_, _, err := s.handleEvaluateResponse(ctx, &mcpsdk.CallToolRequest{}, &EvaluateResponseParams{Input: " "})
	assert.ErrorIs(t, err, trainer.ErrEmptyInput)

	_, _, err = s.handleEvaluateResponse(ctx, &mcpsdk.CallToolRequest{}, &EvaluateResponseParams{Input: "x", Module: "debate"})
	assert.ErrorIs(t, err, trainer.ErrUnknownModule)

	_, _, err = s.handleEvaluateResponse(ctx, &mcpsdk.CallToolRequest{}, &EvaluateResponseParams{Input: "x"})
	assert.ErrorContains(t, err, "rate limited")
	assert.Empty(t, store.LoadAll())
}

func seed(t *testing.T, store *progress.FileStore) {
	t.Helper()
	day := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, e := range []progress.Entry{
		{Timestamp: day, UserID: 1, UserInput: "one", FeedbackText: "Clarity Score: 4/10"},
		{Timestamp: day.Add(time.Hour), UserID: 2, UserInput: "two", FeedbackText: "Clarity Score: 9/10"},
		{Timestamp: day.AddDate(0, 0, 1), UserID: 1, UserInput: "three", FeedbackText: "Clarity Score: 8/10"},
	} {
		require.NoError(t, store.Append(e), "entry %d", i)
	}
}

func TestHandleProgressHistory(t *testing.T) {
	s, store := newTestServer(t, &fakeLLM{})
	ctx := context.Background()

	res, _, err := s.handleProgressHistory(ctx, &mcpsdk.CallToolRequest{}, &ProgressHistoryParams{})
	require.NoError(t, err)
	assert.Equal(t, progress.NoProgress, resultText(t, res, 0))

	seed(t, store)
	res, _, err = s.handleProgressHistory(ctx, &mcpsdk.CallToolRequest{}, &ProgressHistoryParams{UserID: 1, Limit: 1})
	require.NoError(t, err)
	out := resultText(t, res, 0)
	assert.Contains(t, out, "**User Input:**\nthree")
	assert.NotContains(t, out, "one")
	assert.NotContains(t, out, "two")
}

func TestHandleProgressStats(t *testing.T) {
	s, store := newTestServer(t, &fakeLLM{})
	seed(t, store)
	ctx := context.Background()

	res, _, err := s.handleProgressStats(ctx, &mcpsdk.CallToolRequest{}, &ProgressStatsParams{UserID: 1})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res, 0), "Clarity: average 6.0 / 10 over 2, latest 8, trend +4")

	res, _, err = s.handleProgressStats(ctx, &mcpsdk.CallToolRequest{}, &ProgressStatsParams{Date: "2026-03-01"})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res, 0), "Sessions: 2")
	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res, 1)), &parsed))
	assert.Equal(t, "2026-03-01", parsed["date"])

	_, _, err = s.handleProgressStats(ctx, &mcpsdk.CallToolRequest{}, &ProgressStatsParams{Date: "March 1"})
	assert.Error(t, err)
}

func TestToolsOverInMemoryTransport(t *testing.T) {
	s, _ := newTestServer(t, &fakeLLM{resp: llm.Response{Content: critique}})
	ctx := context.Background()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	ss, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer cs.Close()

	res, err := cs.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "extract_feedback",
		Arguments: map[string]any{"text": critique},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res, 0), "**Tone Score:** 6 / 10")

	res, err = cs.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "evaluate_response",
		Arguments: map[string]any{"input": "   "},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestToolsOverHTTP(t *testing.T) {
	s, store := newTestServer(t, &fakeLLM{resp: llm.Response{Content: critique}})
	require.NoError(t, store.Append(progress.Entry{UserID: 5, UserInput: "earlier", FeedbackText: critique}))

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx := context.Background()
	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "http-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, &mcpsdk.StreamableClientTransport{Endpoint: srv.URL}, nil)
	require.NoError(t, err)
	defer cs.Close()

	res, err := cs.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "progress_history",
		Arguments: map[string]any{"user_id": 5},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res, 0), "earlier")
}

func TestRunHTTPStopsOnCancel(t *testing.T) {
	s, _ := newTestServer(t, &fakeLLM{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.RunHTTP(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunHTTP did not return after cancel")
	}
}

func TestNewServerWithoutCoach(t *testing.T) {
	store, err := progress.NewFileStore(filepath.Join(t.TempDir(), "progress.json"))
	require.NoError(t, err)
	s := NewServer(nil, store, &feedback.Extractor{Exclusive: true})

	res, _, err := s.handleExtractFeedback(context.Background(), &mcpsdk.CallToolRequest{}, &ExtractFeedbackParams{Text: "Good, could improve: pacing"})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res, 0), "- No specific strengths identified.")
}
