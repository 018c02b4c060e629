// Package coachmcp exposes feedback extraction, evaluation and progress
// queries as MCP tools so agents can use the trainer without the chat UI.
package coachmcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"verbal-trainer/internal/analytics"
	"verbal-trainer/internal/feedback"
	"verbal-trainer/internal/progress"
	"verbal-trainer/internal/trainer"
)

// Server serves the trainer tools over MCP.
//
// Tools:
//
//	extract_feedback   parse critique text into scores and feedback lists
//	evaluate_response  run a full evaluation round and log it
//	progress_history   render the stored history
//	progress_stats     score averages and trends
type Server struct {
	mcpServer *mcpsdk.Server
	coach     *trainer.Coach
	store     progress.Recorder
	extractor *feedback.Extractor
}

func NewServer(coach *trainer.Coach, store progress.Recorder, extractor *feedback.Extractor) *Server {
	if extractor == nil {
		extractor = &feedback.Extractor{}
	}
	s := &Server{
		mcpServer: mcpsdk.NewServer(&mcpsdk.Implementation{
			Name:    "verbal-trainer",
			Version: "1.0.0",
		}, nil),
		coach:     coach,
		store:     store,
		extractor: extractor,
	}
	s.registerTools()
	return s
}

// Run serves over stdin/stdout until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	if err := s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{}); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Handler serves the same tools over the streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return mcpsdk.NewStreamableHTTPHandler(func(*http.Request) *mcpsdk.Server {
		return s.mcpServer
	}, nil)
}

// RunHTTP listens on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("🔗 MCP HTTP endpoint listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "extract_feedback",
		Description: "Parse free-form communication feedback into clarity, tone and engagement scores (0-10 or null), strengths, areas for improvement and an overall summary.",
	}, s.handleExtractFeedback)

	if s.coach != nil {
		mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
			Name:        "evaluate_response",
			Description: "Get structured coaching feedback on a spoken or written response and record it in the progress log.",
		}, s.handleEvaluateResponse)
	}

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "progress_history",
		Description: "Show recorded responses with the feedback they received, oldest first.",
	}, s.handleProgressHistory)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "progress_stats",
		Description: "Summarise progress: sessions per module and average, latest and trend of each score.",
	}, s.handleProgressStats)
}

type ExtractFeedbackParams struct {
	Text string `json:"text" jsonschema:"Feedback text returned by a language model"`
}

type EvaluateResponseParams struct {
	Input  string `json:"input" jsonschema:"The response to evaluate"`
	Module string `json:"module,omitempty" jsonschema:"Training module: impromptu, storytelling, conflict_resolution or general (default)"`
	Topic  string `json:"topic,omitempty" jsonschema:"Topic the response answers (optional)"`
	UserID int64  `json:"user_id,omitempty" jsonschema:"User the round is recorded for (optional)"`
}

type ProgressHistoryParams struct {
	UserID int64 `json:"user_id,omitempty" jsonschema:"Only show this user's rounds (optional, default all)"`
	Limit  int   `json:"limit,omitempty" jsonschema:"Show only the most recent N rounds (optional)"`
}

type ProgressStatsParams struct {
	UserID int64  `json:"user_id,omitempty" jsonschema:"Only include this user's rounds (optional, default all)"`
	Date   string `json:"date,omitempty" jsonschema:"Limit to one UTC day, YYYY-MM-DD (optional)"`
}

func (s *Server) handleExtractFeedback(ctx context.Context, req *mcpsdk.CallToolRequest, params *ExtractFeedbackParams) (*mcpsdk.CallToolResult, any, error) {
	rec := s.extractor.Extract(params.Text)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode record: %w", err)
	}
	return textResult(feedback.Format(rec), string(data)), nil, nil
}

func (s *Server) handleEvaluateResponse(ctx context.Context, req *mcpsdk.CallToolRequest, params *EvaluateResponseParams) (*mcpsdk.CallToolResult, any, error) {
	module := trainer.General
	if strings.TrimSpace(params.Module) != "" {
		m, err := trainer.ParseModule(params.Module)
		if err != nil {
			return nil, nil, err
		}
		module = m
	}

	ev, err := s.coach.Evaluate(ctx, trainer.Request{
		UserID: params.UserID,
		Module: module,
		Topic:  params.Topic,
		Input:  params.Input,
		Kind:   progress.KindText,
	})
	if err != nil {
		if !errors.Is(err, trainer.ErrEmptyInput) {
			log.Printf("❌ MCP evaluation failed: %v", err)
		}
		return nil, nil, err
	}

	text := ev.Display
	if ev.SaveErr != nil {
		text += "\n\n⚠️ Failed to save progress."
	}
	return textResult(text), nil, nil
}

func (s *Server) handleProgressHistory(ctx context.Context, req *mcpsdk.CallToolRequest, params *ProgressHistoryParams) (*mcpsdk.CallToolResult, any, error) {
	entries := s.store.LoadAll()
	if params.UserID != 0 {
		entries = progress.ForUser(entries, params.UserID)
	}
	if params.Limit > 0 && len(entries) > params.Limit {
		entries = entries[len(entries)-params.Limit:]
	}
	return textResult(progress.Render(entries)), nil, nil
}

func (s *Server) handleProgressStats(ctx context.Context, req *mcpsdk.CallToolRequest, params *ProgressStatsParams) (*mcpsdk.CallToolResult, any, error) {
	userID := analytics.AllUsers
	if params.UserID != 0 {
		userID = params.UserID
	}

	var report *analytics.Report
	if params.Date != "" {
		day, err := time.Parse("2006-01-02", params.Date)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", params.Date)
		}
		report = analytics.AnalyzeDaily(s.store.LoadAll(), userID, day)
	} else {
		report = analytics.Analyze(s.store.LoadAll(), userID)
	}

	data, err := report.ToJSON()
	if err != nil {
		return nil, nil, fmt.Errorf("encode report: %w", err)
	}
	return textResult(report.Summary(), data), nil, nil
}

func textResult(texts ...string) *mcpsdk.CallToolResult {
	content := make([]mcpsdk.Content, 0, len(texts))
	for _, t := range texts {
		content = append(content, &mcpsdk.TextContent{Text: t})
	}
	return &mcpsdk.CallToolResult{Content: content}
}
