package trainer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"verbal-trainer/internal/feedback"
	"verbal-trainer/internal/llm"
	"verbal-trainer/internal/progress"
	"verbal-trainer/internal/speech"
)

var ErrEmptyInput = errors.New("please provide input to get feedback")

// maxSpeechBytes keeps synthesized text under the provider request limits.
const maxSpeechBytes = 4500

type Options struct {
	SystemPrompt string
	Extractor    *feedback.Extractor
	Synthesizer  speech.Synthesizer
	// Pick returns an index in [0, n); defaults to math/rand.
	Pick func(n int) int
	Now  func() time.Time
}

// Coach runs evaluation rounds against an LLM and logs them to a recorder.
type Coach struct {
	mu           sync.RWMutex
	client       llm.Client
	recorder     progress.Recorder
	systemPrompt string
	extractor    *feedback.Extractor
	synth        speech.Synthesizer
	pick         func(n int) int
	now          func() time.Time
}

func NewCoach(client llm.Client, recorder progress.Recorder, opts Options) *Coach {
	c := &Coach{
		client:       client,
		recorder:     recorder,
		systemPrompt: opts.SystemPrompt,
		extractor:    opts.Extractor,
		synth:        opts.Synthesizer,
		pick:         opts.Pick,
		now:          opts.Now,
	}
	if strings.TrimSpace(c.systemPrompt) == "" {
		c.systemPrompt = DefaultSystemPrompt
	}
	if c.extractor == nil {
		c.extractor = &feedback.Extractor{}
	}
	if c.pick == nil {
		c.pick = rand.Intn
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// SetClient swaps the model used for subsequent rounds.
func (c *Coach) SetClient(client llm.Client) {
	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
}

func (c *Coach) llmClient() llm.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

// NextTopic draws a topic from Topics.
func (c *Coach) NextTopic() string {
	return Topics[c.pick(len(Topics))]
}

type Request struct {
	UserID int64
	Module Module
	Topic  string
	Input  string
	Kind   string
}

// Evaluation is the outcome of one round. SaveErr is set when the round
// succeeded but could not be written to the progress log.
type Evaluation struct {
	Input        string
	Module       Module
	Topic        string
	FeedbackText string
	Record       feedback.Record
	Display      string
	Audio        []byte
	Response     llm.Response
	SaveErr      error
}

// Evaluate sends the input for critique, extracts the structured record and
// appends the round to the progress log. Nothing is saved when the model call
// fails; speech and save failures never fail the round.
func (c *Coach) Evaluate(ctx context.Context, req Request) (Evaluation, error) {
	input := strings.TrimSpace(req.Input)
	if input == "" {
		return Evaluation{}, ErrEmptyInput
	}
	module := req.Module
	if module == "" {
		module = General
	}
	if _, ok := module.Info(); !ok {
		return Evaluation{}, fmt.Errorf("%w: %q", ErrUnknownModule, module)
	}
	kind := req.Kind
	if kind == "" {
		kind = progress.KindText
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: c.systemPrompt},
		{Role: llm.RoleUser, Content: BuildPrompt(module, req.Topic, input)},
	}
	resp, err := c.llmClient().Generate(ctx, messages)
	if err != nil {
		return Evaluation{}, fmt.Errorf("error generating feedback: %w", err)
	}

	rec := c.extractor.Extract(resp.Content)
	ev := Evaluation{
		Input:        input,
		Module:       module,
		Topic:        req.Topic,
		FeedbackText: resp.Content,
		Record:       rec,
		Display:      feedback.Format(rec),
		Response:     resp,
	}

	if c.synth != nil {
		audio, err := c.synth.Synthesize(ctx, speakable(rec, resp.Content))
		if err != nil {
			log.Printf("⚠️ Speech synthesis failed for user %d: %v", req.UserID, err)
		} else {
			ev.Audio = audio
		}
	}

	entry := progress.Entry{
		Timestamp:    c.now().UTC(),
		UserID:       req.UserID,
		UserInput:    input,
		FeedbackText: resp.Content,
		Kind:         kind,
		ModuleType:   string(module),
		Topic:        req.Topic,
	}
	if resp.Model != "" {
		entry.Metadata = map[string]string{"model": resp.Model}
	}
	if err := c.recorder.Append(entry); err != nil {
		log.Printf("❌ Failed to save progress for user %d: %v", req.UserID, err)
		ev.SaveErr = err
	} else {
		log.Printf("✅ Saved %s round for user %d (module=%s)", kind, req.UserID, module)
	}
	return ev, nil
}

// speakable picks the text read aloud: the overall summary when the model
// gave one, otherwise the full critique.
func speakable(rec feedback.Record, raw string) string {
	text := raw
	if rec.HasOverall() {
		text = rec.Overall
	}
	if len(text) <= maxSpeechBytes {
		return text
	}
	cut := maxSpeechBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
