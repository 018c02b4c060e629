package progress

import (
	"encoding/json"
	"strings"
	"time"
)

// Entry is one completed evaluation round. Entries are appended in
// chronological order and never modified afterwards.
// UserInput and FeedbackText keep the key names of the plain progress.json
// layout so existing history files stay readable.
type Entry struct {
	Timestamp    time.Time         `json:"timestamp"`
	UserID       int64             `json:"user_id,omitempty"`
	UserInput    string            `json:"user_input"`
	FeedbackText string            `json:"feedback"`
	Kind         string            `json:"type,omitempty"`
	ModuleType   string            `json:"module,omitempty"`
	Topic        string            `json:"topic,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Input kinds stored in Entry.Kind.
const (
	KindText  = "text"
	KindVoice = "voice"
)

// legacyKinds maps the "type" values of typed history files onto input kinds.
var legacyKinds = map[string]string{
	"chat":     KindText,
	"training": KindText,
}

// UnmarshalJSON also reads typed history entries, which keep the answer under
// "input", "transcription" or "response" instead of "user_input".
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	var raw struct {
		plain
		Input         string `json:"input"`
		Transcription string `json:"transcription"`
		Response      string `json:"response"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Entry(raw.plain)
	if e.UserInput == "" {
		for _, v := range []string{raw.Input, raw.Transcription, raw.Response} {
			if v != "" {
				e.UserInput = v
				break
			}
		}
	}
	if k, ok := legacyKinds[e.Kind]; ok {
		e.Kind = k
	}
	return nil
}

// Recorder abstracts persistence of interaction entries.
// Append must not lose previously stored entries and LoadAll returns entries
// in insertion order. Implementations must be safe for concurrent use.
type Recorder interface {
	Append(entry Entry) error
	LoadAll() []Entry
}

const (
	NoProgress = "No progress recorded yet."
	divider    = "----------------------------------------"
)

// Render formats entries as a history block, one paragraph per entry.
func Render(entries []Entry) string {
	if len(entries) == 0 {
		return NoProgress
	}
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, "**User Input:**\n"+e.UserInput+"\n\n**AI Feedback:**\n"+e.FeedbackText+"\n"+divider)
	}
	return strings.Join(parts, "\n\n")
}

// ForUser returns the entries that belong to userID, preserving order.
func ForUser(entries []Entry, userID int64) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}
