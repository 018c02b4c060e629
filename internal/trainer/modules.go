// Package trainer holds the training modules, topics and prompts, and runs an
// evaluation round end to end: prompt, critique, extraction, optional speech
// and progress logging.
package trainer

import (
	"errors"
	"fmt"
	"strings"
)

type Module string

const (
	Impromptu          Module = "impromptu"
	Storytelling       Module = "storytelling"
	ConflictResolution Module = "conflict_resolution"
	General            Module = "general"
)

var ErrUnknownModule = errors.New("unknown training module")

type ModuleInfo struct {
	ID          Module
	Title       string
	Placeholder string
}

var modules = []ModuleInfo{
	{
		ID:          Impromptu,
		Title:       "Impromptu Speaking",
		Placeholder: "Example: Teamwork is essential because it allows people to collaborate, share ideas, and solve problems efficiently.",
	},
	{
		ID:          Storytelling,
		Title:       "Storytelling",
		Placeholder: "Example: One day, I found an old map in my attic. It led me to a hidden treasure chest in my backyard!",
	},
	{
		ID:          ConflictResolution,
		Title:       "Conflict Resolution",
		Placeholder: "Example: I understand that deadlines can be challenging. Let's discuss how we can avoid missing them in the future.",
	},
	{
		ID:          General,
		Title:       "General Feedback",
		Placeholder: "Example: I often struggle with filler words like 'um' and 'uh'. How can I improve?",
	},
}

// Modules lists every module in display order.
func Modules() []ModuleInfo {
	out := make([]ModuleInfo, len(modules))
	copy(out, modules)
	return out
}

// Info returns the description of m; unknown modules report false.
func (m Module) Info() (ModuleInfo, bool) {
	for _, info := range modules {
		if info.ID == m {
			return info, true
		}
	}
	return ModuleInfo{}, false
}

func (m Module) Title() string {
	if info, ok := m.Info(); ok {
		return info.Title
	}
	return string(m)
}

// Training reports whether m is a topic-based training module.
func (m Module) Training() bool {
	return m != General && m != ""
}

// ParseModule accepts a module id or its title, case-insensitively.
func ParseModule(s string) (Module, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, info := range modules {
		if key == string(info.ID) || key == strings.ToLower(info.Title) {
			return info.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModule, s)
}

// Topics is the pool training rounds draw from.
var Topics = []string{
	"Explain why teamwork is important.",
	"Describe your favorite book and why you love it.",
	"How would you handle a disagreement with a colleague?",
	"Tell a short story about an unexpected adventure.",
	"Convince someone to adopt a healthy habit.",
}
