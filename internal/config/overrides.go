package config

import (
	"log"
	"os"
	"strings"
)

// Provider returns the LLM provider, preferring the override file.
func (c *Config) Provider() string {
	if s := readTrim(c.ProviderFilePath); s != "" {
		return s
	}
	return string(c.LLMProvider)
}

// Model returns the model name, preferring the override file.
func (c *Config) Model() string {
	if s := readTrim(c.ModelFilePath); s != "" {
		return s
	}
	return c.OpenAIModel
}

// SystemPrompt reads the prompt file. An empty result selects the built-in prompt.
func (c *Config) SystemPrompt() string {
	if c.SystemPromptPath == "" {
		return ""
	}
	data, err := os.ReadFile(c.SystemPromptPath)
	if err != nil {
		log.Printf("system prompt file not found or unreadable at %s, using the built-in prompt: %v", c.SystemPromptPath, err)
		return ""
	}
	return string(data)
}

func readTrim(path string) string {
	if path == "" {
		return ""
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
