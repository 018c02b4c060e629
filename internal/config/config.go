package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

// Speech providers for STT_PROVIDER and TTS_PROVIDER.
const (
	SpeechOpenAI = "openai"
	SpeechGoogle = "google"
	SpeechNone   = "none"
)

type Config struct {
	TelegramBotToken  string  `env:"TELEGRAM_BOT_TOKEN"`
	AllowedUsers      []int64 `env:"ALLOWED_USERS" envSeparator:":"`
	AdminUserID       int64   `env:"ADMIN_USER_ID"`
	AllowlistFilePath string  `env:"ALLOWLIST_FILE_PATH" envDefault:"data/allowlist.json"`

	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Prompts
	SystemPromptPath string `env:"SYSTEM_PROMPT_PATH" envDefault:"prompts/system_prompt.txt"`

	// Overrides persistence
	ProviderFilePath string `env:"PROVIDER_FILE_PATH" envDefault:"data/provider.txt"`
	ModelFilePath    string `env:"MODEL_FILE_PATH" envDefault:"data/model.txt"`

	// Progress log
	ProgressFilePath    string `env:"PROGRESS_FILE_PATH" envDefault:"data/progress.json"`
	ExclusiveCategories bool   `env:"EXCLUSIVE_CATEGORIES" envDefault:"false"`

	// Speech
	STTProvider           string  `env:"STT_PROVIDER" envDefault:"openai"`
	TTSProvider           string  `env:"TTS_PROVIDER" envDefault:"none"`
	GoogleCredentialsPath string  `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	GoogleAPIKey          string  `env:"GOOGLE_API_KEY"`
	SpeechLanguage        string  `env:"SPEECH_LANGUAGE" envDefault:"en-US"`
	TTSVoice              string  `env:"TTS_VOICE"`
	TTSSpeakingRate       float64 `env:"TTS_SPEAKING_RATE" envDefault:"1.0"`

	// Daily digest, cron spec in UTC; empty disables it
	DigestCron string `env:"DIGEST_CRON" envDefault:"0 21 * * *"`

	// Coach MCP server; empty keeps it on stdio
	MCPHTTPAddr string `env:"MCP_HTTP_ADDR"`

	// Formatting
	MessageParseMode string `env:"MESSAGE_PARSE_MODE" envDefault:"HTML"`
}

// Parse reads the configuration from the environment.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func New() *Config {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
