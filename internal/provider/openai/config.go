package openai

// Config contains Qwen provider configuration.
// Qwen is reached through its OpenAI-compatible endpoint, so the fields map
// to OpenAI SDK options:
//   - APIKey: Maps to option.WithAPIKey()
//   - BaseURL: Maps to option.WithBaseURL()
//   - Timeout: Maps to option.WithRequestTimeout() (in seconds, 0 = none)
//   - MaxRetries: Maps to option.WithMaxRetries()
//
// An empty APIKey leaves the provider registered but unconfigured.
type Config struct {
	APIKey     string   `env:"QWEN_API_KEY"`
	BaseURL    string   `env:"QWEN_BASE_URL"    envDefault:"https://dashscope-intl.aliyuncs.com/compatible-mode/v1"`
	Timeout    int      `env:"QWEN_TIMEOUT"     envDefault:"0"`
	MaxRetries int      `env:"QWEN_MAX_RETRIES" envDefault:"2"`
	Models     []string `env:"QWEN_MODELS"      envDefault:"qwen-turbo,qwen-plus,qwen-max" envSeparator:","`
}
