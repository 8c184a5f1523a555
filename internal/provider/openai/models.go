package openai

import "strings"

// DefaultModels returns the models served when none are configured.
func DefaultModels() []string {
	return []string{
		"qwen-turbo",
		"qwen-plus",
		"qwen-max",
	}
}

// buildModelSet creates a map for O(1) lookup.
func buildModelSet(models []string) map[string]bool {
	set := make(map[string]bool, len(models))
	for _, model := range models {
		model = strings.TrimSpace(model)
		if model != "" {
			set[model] = true
		}
	}
	return set
}
