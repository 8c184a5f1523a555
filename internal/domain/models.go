package domain

import (
	"encoding/json"
	"strings"
)

// Request defaults applied when a field is omitted.
const (
	DefaultSystemPrompt = "You are a helpful assistant."
	DefaultModel        = "qwen-plus"
	DefaultTemperature  = 0.7

	MinTemperature = 0.0
	MaxTemperature = 2.0
)

// Message roles sent upstream.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// CompletionRequest is the proxy request body.
//
// Temperature is a pointer so an explicit 0 is distinguishable from an
// omitted value.
type CompletionRequest struct {
	UserPrompt   string   `json:"userPrompt"`
	SystemPrompt string   `json:"systemPrompt,omitempty"`
	Model        string   `json:"model,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
}

// UnmarshalJSON accepts "prompt" as an alias for "userPrompt".
func (r *CompletionRequest) UnmarshalJSON(data []byte) error {
	type plain CompletionRequest
	var body struct {
		plain
		Prompt string `json:"prompt"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}

	*r = CompletionRequest(body.plain)
	if r.UserPrompt == "" {
		r.UserPrompt = body.Prompt
	}

	return nil
}

// WithDefaults returns a copy with omitted fields filled in.
func (r CompletionRequest) WithDefaults() CompletionRequest {
	if strings.TrimSpace(r.SystemPrompt) == "" {
		r.SystemPrompt = DefaultSystemPrompt
	}

	if strings.TrimSpace(r.Model) == "" {
		r.Model = DefaultModel
	}

	if r.Temperature == nil {
		temperature := DefaultTemperature
		r.Temperature = &temperature
	}

	return r
}

// TemperatureValue returns the temperature or the default when unset.
func (r CompletionRequest) TemperatureValue() float64 {
	if r.Temperature == nil {
		return DefaultTemperature
	}
	return *r.Temperature
}

// Messages returns the role-tagged conversation sent upstream.
func (r CompletionRequest) Messages() []Message {
	return []Message{
		{Role: RoleSystem, Content: r.SystemPrompt},
		{Role: RoleUser, Content: r.UserPrompt},
	}
}

// Float is a helper for building requests with an explicit temperature.
func Float(v float64) *float64 {
	return &v
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // system, user
	Content string `json:"content"`
}

// StreamChunk is one upstream event in provider-neutral form.
type StreamChunk struct {
	Delta string
	// Stop is set when the upstream reported a "stop" finish reason.
	Stop  bool
	Error error
}

// Forwardable reports whether the chunk becomes a content frame.
// Empty deltas are only forwarded when they carry the stop signal.
func (c StreamChunk) Forwardable() bool {
	return c.Delta != "" || c.Stop
}

// EmailMessage is the payload handed to the mail collaborator.
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html,omitempty"`
}

// MissingFields lists the required fields that are blank.
func (m EmailMessage) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(m.To) == "" {
		missing = append(missing, "to")
	}
	if strings.TrimSpace(m.Subject) == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(m.Text) == "" {
		missing = append(missing, "text")
	}
	return missing
}

// EmailReceipt is returned by the mail collaborator.
type EmailReceipt struct {
	MessageID string `json:"messageId"`
}
