// Package responses provides the wire types spoken by the consuming
// agent: the single-input request shape, the flat-output response shape,
// and the named streaming lifecycle events.
package responses

import (
	"encoding/json"
	"fmt"
)

// Request is the inbound request body for /v1/responses.
type Request struct {
	Model           string   `json:"model"`
	Input           Input    `json:"input"`
	Instructions    string   `json:"instructions,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"top_p,omitempty"`
	MaxOutputTokens int      `json:"max_output_tokens,omitempty"`
	Tools           []Tool   `json:"tools,omitempty"`
	ToolChoice      any      `json:"tool_choice,omitempty"`
	Stream          bool     `json:"stream,omitempty"`
}

// Input is either a single text string or an ordered list of role-tagged
// turns. Exactly one of Text/Items is set after a successful unmarshal.
type Input struct {
	Text  *string
	Items []InputItem
}

// IsZero reports whether the input was absent or null.
func (in Input) IsZero() bool {
	return in.Text == nil && in.Items == nil
}

func (in *Input) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		in.Text = &s
		return nil
	}
	var items []InputItem
	if err := json.Unmarshal(data, &items); err == nil {
		if items == nil {
			items = []InputItem{}
		}
		in.Items = items
		return nil
	}
	return fmt.Errorf("input must be a string or an array of messages")
}

func (in Input) MarshalJSON() ([]byte, error) {
	if in.Text != nil {
		return json.Marshal(*in.Text)
	}
	return json.Marshal(in.Items)
}

// InputItem is one role-tagged turn of a structured input.
type InputItem struct {
	Type    string      `json:"type,omitempty"`
	Role    string      `json:"role"`
	Content ItemContent `json:"content"`
}

// ItemContent is either plain text or an ordered list of typed parts.
type ItemContent struct {
	Text  *string
	Parts []ContentPart
}

func (c *ItemContent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = &s
		return nil
	}
	var parts []ContentPart
	if err := json.Unmarshal(data, &parts); err == nil {
		c.Parts = parts
		return nil
	}
	return fmt.Errorf("content must be a string or an array of parts")
}

func (c ItemContent) MarshalJSON() ([]byte, error) {
	if c.Text != nil {
		return json.Marshal(*c.Text)
	}
	return json.Marshal(c.Parts)
}

// ContentPart is one typed element of a multi-part turn.
type ContentPart struct {
	Type     string `json:"type"` // "input_text", "input_image"
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Tool is an inbound tool declaration tagged by capability type.
type Tool struct {
	Type     string   `json:"type"` // "function" or a built-in capability
	Function Function `json:"function,omitempty"`
}

// Function describes a function-capable tool.
type Function struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
}

// Response statuses.
const (
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusInProgress = "in_progress"
	StatusCancelled  = "cancelled"
)

// Response is the inbound-shaped complete response.
type Response struct {
	ID        string       `json:"id"`
	Object    string       `json:"object"` // always "response"
	CreatedAt int64        `json:"created_at"`
	Status    string       `json:"status"`
	Model     string       `json:"model"`
	Output    []OutputItem `json:"output"`
	Usage     Usage        `json:"usage"`
	Error     *Error       `json:"error,omitempty"`
}

// OutputItem is one message object in the flat output array.
type OutputItem struct {
	Type    string          `json:"type"` // "message"
	ID      string          `json:"id"`
	Status  string          `json:"status,omitempty"`
	Role    string          `json:"role"`
	Content []OutputContent `json:"content"`
}

// OutputContent is one output-text part of a message.
type OutputContent struct {
	Type string `json:"type"` // "output_text"
	Text string `json:"text"`
}

// Usage carries the renamed token counters.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Error is the inbound failure envelope.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
