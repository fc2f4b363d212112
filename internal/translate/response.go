package translate

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/relaymesh/responses-proxy/internal/api/chat"
	"github.com/relaymesh/responses-proxy/internal/api/responses"
)

// TranslateResponse converts one complete upstream response into the
// inbound shape. requestedModel is echoed back in preference to the
// upstream's qualified identifier so the caller sees what they asked for.
func TranslateResponse(resp *chat.CompletionResponse, requestedModel string) (*responses.Response, error) {
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyChoices
	}
	choice := resp.Choices[0]

	text := contentToText(choice.Message.Content)

	createdAt := resp.Created
	if createdAt == 0 {
		createdAt = time.Now().Unix()
	}

	model := requestedModel
	if model == "" {
		model = resp.Model
	}

	out := &responses.Response{
		ID:        "resp_" + uuid.NewString(),
		Object:    "response",
		CreatedAt: createdAt,
		Model:     model,
		Output:    []responses.OutputItem{},
		Usage: responses.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}

	if text != "" {
		out.Output = append(out.Output, responses.OutputItem{
			Type:   "message",
			ID:     "msg_" + uuid.NewString(),
			Status: responses.StatusCompleted,
			Role:   "assistant",
			Content: []responses.OutputContent{{
				Type: "output_text",
				Text: text,
			}},
		})
	}

	switch choice.FinishReason {
	case "content_filter":
		out.Status = responses.StatusFailed
		out.Error = &responses.Error{
			Code:    "content_filter",
			Message: "Content was filtered by the upstream service",
		}
	default:
		// stop, length, tool_calls and anything unrecognized map to
		// completed; unknown reason codes are never a failure on their own.
		out.Status = responses.StatusCompleted
	}

	return out, nil
}

// contentToText flattens upstream assistant content to text. Non-string
// content is serialized rather than dropped.
func contentToText(content any) string {
	switch v := content.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
