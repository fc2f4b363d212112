package translate

import (
	"log/slog"

	"github.com/relaymesh/responses-proxy/internal/api/chat"
	"github.com/relaymesh/responses-proxy/internal/api/responses"
)

// unsupportedToolTypes names built-in capabilities that have no equivalent
// on the outbound side. They are dropped, never emulated.
var unsupportedToolTypes = map[string]bool{
	"web_search":           true,
	"web_search_preview":   true,
	"file_search":          true,
	"code_interpreter":     true,
	"computer_use_preview": true,
}

// TranslateRequest converts a validated inbound request into the outbound
// messages shape. Validation has already run; translation itself cannot
// fail.
func TranslateRequest(req *responses.Request, logger *slog.Logger) *chat.CompletionRequest {
	if logger == nil {
		logger = slog.Default()
	}

	var messages []chat.Message

	if req.Instructions != "" {
		messages = append(messages, chat.Message{
			Role:    "system",
			Content: req.Instructions,
		})
	}

	switch {
	case req.Input.Text != nil:
		messages = append(messages, chat.Message{
			Role:    "user",
			Content: *req.Input.Text,
		})
	default:
		for _, item := range req.Input.Items {
			messages = append(messages, translateTurn(item))
		}
	}

	out := &chat.CompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stream:      req.Stream,
		ToolChoice:  req.ToolChoice,
	}
	if req.MaxOutputTokens > 0 {
		out.MaxTokens = req.MaxOutputTokens
	}

	out.Tools = translateTools(req.Tools, logger)
	return out
}

func translateTurn(item responses.InputItem) chat.Message {
	msg := chat.Message{Role: item.Role}

	if item.Content.Text != nil {
		msg.Content = *item.Content.Text
		return msg
	}

	parts := make([]chat.ContentPart, 0, len(item.Content.Parts))
	for _, part := range item.Content.Parts {
		switch part.Type {
		case "input_text", "text", "output_text":
			parts = append(parts, chat.ContentPart{
				Type: "text",
				Text: part.Text,
			})
		case "input_image":
			parts = append(parts, chat.ContentPart{
				Type:     "image_url",
				ImageURL: &chat.ImageURL{URL: part.ImageURL},
			})
		default:
			// Unrecognized part types are dropped.
		}
	}
	msg.Content = parts
	return msg
}

// translateTools keeps only function-capable declarations. Built-in
// capability types are dropped with a warning; an empty result omits the
// field entirely rather than sending an empty list.
func translateTools(tools []responses.Tool, logger *slog.Logger) []chat.Tool {
	var out []chat.Tool
	for _, tool := range tools {
		if tool.Type == "function" {
			out = append(out, chat.Tool{
				Type: "function",
				Function: chat.FunctionTool{
					Name:        tool.Function.Name,
					Description: tool.Function.Description,
					Parameters:  tool.Function.Parameters,
				},
			})
			continue
		}
		if unsupportedToolTypes[tool.Type] {
			logger.Warn("dropping unsupported tool type", slog.String("type", tool.Type))
		} else {
			logger.Warn("dropping unknown tool type", slog.String("type", tool.Type))
		}
	}
	return out
}
