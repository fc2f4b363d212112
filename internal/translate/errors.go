package translate

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/relaymesh/responses-proxy/internal/api/chat"
	"github.com/relaymesh/responses-proxy/internal/api/responses"
)

// ErrEmptyChoices is returned when the upstream response is syntactically
// valid but carries zero choices; no inbound response can be synthesized
// without a message body.
var ErrEmptyChoices = errors.New("upstream response contained no choices")

// InvalidRequestError reports a malformed inbound payload. It is surfaced
// to the caller before any network activity.
type InvalidRequestError struct {
	Message string
}

func (e *InvalidRequestError) Error() string { return e.Message }

func invalidRequest(msg string) error {
	return &InvalidRequestError{Message: msg}
}

// ValidateRequest is the single validation gate. It decodes and checks the
// raw payload before translation and before any network call.
func ValidateRequest(raw []byte) (*responses.Request, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, invalidRequest("request body must be a JSON object")
	}

	modelRaw, ok := fields["model"]
	if !ok {
		return nil, invalidRequest("model is required")
	}
	var model string
	if err := json.Unmarshal(modelRaw, &model); err != nil || model == "" {
		return nil, invalidRequest("model must be a non-empty string")
	}

	if _, ok := fields["input"]; !ok {
		return nil, invalidRequest("input is required")
	}

	var req responses.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, invalidRequest(err.Error())
	}
	if req.Input.IsZero() {
		return nil, invalidRequest("input must be a string or an array of messages")
	}
	return &req, nil
}

// NormalizeError converts any failure into the inbound failure envelope:
// status failed, empty output, zero usage.
func NormalizeError(err error) *responses.Response {
	code := "internal_error"
	message := "Unknown error occurred"

	var apiErr *chat.APIError
	var invalidErr *InvalidRequestError
	switch {
	case errors.As(err, &apiErr):
		message = apiErr.Message
		if apiErr.Code != "" {
			code = apiErr.Code
		} else if apiErr.Type != "" {
			code = apiErr.Type
		}
	case errors.As(err, &invalidErr):
		code = "invalid_request"
		message = invalidErr.Message
	case err != nil:
		message = err.Error()
	}

	return &responses.Response{
		ID:        "resp_" + uuid.NewString(),
		Object:    "response",
		CreatedAt: time.Now().Unix(),
		Status:    responses.StatusFailed,
		Output:    []responses.OutputItem{},
		Usage:     responses.Usage{},
		Error: &responses.Error{
			Code:    code,
			Message: message,
		},
	}
}
