package translate

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/relaymesh/responses-proxy/internal/api/chat"
	"github.com/relaymesh/responses-proxy/internal/api/responses"
)

// Synthesizer is the per-exchange state machine that turns an unordered,
// token-by-token upstream stream into the strictly ordered inbound event
// sequence. One Synthesizer serves exactly one streaming request and is
// discarded when the exchange ends.
//
// The conceptual states are NOT_STARTED -> OUTPUT_OPENED -> CONTENT_OPENED
// -> TERMINATED, tracked through the outputStarted/contentOpened/terminated
// booleans. Chunks are processed strictly in arrival order; event ordering
// is a correctness contract, not an optimization target.
type Synthesizer struct {
	responseID string
	itemID     string
	model      string
	createdAt  int64

	text  strings.Builder
	usage responses.Usage

	outputStarted bool
	contentOpened bool
	terminated    bool
}

// NewSynthesizer allocates the synthesis context for one streaming
// exchange. model is the caller's originally requested model string.
func NewSynthesizer(model string) *Synthesizer {
	return &Synthesizer{
		responseID: "resp_" + uuid.NewString(),
		itemID:     "msg_" + uuid.NewString(),
		model:      model,
		createdAt:  time.Now().Unix(),
	}
}

// Terminated reports whether a terminal event has been emitted.
func (s *Synthesizer) Terminated() bool { return s.terminated }

// Start emits the two lifecycle events that bracket the exchange. They are
// emitted unconditionally before the first upstream read.
func (s *Synthesizer) Start() []responses.StreamEvent {
	snapshot := s.snapshot(responses.StatusInProgress)
	return []responses.StreamEvent{
		responses.ResponseEvent{Type: responses.EventCreated, Response: snapshot},
		responses.ResponseEvent{Type: responses.EventInProgress, Response: snapshot},
	}
}

// Process consumes one upstream chunk and returns the inbound events it
// fans out to (zero to six). Chunks arriving after termination are ignored.
func (s *Synthesizer) Process(chunk *chat.CompletionChunk) []responses.StreamEvent {
	if s.terminated || chunk == nil {
		return nil
	}

	// A usage frame may arrive on any chunk, including one with no choices.
	if chunk.Usage != nil {
		s.usage = responses.Usage{
			InputTokens:  chunk.Usage.PromptTokens,
			OutputTokens: chunk.Usage.CompletionTokens,
			TotalTokens:  chunk.Usage.TotalTokens,
		}
	}

	if len(chunk.Choices) == 0 {
		return nil
	}
	choice := chunk.Choices[0]

	var events []responses.StreamEvent

	if choice.Delta.Content != "" {
		if !s.outputStarted {
			events = append(events, s.openOutput()...)
		}
		s.text.WriteString(choice.Delta.Content)
		events = append(events, responses.OutputTextDeltaEvent{
			Type:   responses.EventOutputTextDelta,
			ItemID: s.itemID,
			Delta:  choice.Delta.Content,
		})
	}

	if choice.FinishReason != nil {
		events = append(events, s.terminal()...)
	}

	return events
}

// Finish handles a stream that ended without a terminal signal: it
// synthesizes a stop so the mandatory terminal events are still emitted.
// A no-op if the exchange already terminated.
func (s *Synthesizer) Finish() []responses.StreamEvent {
	if s.terminated {
		return nil
	}
	return s.terminal()
}

// Fail produces the single terminal error event for a mid-stream failure.
// The normal terminal sequence is not emitted afterwards.
func (s *Synthesizer) Fail(err error) responses.StreamEvent {
	s.terminated = true

	code := "stream_error"
	message := "Unknown error occurred"
	var apiErr *chat.APIError
	if errors.As(err, &apiErr) {
		message = apiErr.Message
		if apiErr.Code != "" {
			code = apiErr.Code
		} else if apiErr.Type != "" {
			code = apiErr.Type
		}
	} else if err != nil {
		message = err.Error()
	}

	return responses.ErrorEvent{
		Type:    responses.EventError,
		Code:    code,
		Message: message,
	}
}

// openOutput emits the output_item.added / content_part.added pair and
// advances the state machine to CONTENT_OPENED.
func (s *Synthesizer) openOutput() []responses.StreamEvent {
	s.outputStarted = true
	s.contentOpened = true
	return []responses.StreamEvent{
		responses.OutputItemAddedEvent{
			Type: responses.EventOutputItemAdded,
			Item: responses.OutputItem{
				Type:    "message",
				ID:      s.itemID,
				Status:  responses.StatusInProgress,
				Role:    "assistant",
				Content: []responses.OutputContent{},
			},
		},
		responses.ContentPartAddedEvent{
			Type:   responses.EventContentPartAdded,
			ItemID: s.itemID,
			Part:   responses.OutputContent{Type: "output_text", Text: ""},
		},
	}
}

// terminal emits the fixed terminal tail. Every terminated stream gets a
// complete lifecycle: if the upstream finished without producing content,
// the open pair is emitted first.
func (s *Synthesizer) terminal() []responses.StreamEvent {
	var events []responses.StreamEvent
	if !s.outputStarted {
		events = append(events, s.openOutput()...)
	}

	fullText := s.text.String()
	part := responses.OutputContent{Type: "output_text", Text: fullText}

	events = append(events,
		responses.OutputTextDoneEvent{
			Type:   responses.EventOutputTextDone,
			ItemID: s.itemID,
			Text:   fullText,
		},
		responses.ContentPartDoneEvent{
			Type:   responses.EventContentPartDone,
			ItemID: s.itemID,
			Part:   part,
		},
		responses.OutputItemDoneEvent{
			Type: responses.EventOutputItemDone,
			Item: responses.OutputItem{
				Type:    "message",
				ID:      s.itemID,
				Status:  responses.StatusCompleted,
				Role:    "assistant",
				Content: []responses.OutputContent{part},
			},
		},
	)

	// The consumer treats response.done as the authoritative terminal
	// signal; it repeats the completed payload deliberately.
	final := s.snapshot(responses.StatusCompleted)
	events = append(events,
		responses.ResponseEvent{Type: responses.EventCompleted, Response: final},
		responses.ResponseEvent{Type: responses.EventDone, Response: final},
	)

	s.terminated = true
	return events
}

// snapshot builds the full synthesized response for lifecycle events.
// Output stays empty until the exchange has produced content.
func (s *Synthesizer) snapshot(status string) responses.Response {
	resp := responses.Response{
		ID:        s.responseID,
		Object:    "response",
		CreatedAt: s.createdAt,
		Status:    status,
		Model:     s.model,
		Output:    []responses.OutputItem{},
		Usage:     s.usage,
	}
	if status == responses.StatusCompleted && s.text.Len() > 0 {
		resp.Output = append(resp.Output, responses.OutputItem{
			Type:   "message",
			ID:     s.itemID,
			Status: responses.StatusCompleted,
			Role:   "assistant",
			Content: []responses.OutputContent{{
				Type: "output_text",
				Text: s.text.String(),
			}},
		})
	}
	return resp
}
