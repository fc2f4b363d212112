package translate

import (
	"errors"
	"testing"

	"github.com/relaymesh/responses-proxy/internal/api/chat"
	"github.com/relaymesh/responses-proxy/internal/api/responses"
)

func deltaChunk(content string) *chat.CompletionChunk {
	return &chat.CompletionChunk{
		Choices: []chat.ChunkChoice{{Delta: chat.ChunkDelta{Content: content}}},
	}
}

func finishChunk(reason string) *chat.CompletionChunk {
	return &chat.CompletionChunk{
		Choices: []chat.ChunkChoice{{FinishReason: &reason}},
	}
}

func eventTypes(events []responses.StreamEvent) []string {
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return types
}

func assertSequence(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d events %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSynthesizerSingleDeltaLifecycle(t *testing.T) {
	s := NewSynthesizer("gpt-4o")

	var all []responses.StreamEvent
	all = append(all, s.Start()...)
	all = append(all, s.Process(deltaChunk("Hi"))...)
	all = append(all, s.Process(finishChunk("stop"))...)

	assertSequence(t, eventTypes(all), []string{
		responses.EventCreated,
		responses.EventInProgress,
		responses.EventOutputItemAdded,
		responses.EventContentPartAdded,
		responses.EventOutputTextDelta,
		responses.EventOutputTextDone,
		responses.EventContentPartDone,
		responses.EventOutputItemDone,
		responses.EventCompleted,
		responses.EventDone,
	})

	if !s.Terminated() {
		t.Error("synthesizer not terminated after finish chunk")
	}
}

func TestSynthesizerAccumulatesText(t *testing.T) {
	s := NewSynthesizer("gpt-4o")
	s.Start()
	s.Process(deltaChunk("Hel"))
	s.Process(deltaChunk("lo, "))
	s.Process(deltaChunk("world"))
	events := s.Process(finishChunk("stop"))

	textDone, ok := events[0].(responses.OutputTextDoneEvent)
	if !ok {
		t.Fatalf("first terminal event is %T, want OutputTextDoneEvent", events[0])
	}
	if textDone.Text != "Hello, world" {
		t.Errorf("accumulated text = %q, want %q", textDone.Text, "Hello, world")
	}

	for _, e := range events {
		if done, ok := e.(responses.ResponseEvent); ok && done.Type == responses.EventCompleted {
			if len(done.Response.Output) != 1 {
				t.Fatalf("completed snapshot has %d output items, want 1", len(done.Response.Output))
			}
			if got := done.Response.Output[0].Content[0].Text; got != "Hello, world" {
				t.Errorf("completed output text = %q", got)
			}
		}
	}
}

func TestSynthesizerOpensOutputOnFirstDeltaOnly(t *testing.T) {
	s := NewSynthesizer("gpt-4o")
	s.Start()

	first := s.Process(deltaChunk("a"))
	assertSequence(t, eventTypes(first), []string{
		responses.EventOutputItemAdded,
		responses.EventContentPartAdded,
		responses.EventOutputTextDelta,
	})

	second := s.Process(deltaChunk("b"))
	assertSequence(t, eventTypes(second), []string{responses.EventOutputTextDelta})
}

func TestSynthesizerEmptyDeltaIgnored(t *testing.T) {
	s := NewSynthesizer("gpt-4o")
	s.Start()

	if events := s.Process(deltaChunk("")); len(events) != 0 {
		t.Errorf("empty delta produced %v", eventTypes(events))
	}
	if events := s.Process(&chat.CompletionChunk{}); len(events) != 0 {
		t.Errorf("empty chunk produced %v", eventTypes(events))
	}
}

func TestSynthesizerFinishWithoutContent(t *testing.T) {
	// An upstream that finishes without ever emitting content still gets a
	// complete lifecycle with an empty text part.
	s := NewSynthesizer("gpt-4o")
	s.Start()
	events := s.Process(finishChunk("stop"))

	assertSequence(t, eventTypes(events), []string{
		responses.EventOutputItemAdded,
		responses.EventContentPartAdded,
		responses.EventOutputTextDone,
		responses.EventContentPartDone,
		responses.EventOutputItemDone,
		responses.EventCompleted,
		responses.EventDone,
	})

	textDone := events[2].(responses.OutputTextDoneEvent)
	if textDone.Text != "" {
		t.Errorf("text = %q, want empty", textDone.Text)
	}

	completed := events[5].(responses.ResponseEvent)
	if len(completed.Response.Output) != 0 {
		t.Errorf("completed snapshot output = %+v, want empty for empty text", completed.Response.Output)
	}
}

func TestSynthesizerSilentEndSynthesizesStop(t *testing.T) {
	s := NewSynthesizer("gpt-4o")
	s.Start()
	s.Process(deltaChunk("partial"))

	events := s.Finish()
	assertSequence(t, eventTypes(events), []string{
		responses.EventOutputTextDone,
		responses.EventContentPartDone,
		responses.EventOutputItemDone,
		responses.EventCompleted,
		responses.EventDone,
	})
	if !s.Terminated() {
		t.Error("Finish did not terminate the synthesizer")
	}

	if again := s.Finish(); again != nil {
		t.Errorf("second Finish produced %v, want nil", eventTypes(again))
	}
}

func TestSynthesizerPostTerminationChunksIgnored(t *testing.T) {
	s := NewSynthesizer("gpt-4o")
	s.Start()
	s.Process(finishChunk("stop"))

	if events := s.Process(deltaChunk("late")); events != nil {
		t.Errorf("post-termination chunk produced %v", eventTypes(events))
	}
}

func TestSynthesizerFail(t *testing.T) {
	s := NewSynthesizer("gpt-4o")
	s.Start()
	s.Process(deltaChunk("partial "))
	s.Process(deltaChunk("answer"))

	event := s.Fail(&chat.APIError{Message: "rate limited", Type: "rate_limit_error", Code: "rate_limit_exceeded"})

	errEvent, ok := event.(responses.ErrorEvent)
	if !ok {
		t.Fatalf("Fail returned %T, want ErrorEvent", event)
	}
	if errEvent.EventType() != responses.EventError {
		t.Errorf("event type = %q, want error", errEvent.EventType())
	}
	if errEvent.Code != "rate_limit_exceeded" {
		t.Errorf("code = %q, want rate_limit_exceeded", errEvent.Code)
	}
	if errEvent.Message != "rate limited" {
		t.Errorf("message = %q", errEvent.Message)
	}

	if !s.Terminated() {
		t.Error("Fail did not terminate the synthesizer")
	}
	// No completed/done after an error.
	if events := s.Process(finishChunk("stop")); events != nil {
		t.Errorf("finish after Fail produced %v", eventTypes(events))
	}
}

func TestSynthesizerFailGenericError(t *testing.T) {
	s := NewSynthesizer("gpt-4o")
	s.Start()

	event := s.Fail(errors.New("connection reset"))
	errEvent := event.(responses.ErrorEvent)
	if errEvent.Code != "stream_error" {
		t.Errorf("code = %q, want stream_error", errEvent.Code)
	}
	if errEvent.Message != "connection reset" {
		t.Errorf("message = %q", errEvent.Message)
	}
}

func TestSynthesizerUsageFrame(t *testing.T) {
	s := NewSynthesizer("gpt-4o")
	s.Start()
	s.Process(deltaChunk("Hi"))

	// Usage arrives on a trailing frame with no choices.
	usageChunk := &chat.CompletionChunk{
		Usage: &chat.Usage{PromptTokens: 9, CompletionTokens: 1, TotalTokens: 10},
	}
	if events := s.Process(usageChunk); len(events) != 0 {
		t.Errorf("usage-only chunk produced %v", eventTypes(events))
	}

	events := s.Process(finishChunk("stop"))
	for _, e := range events {
		if re, ok := e.(responses.ResponseEvent); ok && re.Type == responses.EventCompleted {
			if re.Response.Usage.InputTokens != 9 || re.Response.Usage.OutputTokens != 1 || re.Response.Usage.TotalTokens != 10 {
				t.Errorf("usage = %+v, want upstream frame values", re.Response.Usage)
			}
		}
	}
}

func TestSynthesizerDonePayloadMatchesCompleted(t *testing.T) {
	s := NewSynthesizer("gpt-4o")
	s.Start()
	s.Process(deltaChunk("Hi"))
	events := s.Process(finishChunk("stop"))

	var completed, done *responses.ResponseEvent
	for i := range events {
		if re, ok := events[i].(responses.ResponseEvent); ok {
			switch re.Type {
			case responses.EventCompleted:
				completed = &re
			case responses.EventDone:
				done = &re
			}
		}
	}
	if completed == nil || done == nil {
		t.Fatal("missing completed or done event")
	}
	if completed.Response.ID != done.Response.ID ||
		completed.Response.Status != done.Response.Status ||
		len(completed.Response.Output) != len(done.Response.Output) {
		t.Errorf("done payload diverges from completed:\n%+v\n%+v", completed.Response, done.Response)
	}
	if done.Response.Status != responses.StatusCompleted {
		t.Errorf("done status = %q, want completed", done.Response.Status)
	}
}

func TestSynthesizerStableIdentifiers(t *testing.T) {
	s := NewSynthesizer("gpt-4o")
	start := s.Start()
	created := start[0].(responses.ResponseEvent)

	mid := s.Process(deltaChunk("Hi"))
	added := mid[0].(responses.OutputItemAddedEvent)

	terminalEvents := s.Process(finishChunk("stop"))
	completed := terminalEvents[3].(responses.ResponseEvent)
	itemDone := terminalEvents[2].(responses.OutputItemDoneEvent)

	if created.Response.ID != completed.Response.ID {
		t.Errorf("response id changed mid-stream: %q vs %q", created.Response.ID, completed.Response.ID)
	}
	if added.Item.ID != itemDone.Item.ID {
		t.Errorf("item id changed mid-stream: %q vs %q", added.Item.ID, itemDone.Item.ID)
	}
}
