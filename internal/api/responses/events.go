package responses

// Stream event type tags, in protocol order.
const (
	EventCreated          = "response.created"
	EventInProgress       = "response.in_progress"
	EventOutputItemAdded  = "response.output_item.added"
	EventContentPartAdded = "response.content_part.added"
	EventOutputTextDelta  = "response.output_text.delta"
	EventOutputTextDone   = "response.output_text.done"
	EventContentPartDone  = "response.content_part.done"
	EventOutputItemDone   = "response.output_item.done"
	EventCompleted        = "response.completed"
	EventDone             = "response.done"
	EventError            = "error"
)

// StreamEvent is the closed set of inbound streaming events. Each variant
// carries only the payload fields relevant to its tag; the interface is
// sealed so unreachable field combinations stay unrepresentable.
type StreamEvent interface {
	// EventType returns the SSE event tag for this variant.
	EventType() string
}

// ResponseEvent carries a full response snapshot. It backs the created,
// in_progress, completed and done lifecycle events.
type ResponseEvent struct {
	Type     string   `json:"type"`
	Response Response `json:"response"`
}

func (e ResponseEvent) EventType() string { return e.Type }

// OutputItemAddedEvent announces a new output message.
type OutputItemAddedEvent struct {
	Type        string     `json:"type"`
	OutputIndex int        `json:"output_index"`
	Item        OutputItem `json:"item"`
}

func (e OutputItemAddedEvent) EventType() string { return EventOutputItemAdded }

// ContentPartAddedEvent announces a new (initially empty) text part.
type ContentPartAddedEvent struct {
	Type         string        `json:"type"`
	ItemID       string        `json:"item_id"`
	OutputIndex  int           `json:"output_index"`
	ContentIndex int           `json:"content_index"`
	Part         OutputContent `json:"part"`
}

func (e ContentPartAddedEvent) EventType() string { return EventContentPartAdded }

// OutputTextDeltaEvent carries one incremental text fragment.
type OutputTextDeltaEvent struct {
	Type         string `json:"type"`
	ItemID       string `json:"item_id"`
	OutputIndex  int    `json:"output_index"`
	ContentIndex int    `json:"content_index"`
	Delta        string `json:"delta"`
}

func (e OutputTextDeltaEvent) EventType() string { return EventOutputTextDelta }

// OutputTextDoneEvent carries the full accumulated text.
type OutputTextDoneEvent struct {
	Type         string `json:"type"`
	ItemID       string `json:"item_id"`
	OutputIndex  int    `json:"output_index"`
	ContentIndex int    `json:"content_index"`
	Text         string `json:"text"`
}

func (e OutputTextDoneEvent) EventType() string { return EventOutputTextDone }

// ContentPartDoneEvent closes the text part with its final content.
type ContentPartDoneEvent struct {
	Type         string        `json:"type"`
	ItemID       string        `json:"item_id"`
	OutputIndex  int           `json:"output_index"`
	ContentIndex int           `json:"content_index"`
	Part         OutputContent `json:"part"`
}

func (e ContentPartDoneEvent) EventType() string { return EventContentPartDone }

// OutputItemDoneEvent closes the output message.
type OutputItemDoneEvent struct {
	Type        string     `json:"type"`
	OutputIndex int        `json:"output_index"`
	Item        OutputItem `json:"item"`
}

func (e OutputItemDoneEvent) EventType() string { return EventOutputItemDone }

// ErrorEvent is the terminal failure event for an already-open stream.
type ErrorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ErrorEvent) EventType() string { return EventError }
