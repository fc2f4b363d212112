// Package tokens estimates input token counts for outbound requests using
// tiktoken encodings. Estimates feed request logging only; reported usage
// always comes from the upstream service.
package tokens

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/relaymesh/responses-proxy/internal/api/chat"
)

// Estimator counts tokens with a per-encoding codec cache.
type Estimator struct {
	mu    sync.RWMutex
	cache map[tokenizer.Encoding]tokenizer.Codec
}

// NewEstimator creates a token estimator.
func NewEstimator() *Estimator {
	return &Estimator{cache: make(map[tokenizer.Encoding]tokenizer.Codec)}
}

// EstimateRequest approximates the input tokens of an outbound request.
// Returns 0 when no codec is available for the model.
func (e *Estimator) EstimateRequest(model string, req *chat.CompletionRequest) int {
	codec, err := e.getCodec(model)
	if err != nil {
		return 0
	}

	// Per-message overhead per the upstream's chat format accounting:
	// 3 tokens per message, 1 for the role, 3 for assistant priming.
	total := 3
	for _, msg := range req.Messages {
		total += 4
		switch content := msg.Content.(type) {
		case string:
			total += e.count(codec, content)
		case []chat.ContentPart:
			for _, part := range content {
				if part.Type == "text" {
					total += e.count(codec, part.Text)
				}
			}
		}
	}
	for _, tool := range req.Tools {
		total += e.count(codec, tool.Function.Name)
		total += e.count(codec, tool.Function.Description)
		if tool.Function.Parameters != nil {
			if b, err := json.Marshal(tool.Function.Parameters); err == nil {
				total += e.count(codec, string(b))
			}
		}
	}
	return total
}

func (e *Estimator) count(codec tokenizer.Codec, text string) int {
	if text == "" {
		return 0
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return 0
	}
	return len(ids)
}

func (e *Estimator) getCodec(model string) (tokenizer.Codec, error) {
	// Strip a namespace qualifier before matching encodings.
	if idx := strings.LastIndex(model, "/"); idx >= 0 {
		model = model[idx+1:]
	}

	if codec, err := tokenizer.ForModel(tokenizer.Model(model)); err == nil {
		return codec, nil
	}

	encoding := modelToEncoding(model)

	e.mu.RLock()
	if cached, ok := e.cache[encoding]; ok {
		e.mu.RUnlock()
		return cached, nil
	}
	e.mu.RUnlock()

	codec, err := tokenizer.Get(encoding)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[encoding] = codec
	e.mu.Unlock()
	return codec, nil
}

func modelToEncoding(model string) tokenizer.Encoding {
	model = strings.ToLower(model)
	switch {
	case strings.HasPrefix(model, "gpt-4o"),
		strings.HasPrefix(model, "gpt-4.1"),
		strings.HasPrefix(model, "gpt-5"),
		strings.HasPrefix(model, "o1"),
		strings.HasPrefix(model, "o3"),
		strings.HasPrefix(model, "o4"):
		return tokenizer.O200kBase
	case strings.HasPrefix(model, "gpt-4"), strings.HasPrefix(model, "gpt-3.5"):
		return tokenizer.Cl100kBase
	default:
		return tokenizer.O200kBase
	}
}
