// Package responses hosts the frontdoor endpoint that accepts inbound
// requests and routes them through the translation layer. The handler owns
// no translation logic itself.
package responses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/relaymesh/responses-proxy/internal/api/chat"
	apiresponses "github.com/relaymesh/responses-proxy/internal/api/responses"
	"github.com/relaymesh/responses-proxy/internal/server"
	"github.com/relaymesh/responses-proxy/internal/tokens"
	"github.com/relaymesh/responses-proxy/internal/translate"
)

// Upstream is the outbound transport boundary: one synchronous call and
// one lazy chunk stream. Both may fail with a transport error that is
// passed to the error normalizer unchanged.
type Upstream interface {
	Send(ctx context.Context, req *chat.CompletionRequest, opts *chat.RequestOptions) (*chat.CompletionResponse, error)
	Stream(ctx context.Context, req *chat.CompletionRequest, opts *chat.RequestOptions) (<-chan chat.StreamResult, error)
}

// Handler handles inbound requests on /v1/responses.
type Handler struct {
	upstream  Upstream
	resolver  *translate.ModelResolver
	estimator *tokens.Estimator
	logger    *slog.Logger
}

// NewHandler creates the frontdoor handler.
func NewHandler(upstream Upstream, resolver *translate.ModelResolver, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		upstream:  upstream,
		resolver:  resolver,
		estimator: tokens.NewEstimator(),
		logger:    logger,
	}
}

// HandleCreateResponse handles POST /v1/responses.
func (h *Handler) HandleCreateResponse(w http.ResponseWriter, r *http.Request) {
	requestID := server.GetRequestID(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeFailure(w, http.StatusBadRequest, fmt.Errorf("failed to read request body: %w", err), "")
		return
	}

	req, err := translate.ValidateRequest(body)
	if err != nil {
		h.writeFailure(w, http.StatusBadRequest, err, "")
		return
	}

	h.logger.Info("inbound request",
		slog.String("request_id", requestID),
		slog.String("model", req.Model),
		slog.Bool("stream", req.Stream),
	)

	outReq := translate.TranslateRequest(req, h.logger)
	outReq.Model = h.resolver.Resolve(req.Model)

	if estimate := h.estimator.EstimateRequest(outReq.Model, outReq); estimate > 0 {
		h.logger.Debug("estimated input tokens",
			slog.String("request_id", requestID),
			slog.Int("tokens", estimate),
		)
	}

	opts := &chat.RequestOptions{UserAgent: r.Header.Get("User-Agent")}

	if req.Stream {
		h.handleStreaming(w, r, req, outReq, opts)
		return
	}
	h.handleSync(w, r, req, outReq, opts)
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request, req *apiresponses.Request, outReq *chat.CompletionRequest, opts *chat.RequestOptions) {
	upstreamResp, err := h.upstream.Send(r.Context(), outReq, opts)
	if err != nil {
		h.logger.Error("upstream error",
			slog.String("request_id", server.GetRequestID(r.Context())),
			slog.String("error", err.Error()),
		)
		h.writeFailure(w, http.StatusBadGateway, err, req.Model)
		return
	}

	resp, err := translate.TranslateResponse(upstreamResp, req.Model)
	if err != nil {
		h.writeFailure(w, http.StatusBadGateway, err, req.Model)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) handleStreaming(w http.ResponseWriter, r *http.Request, req *apiresponses.Request, outReq *chat.CompletionRequest, opts *chat.RequestOptions) {
	requestID := server.GetRequestID(r.Context())

	// Failures before the first byte is committed become a clean failure
	// document rather than a broken event stream.
	stream, err := h.upstream.Stream(r.Context(), outReq, opts)
	if err != nil {
		h.logger.Error("upstream stream error",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		h.writeFailure(w, http.StatusBadGateway, err, req.Model)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeFailure(w, http.StatusInternalServerError, errors.New("streaming not supported"), req.Model)
		return
	}

	synth := translate.NewSynthesizer(req.Model)
	h.sendEvents(w, flusher, synth.Start())

	// One chunk's events are written before the next chunk is read, so
	// backpressure from the consumer propagates to the upstream read.
	failed := false
	for result := range stream {
		if failed {
			continue
		}
		if result.Err != nil {
			if errors.Is(result.Err, context.Canceled) {
				h.logger.Info("stream canceled by client", slog.String("request_id", requestID))
				return
			}
			h.logger.Error("stream event error",
				slog.String("request_id", requestID),
				slog.String("error", result.Err.Error()),
			)
			if !synth.Terminated() {
				h.sendEvents(w, flusher, []apiresponses.StreamEvent{synth.Fail(result.Err)})
			}
			failed = true
			continue
		}
		h.sendEvents(w, flusher, synth.Process(result.Chunk))
	}

	if !failed && !synth.Terminated() {
		// Upstream closed without a finish signal; synthesize one so the
		// consumer still receives the full terminal tail.
		h.sendEvents(w, flusher, synth.Finish())
	}
}

func (h *Handler) sendEvents(w http.ResponseWriter, flusher http.Flusher, events []apiresponses.StreamEvent) {
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			h.logger.Error("failed to marshal stream event", slog.String("error", err.Error()))
			continue
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.EventType(), data)
	}
	if len(events) > 0 {
		flusher.Flush()
	}
}

func (h *Handler) writeFailure(w http.ResponseWriter, status int, err error, model string) {
	resp := translate.NormalizeError(err)
	resp.Model = model
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// HandleListModels handles GET /v1/models with the alias table contents.
func (h *Handler) HandleListModels(w http.ResponseWriter, r *http.Request) {
	type model struct {
		ID     string `json:"id"`
		Object string `json:"object"`
	}
	names := h.resolver.Known()
	data := make([]model, len(names))
	for i, name := range names {
		data[i] = model{ID: name, Object: "model"}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"data":   data,
	})
}

// HandleHealth handles GET /health. Liveness only; not part of the
// translation core.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
