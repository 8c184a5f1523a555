package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/davidbz/workshopai/internal/domain"
	"github.com/davidbz/workshopai/internal/observability"
	"github.com/davidbz/workshopai/internal/sse"
)

// Handler handles HTTP requests.
type Handler struct {
	proxy  *domain.ProxyService
	mailer domain.Mailer
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(proxy *domain.ProxyService, mailer domain.Mailer) *Handler {
	return &Handler{
		proxy:  proxy,
		mailer: mailer,
	}
}

// HandleCompletion validates the request and relays the upstream stream as
// SSE frames. Failures before the first frame are JSON errors; failures
// after it are sent as an error frame and the response ends normally.
func (h *Handler) HandleCompletion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		writeError(ctx, w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req domain.CompletionRequest
	if !decodeBody(w, r, maxCompletionBody, &req) {
		return
	}

	logger := observability.FromContext(ctx)
	logger.Info("completion request received",
		observability.String("model", req.Model),
		observability.Int("prompt_length", len(req.UserPrompt)))

	chunks, err := h.proxy.Stream(ctx, &req)
	if err != nil {
		status := domain.StatusCode(err)
		if status >= http.StatusInternalServerError {
			logger.Error("completion failed", observability.Error(err))
		} else {
			logger.Info("completion rejected", observability.Error(err))
		}
		writeError(ctx, w, status, err.Error())
		return
	}

	h.relay(ctx, w, chunks)
}

func (h *Handler) relay(ctx context.Context, w http.ResponseWriter, chunks <-chan domain.StreamChunk) {
	logger := observability.FromContext(ctx)

	sse.SetHeaders(w.Header())
	w.WriteHeader(http.StatusOK)
	writer := sse.NewWriter(w)

	frames := 0
	for {
		select {
		case <-ctx.Done():
			// Client disconnected; the provider observes the same context.
			logger.Info("client disconnected", observability.Int("frames", frames))
			return

		case chunk, ok := <-chunks:
			if !ok {
				logger.Info("stream completed", observability.Int("frames", frames))
				return
			}

			if chunk.Error != nil {
				logger.Error("stream failed mid-response", observability.Error(chunk.Error))
				if err := writer.WriteFrame(sse.Error(chunk.Error.Error())); err != nil {
					logger.Warn("failed to write error frame", observability.Error(err))
				}
				return
			}

			if !chunk.Forwardable() {
				continue
			}

			if err := writer.WriteFrame(sse.Content(chunk.Delta)); err != nil {
				logger.Warn("failed to write frame", observability.Error(err))
				return
			}
			frames++
		}
	}
}

type emailResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
}

// HandleEmail sends a message through the mail collaborator.
func (h *Handler) HandleEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		writeError(ctx, w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var msg domain.EmailMessage
	if !decodeBody(w, r, maxEmailBody, &msg) {
		return
	}

	if missing := msg.MissingFields(); len(missing) > 0 {
		writeError(ctx, w, http.StatusBadRequest, "missing required fields: "+strings.Join(missing, ", "))
		return
	}

	if msg.HTML == "" {
		msg.HTML = msg.Text
	}

	receipt, err := h.mailer.Send(ctx, &msg)
	if err != nil {
		observability.FromContext(ctx).Error("failed to send email", observability.Error(err))
		writeError(ctx, w, http.StatusInternalServerError, fmt.Sprintf("failed to send email: %v", err))
		return
	}

	writeJSON(ctx, w, http.StatusOK, emailResponse{Success: true, MessageID: receipt.MessageID})
}

// HandleModels lists the models accepted by the completion endpoint.
func (h *Handler) HandleModels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		writeError(ctx, w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	models, err := h.proxy.Models(ctx)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string][]string{"models": models})
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
