// Package api exposes the chat pipeline over HTTP as a JSON endpoint.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mapgpt/mapgpt-go/internal/chat"
	domerrors "github.com/mapgpt/mapgpt-go/internal/errors"
	"github.com/mapgpt/mapgpt-go/internal/logger"
	"github.com/mapgpt/mapgpt-go/internal/metrics"
	"github.com/mapgpt/mapgpt-go/internal/render"
	"github.com/mapgpt/mapgpt-go/internal/sentry"
)

// ChatPath is the route of the chat endpoint.
const ChatPath = "/api/chat"

// StageHeader names the pipeline stage that produced the answer.
const StageHeader = "X-MapGPT-Stage"

// maxBodyBytes bounds the request body; prompts are short.
const maxBodyBytes = 64 << 10

// UsageHint is returned by GET on the chat path.
const UsageHint = `Send a POST request to /api/chat with a JSON body like {"prompt": "Who is the HOD of computer science?"}. Add ?format=html to also receive rendered HTML.`

// Answerer is the chat pipeline.
type Answerer interface {
	Answer(ctx context.Context, prompt string) (chat.Answer, error)
}

// ChatResponse is the success body.
type ChatResponse struct {
	Response string `json:"response"`
	HTML     string `json:"html,omitempty"`
}

// ErrorResponse is the error envelope. Details is only set outside production.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Handler serves the chat endpoint.
type Handler struct {
	answerer      Answerer
	exposeDetails bool
	metrics       *metrics.Metrics
	logger        *logger.Logger
}

// Options configures a Handler.
type Options struct {
	// ExposeDetails adds the error chain to 5xx envelopes.
	ExposeDetails bool
	Metrics       *metrics.Metrics
	Logger        *logger.Logger
}

// NewHandler creates the chat handler.
func NewHandler(answerer Answerer, opts Options) *Handler {
	return &Handler{
		answerer:      answerer,
		exposeDetails: opts.ExposeDetails,
		metrics:       opts.Metrics,
		logger:        opts.Logger.WithModule("api"),
	}
}

// Register mounts the chat routes.
func (h *Handler) Register(r gin.IRoutes) {
	r.POST(ChatPath, h.Chat)
	r.GET(ChatPath, h.Usage)
}

// Usage returns the static usage hint.
func (h *Handler) Usage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": UsageHint})
}

// Chat answers {"prompt": string}. Any failure is reported once, here.
func (h *Handler) Chat(c *gin.Context) {
	prompt, err := parsePrompt(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	answer, err := h.answerer.Answer(c.Request.Context(), prompt)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header(StageHeader, string(answer.Stage))
	resp := ChatResponse{Response: answer.Text}
	if strings.EqualFold(c.Query("format"), "html") {
		resp.HTML = render.ToHTML(answer.Text)
	}
	c.JSON(http.StatusOK, resp)
}

// parsePrompt reads the body and requires a non-empty string prompt.
func parsePrompt(c *gin.Context) (string, error) {
	var body map[string]json.RawMessage
	dec := json.NewDecoder(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil || body == nil {
		return "", domerrors.NewValidationError("body", "Request body must be a JSON object")
	}

	var prompt string
	raw, ok := body["prompt"]
	if !ok || json.Unmarshal(raw, &prompt) != nil || strings.TrimSpace(prompt) == "" {
		return "", domerrors.NewValidationError("prompt", "Prompt is required and must be a non-empty string")
	}
	return prompt, nil
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := domerrors.HTTPStatus(err)
	resp := ErrorResponse{Error: domerrors.PublicMessage(err)}

	if status >= http.StatusInternalServerError {
		if h.exposeDetails {
			resp.Details = domerrors.Details(err)
		}
		h.metrics.RecordHTTPError(errorType(err), "chat")
		sentry.CaptureError(c.Request.Context(), err, map[string]string{"route": ChatPath})
		_ = c.Error(err)
	} else {
		h.metrics.RecordHTTPError("invalid_input", "chat")
		h.logger.WithError(err).Debug("Rejected chat request")
	}

	c.AbortWithStatusJSON(status, resp)
}

func errorType(err error) string {
	switch {
	case domerrors.IsMissingAPIKey(err):
		return "config"
	case domerrors.IsUpstream(err):
		return "upstream"
	default:
		return "internal"
	}
}
