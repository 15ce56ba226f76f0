// Package webhook serves the LINE Messaging API webhook: text messages are
// answered through the chat pipeline and replied to with the reply token.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/mapgpt/mapgpt-go/internal/chat"
	"github.com/mapgpt/mapgpt-go/internal/ctxutil"
	domerrors "github.com/mapgpt/mapgpt-go/internal/errors"
	"github.com/mapgpt/mapgpt-go/internal/lineutil"
	"github.com/mapgpt/mapgpt-go/internal/logger"
	"github.com/mapgpt/mapgpt-go/internal/metrics"
)

// LINE API limits.
const (
	maxEventsPerWebhook = 100
	minReplyTokenLength = 10
)

// FallbackReply is sent when the pipeline fails for a reason other than bad input.
const FallbackReply = "Sorry, I couldn't answer that right now. Please try again in a moment."

// Answerer is the chat pipeline.
type Answerer interface {
	Answer(ctx context.Context, prompt string) (chat.Answer, error)
}

// Replier sends reply messages. *messaging_api.MessagingApiAPI satisfies it.
type Replier interface {
	ReplyMessage(req *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
}

// Handler handles LINE webhook events
type Handler struct {
	channelSecret string
	client        Replier
	answerer      Answerer
	metrics       *metrics.Metrics
	logger        *logger.Logger
	timeout       time.Duration
	wg            sync.WaitGroup // async event processing
}

// HandlerConfig holds configuration for creating a new Handler
type HandlerConfig struct {
	ChannelSecret string
	ChannelToken  string
	Answerer      Answerer
	Metrics       *metrics.Metrics
	Logger        *logger.Logger
	// Timeout bounds answering one event.
	Timeout time.Duration
	// Client overrides the messaging API client built from ChannelToken.
	Client Replier
}

// NewHandler creates a new webhook handler.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	client := cfg.Client
	if client == nil {
		api, err := messaging_api.NewMessagingApiAPI(cfg.ChannelToken)
		if err != nil {
			return nil, fmt.Errorf("create messaging API client: %w", err)
		}
		client = api
	}

	return &Handler{
		channelSecret: cfg.ChannelSecret,
		client:        client,
		answerer:      cfg.Answerer,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger.WithModule("webhook"),
		timeout:       cfg.Timeout,
	}, nil
}

// Handle is the Gin handler for the webhook endpoint
func (h *Handler) Handle(c *gin.Context) {
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.logger.Warn("Invalid webhook signature")
			c.Status(http.StatusBadRequest)
		} else {
			h.logger.WithError(err).Error("Failed to parse webhook request")
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	// LINE expects 200 before the reply is ready.
	c.Status(http.StatusOK)
	h.metrics.RecordWebhook("batch", "received", 0)

	events := cb.Events
	if len(events) > maxEventsPerWebhook {
		h.logger.WithField("event_count", len(events)).Warn("Too many events in webhook batch; truncating")
		events = events[:maxEventsPerWebhook]
	}
	events = append([]webhook.EventInterface(nil), events...)

	h.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				h.logger.WithField("panic", r).Error("Panic in async event processing")
			}
		}()
		for _, event := range events {
			h.processEvent(context.Background(), event)
		}
	})
}

// processEvent answers one event. Only text messages are handled; in groups
// and rooms the bot must be mentioned.
func (h *Handler) processEvent(ctx context.Context, event webhook.EventInterface) {
	e, ok := event.(webhook.MessageEvent)
	if !ok {
		h.logger.WithField("event_type", fmt.Sprintf("%T", event)).Debug("Unsupported event type")
		return
	}
	text, ok := e.Message.(webhook.TextMessageContent)
	if !ok {
		return
	}
	if !isPersonalChat(e.Source) && !isBotMentioned(text) {
		return
	}
	prompt := promptFromText(text)

	start := time.Now()
	chatID, userID := sourceIDs(e.Source)
	ctx = ctxutil.WithChannel(ctx, ctxutil.ChannelLine)
	ctx = ctxutil.WithUserID(ctx, userID)
	log := h.logger.WithField("chat_id", chatID)
	if e.WebhookEventId != "" {
		ctx = ctxutil.WithRequestID(ctx, e.WebhookEventId)
		log = log.WithRequestID(e.WebhookEventId)
	}
	if e.DeliveryContext != nil && e.DeliveryContext.IsRedelivery {
		log = log.WithField("is_redelivery", true)
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	h.showLoading(chatID, log)

	reply, status := h.answer(ctx, prompt, log)
	h.metrics.RecordWebhook("message", status, time.Since(start).Seconds())

	if len(e.ReplyToken) < minReplyTokenLength {
		log.WithField("token_length", len(e.ReplyToken)).Debug("Invalid reply token, skipping reply")
		return
	}
	if _, err := h.client.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: e.ReplyToken,
		Messages: []messaging_api.MessageInterface{
			lineutil.NewTextMessageWithQuickReply(reply, lineutil.DefaultQuickReplies()...),
		},
	}); err != nil {
		if strings.Contains(err.Error(), "Invalid reply token") {
			log.WithError(err).Debug("Reply token already used or invalid")
		} else {
			log.WithError(err).Error("Failed to send reply")
		}
		h.metrics.RecordWebhook("message", "reply_error", time.Since(start).Seconds())
		return
	}

	log.WithField("duration_ms", time.Since(start).Milliseconds()).Info("Event processed")
}

func (h *Handler) answer(ctx context.Context, prompt string, log *logger.Logger) (string, string) {
	ans, err := h.answerer.Answer(ctx, prompt)
	if err == nil {
		return ans.Text, "success"
	}
	if domerrors.IsInvalidInput(err) {
		return domerrors.PublicMessage(err), "invalid"
	}
	log.WithError(err).Error("Failed to answer message")
	return FallbackReply, "error"
}

// showLoading starts LINE's typing indicator when talking to the real API.
func (h *Handler) showLoading(chatID string, log *logger.Logger) {
	api, ok := h.client.(*messaging_api.MessagingApiAPI)
	if !ok || chatID == "" {
		return
	}
	// 5-60 seconds in steps of 5.
	if _, err := api.ShowLoadingAnimation(&messaging_api.ShowLoadingAnimationRequest{
		ChatId:         chatID,
		LoadingSeconds: 60,
	}); err != nil {
		log.WithError(err).Warn("Failed to show loading animation")
	}
}

// Shutdown waits for all async event processing to complete.
// It returns an error if the context is canceled before completion.
func (h *Handler) Shutdown(ctx context.Context) error {
	c := make(chan struct{})
	go func() {
		defer close(c)
		h.wg.Wait()
	}()

	select {
	case <-c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
