// Package lineutil provides utility functions for building LINE messages and actions.
package lineutil

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/mapgpt/mapgpt-go/internal/stringutil"
)

// QuickReplyItem represents an item in a quick reply.
type QuickReplyItem struct {
	ImageURL string
	Action   messaging_api.ActionInterface
}

// Action is an alias for the LINE SDK action interface for convenience.
type Action = messaging_api.ActionInterface

// NewTextMessage creates a text message from a markdown-like answer.
// Markup LINE cannot render is flattened and the text is cut to the API limit.
func NewTextMessage(text string) *messaging_api.TextMessage {
	return &messaging_api.TextMessage{
		Text: stringutil.Truncate(PlainText(text), MaxTextMessageLength),
	}
}

// NewTextMessageWithQuickReply creates a text message with quick reply items.
func NewTextMessageWithQuickReply(text string, items ...QuickReplyItem) *messaging_api.TextMessage {
	msg := NewTextMessage(text)
	if len(items) > 0 {
		msg.QuickReply = NewQuickReply(items)
	}
	return msg
}

// NewQuickReply creates a quick reply message component.
// LINE API limits: max 13 items
func NewQuickReply(items []QuickReplyItem) *messaging_api.QuickReply {
	if len(items) > MaxQuickReplyItemCount {
		items = items[:MaxQuickReplyItemCount]
	}

	quickReplyItems := make([]messaging_api.QuickReplyItem, len(items))
	for i, item := range items {
		qrItem := messaging_api.QuickReplyItem{
			Action: item.Action,
		}
		if item.ImageURL != "" {
			qrItem.ImageUrl = item.ImageURL
		}
		quickReplyItems[i] = qrItem
	}

	return &messaging_api.QuickReply{
		Items: quickReplyItems,
	}
}

// NewMessageAction creates a message action that sends text when tapped.
// Labels longer than the quick reply limit are cut.
func NewMessageAction(label, text string) Action {
	return &messaging_api.MessageAction{
		Label: stringutil.Truncate(label, MaxQuickReplyLabel),
		Text:  text,
	}
}

// ================================================
// Common QuickReply Actions (pre-defined for reuse)
// ================================================

// QuickReplyHelpAction returns a "Help" quick reply item
func QuickReplyHelpAction() QuickReplyItem {
	return QuickReplyItem{Action: NewMessageAction("📖 Help", "help")}
}

// QuickReplyNewsAction returns a quick reply asking for institution news
func QuickReplyNewsAction() QuickReplyItem {
	return QuickReplyItem{Action: NewMessageAction("📰 News", "Any MAPOLY news updates?")}
}

// QuickReplyTodayAction returns a quick reply asking what is happening now
func QuickReplyTodayAction() QuickReplyItem {
	return QuickReplyItem{Action: NewMessageAction("📅 Today", "What is happening at MAPOLY today?")}
}

// DefaultQuickReplies are attached to every answer.
func DefaultQuickReplies() []QuickReplyItem {
	return []QuickReplyItem{
		QuickReplyHelpAction(),
		QuickReplyNewsAction(),
		QuickReplyTodayAction(),
	}
}
