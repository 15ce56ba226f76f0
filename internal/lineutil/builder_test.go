package lineutil

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bold", "The HOD is **Dr. Adeyemi**.", "The HOD is Dr. Adeyemi."},
		{"link", "See [the portal](https://mapoly.edu.ng/portal).", "See the portal (https://mapoly.edu.ng/portal)."},
		{"numbered list untouched", "1. First\n2. Second", "1. First\n2. Second"},
		{"non-http link untouched", "[x](javascript:alert(1))", "[x](javascript:alert(1))"},
		{"unbalanced bold untouched", "**open", "**open"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}

func TestNewTextMessage_Truncates(t *testing.T) {
	msg := NewTextMessage(strings.Repeat("a", MaxTextMessageLength+100))

	assert.Equal(t, MaxTextMessageLength, utf8.RuneCountInString(msg.Text))
	assert.True(t, strings.HasSuffix(msg.Text, "..."))
	assert.Nil(t, msg.QuickReply)
}

func TestNewTextMessageWithQuickReply(t *testing.T) {
	msg := NewTextMessageWithQuickReply("**Hi**", DefaultQuickReplies()...)

	assert.Equal(t, "Hi", msg.Text)
	require.NotNil(t, msg.QuickReply)
	require.Len(t, msg.QuickReply.Items, 3)

	action, ok := msg.QuickReply.Items[0].Action.(*messaging_api.MessageAction)
	require.True(t, ok)
	assert.Equal(t, "help", action.Text)
}

func TestNewQuickReply_Limit(t *testing.T) {
	items := make([]QuickReplyItem, 20)
	for i := range items {
		items[i] = QuickReplyHelpAction()
	}
	items[0].ImageURL = "https://example.com/icon.png"

	qr := NewQuickReply(items)

	assert.Len(t, qr.Items, MaxQuickReplyItemCount)
	assert.Equal(t, "https://example.com/icon.png", qr.Items[0].ImageUrl)
}

func TestNewMessageAction_LabelLimit(t *testing.T) {
	action := NewMessageAction(strings.Repeat("x", 30), "text").(*messaging_api.MessageAction)

	assert.Equal(t, MaxQuickReplyLabel, utf8.RuneCountInString(action.Label))
	assert.Equal(t, "text", action.Text)
}
