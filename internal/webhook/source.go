package webhook

import (
	"slices"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/mapgpt/mapgpt-go/internal/stringutil"
)

// sourceIDs returns the chat ID (user, group or room) and the sending user's ID.
func sourceIDs(source webhook.SourceInterface) (chatID, userID string) {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId, s.UserId
	case webhook.GroupSource:
		return s.GroupId, s.UserId
	case webhook.RoomSource:
		return s.RoomId, s.UserId
	}
	return "", ""
}

func isPersonalChat(source webhook.SourceInterface) bool {
	_, ok := source.(webhook.UserSource)
	return ok
}

// selfMentions returns the bot's own mentions in msg, last first.
func selfMentions(msg webhook.TextMessageContent) []webhook.UserMentionee {
	if msg.Mention == nil {
		return nil
	}
	var out []webhook.UserMentionee
	for _, m := range msg.Mention.Mentionees {
		if um, ok := m.(webhook.UserMentionee); ok && um.IsSelf {
			out = append(out, um)
		}
	}
	slices.SortFunc(out, func(a, b webhook.UserMentionee) int {
		return int(b.Index - a.Index)
	})
	return out
}

// isBotMentioned reports whether msg mentions the bot.
func isBotMentioned(msg webhook.TextMessageContent) bool {
	return len(selfMentions(msg)) > 0
}

// promptFromText strips the bot's mentions from msg and collapses whitespace.
// Mention offsets count runes.
func promptFromText(msg webhook.TextMessageContent) string {
	runes := []rune(msg.Text)
	for _, m := range selfMentions(msg) {
		start := max(int(m.Index), 0)
		end := min(int(m.Index+m.Length), len(runes))
		if start >= end {
			continue
		}
		runes = append(runes[:start], runes[end:]...)
	}
	return stringutil.CollapseSpace(string(runes))
}
