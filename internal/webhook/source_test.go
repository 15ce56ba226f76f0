package webhook

import (
	"testing"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/stretchr/testify/assert"
)

func TestSourceIDs(t *testing.T) {
	tests := []struct {
		name     string
		source   webhook.SourceInterface
		wantChat string
		wantUser string
	}{
		{"user", webhook.UserSource{UserId: "U1"}, "U1", "U1"},
		{"group", webhook.GroupSource{GroupId: "G1", UserId: "U2"}, "G1", "U2"},
		{"room", webhook.RoomSource{RoomId: "R1", UserId: "U3"}, "R1", "U3"},
		{"nil", nil, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chatID, userID := sourceIDs(tt.source)
			assert.Equal(t, tt.wantChat, chatID)
			assert.Equal(t, tt.wantUser, userID)
		})
	}
}

func TestPromptFromText(t *testing.T) {
	self := func(index, length int32) webhook.MentioneeInterface {
		return webhook.UserMentionee{Index: index, Length: length, IsSelf: true}
	}
	other := webhook.UserMentionee{Index: 0, Length: 5, UserId: "U9"}

	tests := []struct {
		name      string
		msg       webhook.TextMessageContent
		want      string
		mentioned bool
	}{
		{
			name: "no mention",
			msg:  webhook.TextMessageContent{Text: "  where is  mapoly "},
			want: "where is mapoly",
		},
		{
			name:      "leading mention",
			msg:       webhook.TextMessageContent{Text: "@MapGPT where is mapoly", Mention: &webhook.Mention{Mentionees: []webhook.MentioneeInterface{self(0, 7)}}},
			want:      "where is mapoly",
			mentioned: true,
		},
		{
			name: "two self mentions removed back to front",
			msg: webhook.TextMessageContent{Text: "@MapGPT hod of cs @MapGPT", Mention: &webhook.Mention{Mentionees: []webhook.MentioneeInterface{
				self(0, 7), self(18, 7),
			}}},
			want:      "hod of cs",
			mentioned: true,
		},
		{
			name:      "other user mention kept",
			msg:       webhook.TextMessageContent{Text: "@Tolu mapoly news", Mention: &webhook.Mention{Mentionees: []webhook.MentioneeInterface{other}}},
			want:      "@Tolu mapoly news",
			mentioned: false,
		},
		{
			name:      "multibyte text uses rune offsets",
			msg:       webhook.TextMessageContent{Text: "é @MapGPT hi", Mention: &webhook.Mention{Mentionees: []webhook.MentioneeInterface{self(2, 7)}}},
			want:      "é hi",
			mentioned: true,
		},
		{
			name:      "out of range mention ignored",
			msg:       webhook.TextMessageContent{Text: "hi", Mention: &webhook.Mention{Mentionees: []webhook.MentioneeInterface{self(10, 4)}}},
			want:      "hi",
			mentioned: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, promptFromText(tt.msg))
			assert.Equal(t, tt.mentioned, isBotMentioned(tt.msg))
		})
	}
}
