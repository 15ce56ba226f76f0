// Package chat turns a user prompt into an answer: canned replies for help and
// off-topic prompts, otherwise a completion grounded in matched topic context
// or a retrieval digest.
package chat

import (
	"strings"

	"github.com/mapgpt/mapgpt-go/internal/genai"
	"github.com/mapgpt/mapgpt-go/internal/knowledge"
)

// Composer builds canned replies and completion messages from the knowledge base.
type Composer struct {
	base       *knowledge.Base
	systemRole bool
}

// NewComposer creates a composer. With systemRole the institution instruction
// is sent as a system message ahead of the user message.
func NewComposer(base *knowledge.Base, systemRole bool) *Composer {
	return &Composer{base: base, systemRole: systemRole}
}

// ShortCircuit returns the canned reply for prompt, if one applies.
// Help phrases are checked before the domain check.
func (c *Composer) ShortCircuit(prompt string) (string, Stage, bool) {
	if c.base.IsHelp(prompt) {
		return c.base.Help.Text, StageHelp, true
	}
	if !c.base.InDomain(strings.ToLower(prompt)) {
		return c.base.Refusal, StageOutOfDomain, true
	}
	return "", "", false
}

// Compose builds the messages for one completion call. additional is the
// matched topic context or retrieval digest and is omitted when empty.
func (c *Composer) Compose(prompt, additional string) []genai.Message {
	user := genai.UserMessage(UserContent(prompt, additional))
	if !c.systemRole {
		return []genai.Message{user}
	}
	return []genai.Message{genai.SystemMessage(c.base.SystemInstruction()), user}
}

// UserContent joins prompt and additional context the way the model sees it.
func UserContent(prompt, additional string) string {
	if additional == "" {
		return prompt
	}
	return prompt + ". Additional context: " + additional
}
