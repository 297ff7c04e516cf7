// Package prompt builds the ordered message sequence sent to a
// generation backend. Assembly is pure: same inputs, same output,
// no side effects.
package prompt

import (
	"strings"

	"github.com/avasile/mnemo/internal/core"
)

// Assemble produces the backend message sequence in its fixed order:
// system preamble, stored history verbatim, one system entry with the
// memory block when hits exist, then the new user text.
func Assemble(systemPrompt string, history []core.StoredMessage, hits []core.MemoryHit, userText string) []core.Message {
	if systemPrompt == "" {
		systemPrompt = core.DefaultSystemPrompt
	}

	messages := make([]core.Message, 0, len(history)+3)
	messages = append(messages, core.Message{Role: core.RoleSystem, Content: systemPrompt})

	for _, m := range history {
		messages = append(messages, core.Message{Role: m.Role, Content: m.Content})
	}

	if len(hits) > 0 {
		messages = append(messages, core.Message{
			Role:    core.RoleSystem,
			Content: "Relevant long-term memory:\n" + FormatMemoryBlock(hits),
		})
	}

	messages = append(messages, core.Message{Role: core.RoleUser, Content: userText})
	return messages
}

// FormatMemoryBlock renders hits as one bulleted line per hit, in the
// order the index returned them.
func FormatMemoryBlock(hits []core.MemoryHit) string {
	lines := make([]string, 0, len(hits))
	for _, h := range hits {
		lines = append(lines, "- ["+h.Scope+"] "+h.Title+": "+h.Snippet)
	}
	return strings.Join(lines, "\n")
}
