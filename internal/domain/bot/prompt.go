package bot

import (
	"fmt"
	"strings"
	"time"

	"instareply/internal/domain/conversation"
)

const (
	noHistoryPlaceholder = "No previous conversation."
	noContextPlaceholder = "No specific knowledge base info found."
)

// PromptBuilder assembles the composite generation prompt. Section order is
// fixed: system instructions, behavioral rules, current time, history,
// retrieved context, user message, reply cue.
type PromptBuilder struct {
	location *time.Location
}

// NewPromptBuilder builds prompts with timestamps rendered in loc.
func NewPromptBuilder(loc *time.Location) *PromptBuilder {
	if loc == nil {
		loc = time.UTC
	}
	return &PromptBuilder{location: loc}
}

// Build renders the prompt for one turn.
func (b *PromptBuilder) Build(systemPrompt string, history []conversation.Message, contextText, userMessage string, now time.Time) string {
	historyBlock := FormatHistory(history)
	if historyBlock == "" {
		historyBlock = noHistoryPlaceholder
	}
	if contextText == "" {
		contextText = noContextPlaceholder
	}

	var sb strings.Builder
	sb.WriteString("SYSTEM INSTRUCTIONS:\n")
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nCRITICAL RULES:\n")
	sb.WriteString("1. If the user message is a simple greeting (e.g., \"Hi\", \"Hello\", \"Good morning\"), reply with a polite greeting ONLY. Do NOT include business hours, location, or other details unless specifically asked.\n")
	sb.WriteString("2. Use the provided CONTEXT only if it directly answers the user's question. If the context is irrelevant to the user's message, ignore it.\n")
	sb.WriteString("3. Keep the response concise (under 2 sentences) unless the user asks for detailed information.\n")
	sb.WriteString("4. Do NOT start responses with \"Yes, we are open!\" unless the user specifically asks if you are open. Answer the question naturally and directly.\n")
	sb.WriteString("\nCURRENT TIME:\n")
	sb.WriteString(now.In(b.location).Format("1/2/2006, 3:04:05 PM"))
	sb.WriteString("\n\nPREVIOUS CONVERSATION HISTORY:\n")
	sb.WriteString(historyBlock)
	sb.WriteString("\n\nCONTEXT FROM KNOWLEDGE BASE:\n")
	sb.WriteString(contextText)
	sb.WriteString("\n\nUSER MESSAGE:\n")
	sb.WriteString(userMessage)
	sb.WriteString("\n\nYOUR REPLY:\n")
	return sb.String()
}

// FormatHistory renders history entries as "User:"/"Assistant:" lines.
func FormatHistory(history []conversation.Message) string {
	if len(history) == 0 {
		return ""
	}
	lines := make([]string, len(history))
	for i, msg := range history {
		speaker := "Assistant"
		if msg.Role == conversation.RoleUser {
			speaker = "User"
		}
		lines[i] = fmt.Sprintf("%s: %s", speaker, msg.Content)
	}
	return strings.Join(lines, "\n")
}
