package rag

import "strings"

// FormatHistory renders the conversation for the system instruction.
// The none sentinel renders as NoneToken. Turns from unknown senders are skipped.
func FormatHistory(h History) string {
	if h.IsNone() {
		return NoneToken
	}

	var b strings.Builder
	for _, turn := range h.turns {
		switch turn.Sender {
		case SenderUser:
			b.WriteString("User: ")
		case SenderBot:
			b.WriteString("You: ")
		default:
			continue
		}
		b.WriteString(turn.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
