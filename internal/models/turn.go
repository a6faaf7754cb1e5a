// ABOUTME: Turn represents a single message in the chat history
// ABOUTME: History helpers enforce the bounded, caller-owned memory window
package models

// Message roles in a conversation.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// MaxHistoryTurns bounds how many turns of history survive an exchange
// (5 user/assistant pairs).
const MaxHistoryTurns = 10

// Turn is a single conversation message.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ValidRole reports whether role is one a history turn may carry.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}

// AppendExchange appends a user question and assistant answer to history
// and truncates to the most recent MaxHistoryTurns turns, keeping newest.
// The input slice is not modified.
func AppendExchange(history []Turn, question, answer string) []Turn {
	updated := make([]Turn, 0, len(history)+2)
	updated = append(updated, history...)
	updated = append(updated,
		Turn{Role: RoleUser, Content: question},
		Turn{Role: RoleAssistant, Content: answer},
	)
	if len(updated) > MaxHistoryTurns {
		updated = updated[len(updated)-MaxHistoryTurns:]
	}
	return updated
}

// Tail returns the last n turns of history in chronological order.
func Tail(history []Turn, n int) []Turn {
	if n <= 0 || len(history) == 0 {
		return nil
	}
	if len(history) > n {
		return history[len(history)-n:]
	}
	return history
}
