package services

import (
	"context"
	"fmt"
	"strings"

	"assistant/models"
)

// LocalGateway answers without any network call. It exists for development
// (COMPLETION_PROVIDER=local) so the UI can be exercised offline.
type LocalGateway struct{}

func (LocalGateway) Complete(ctx context.Context, history []ChatMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var last string
	turns := 0
	for _, m := range history {
		if m.Role == models.RoleUser {
			turns++
			last = strings.TrimSpace(m.Text)
		}
	}
	if last == "" {
		last = "your question"
	}

	b := &strings.Builder{}
	fmt.Fprintf(b, "Local assistant reply to: %s\n\n", truncate(last, 60))
	fmt.Fprintf(b, "- Turns so far: %d\n", turns)
	fmt.Fprintln(b, "- Set COMPLETION_PROVIDER=openai and OPENAI_API_KEY for real answers.")
	return b.String(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
