package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// withTimeout bounds a storage call when a timeout is configured. A zero
// timeout leaves the caller's context untouched.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

func emailGuardKey(electionID, email string) string {
	return fmt.Sprintf("%s#email#%s", electionID, strings.ToLower(strings.TrimSpace(email)))
}

func phoneGuardKey(electionID, phone string) string {
	return fmt.Sprintf("%s#phone#%s", electionID, strings.TrimSpace(phone))
}
