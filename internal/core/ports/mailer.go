package ports

import "context"

// Mailer delivers passcode emails. Failures are returned, never retried.
type Mailer interface {
	SendOTP(ctx context.Context, to, code string) error
}
