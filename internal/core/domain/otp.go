package domain

import "time"

// OTPChallenge is a one-time passcode proving control of an email address.
// At most one live challenge exists per email.
type OTPChallenge struct {
	Email          string    `json:"email"`
	Code           string    `json:"otp"`
	ExpirationDate time.Time `json:"expiration_date"`
}

// ExpiredAt reports whether the challenge is no longer valid at now.
// A request landing exactly on the expiration instant is expired.
func (c *OTPChallenge) ExpiredAt(now time.Time) bool {
	return !now.Before(c.ExpirationDate)
}
