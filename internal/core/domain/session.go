package domain

import "time"

// RefreshSession is a server-side record of an issued refresh token.
// Deleting it revokes the token before its embedded expiry.
type RefreshSession struct {
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenPair is what signup and login hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
