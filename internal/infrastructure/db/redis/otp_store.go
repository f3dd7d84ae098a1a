package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eduventure/auth-service/internal/core/domain"
)

// otpGrace keeps an expired challenge readable long enough for Validate to
// report it as expired rather than missing.
const otpGrace = time.Hour

// OTPStore keeps OTP challenges in Redis.
// Key format: otp:<email>
type OTPStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewOTPStore creates an OTPStore wrapping the given Redis client.
func NewOTPStore(client redis.UniversalClient) *OTPStore {
	return &OTPStore{client: client, now: time.Now}
}

type otpPayload struct {
	OTP            string    `json:"otp"`
	ExpirationDate time.Time `json:"expiration_date"`
}

// Save overwrites whatever challenge the email had.
func (s *OTPStore) Save(ctx context.Context, c *domain.OTPChallenge) error {
	payload, err := json.Marshal(otpPayload{OTP: c.Code, ExpirationDate: c.ExpirationDate.UTC()})
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}

	ttl := c.ExpirationDate.Sub(s.now()) + otpGrace
	if err := s.client.Set(ctx, s.key(c.Email), payload, ttl).Err(); err != nil {
		return fmt.Errorf("persist otp: %w", err)
	}
	return nil
}

func (s *OTPStore) FindByEmail(ctx context.Context, email string) (*domain.OTPChallenge, error) {
	raw, err := s.client.Get(ctx, s.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrOTPNotFound
		}
		return nil, fmt.Errorf("load otp: %w", err)
	}

	var p otpPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode otp: %w", err)
	}
	return &domain.OTPChallenge{Email: email, Code: p.OTP, ExpirationDate: p.ExpirationDate}, nil
}

func (s *OTPStore) DeleteByEmail(ctx context.Context, email string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(email)).Result()
	if err != nil {
		return false, fmt.Errorf("delete otp: %w", err)
	}
	return n > 0, nil
}

func (s *OTPStore) key(email string) string {
	return "otp:" + email
}
