package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/eduventure/auth-service/internal/core/domain"
	"github.com/eduventure/auth-service/internal/core/ports"
)

const (
	OTPTTL = 5 * time.Minute

	otpMin = 1000
	otpMax = 9999
)

// OTPManager issues and validates email passcodes.
type OTPManager struct {
	repo ports.OTPRepository
	now  func() time.Time
}

func NewOTPManager(repo ports.OTPRepository, now func() time.Time) *OTPManager {
	if now == nil {
		now = time.Now
	}
	return &OTPManager{repo: repo, now: now}
}

// Issue replaces any challenge for email with a fresh passcode and returns it.
// Concurrent issues for one email leave exactly one live challenge. Delivery
// is the caller's job.
func (m *OTPManager) Issue(ctx context.Context, email string) (string, error) {
	code, err := newPasscode()
	if err != nil {
		return "", err
	}

	challenge := &domain.OTPChallenge{
		Email:          email,
		Code:           code,
		ExpirationDate: m.now().Add(OTPTTL),
	}
	if err := m.repo.Save(ctx, challenge); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// Validate checks code against the live challenge for email. A mismatch
// leaves the challenge in place so the user can retry until it expires.
func (m *OTPManager) Validate(ctx context.Context, email, code string) error {
	challenge, err := m.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if challenge.ExpiredAt(m.now()) {
		if err := m.Discard(ctx, email); err != nil {
			return err
		}
		return domain.ErrOTPExpired
	}

	if challenge.Code != code {
		return domain.ErrOTPMismatch
	}

	return m.Discard(ctx, email)
}

// Discard deletes the challenge for email, if any.
func (m *OTPManager) Discard(ctx context.Context, email string) error {
	if _, err := m.repo.DeleteByEmail(ctx, email); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}

// newPasscode returns a uniformly random integer in [otpMin, otpMax].
func newPasscode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}
