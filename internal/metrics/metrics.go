// Package metrics defines and registers all custom Prometheus metrics for the
// auth service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry on package load and
// are served by the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// Result label values shared by the lifecycle counters.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// ── Identity metrics ─────────────────────────────────────────────────────────

// SignupsTotal counts signup attempts.
// Label:
//   - result: "success", "conflict", "invalid" or "failure"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── OTP metrics ──────────────────────────────────────────────────────────────

// OTPIssuedTotal counts passcodes generated.
// Label:
//   - reason: "signup" or "resend"
var OTPIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_issued_total",
		Help:      "Total number of OTP challenges issued, by reason.",
	},
	[]string{"reason"},
)

// OTPValidationsTotal counts validation outcomes.
// Label:
//   - result: "success", "not_found", "expired", "mismatch" or "failure"
var OTPValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_validations_total",
		Help:      "Total number of OTP validation attempts, by result.",
	},
	[]string{"result"},
)

// ── Token metrics ────────────────────────────────────────────────────────────

// TokenRefreshesTotal counts access token refreshes.
// Label:
//   - result: "success", "invalid", "revoked" or "failure"
var TokenRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of access token refresh attempts, by result.",
	},
	[]string{"result"},
)

// ── Mail metrics ─────────────────────────────────────────────────────────────

// MailSendDuration measures SMTP delivery latency of passcode emails.
// Label:
//   - result: "success" or "failure"
var MailSendDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mail_send_duration_seconds",
		Help:      "Duration of OTP email delivery.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
