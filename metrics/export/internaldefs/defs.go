package internaldefs

import (
	authgate "github.com/authgate/authgate"
)

// CounterDef binds a core metric ID to its exported name and help text.
type CounterDef struct {
	ID   authgate.MetricID
	Name string
	Help string
}

// HistogramDef binds a core histogram ID to its exported name and help text.
type HistogramDef struct {
	ID   authgate.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter the export backends publish, in a stable
// order.
var CounterDefs = []CounterDef{
	{ID: authgate.MetricRegisterSuccess, Name: "authgate_register_success_total", Help: "Successful registrations."},
	{ID: authgate.MetricRegisterDuplicate, Name: "authgate_register_duplicate_total", Help: "Registrations rejected for an existing username."},
	{ID: authgate.MetricLoginSuccess, Name: "authgate_login_success_total", Help: "Successful login attempts."},
	{ID: authgate.MetricLoginFailure, Name: "authgate_login_failure_total", Help: "Failed login attempts."},
	{ID: authgate.MetricAuthenticateSuccess, Name: "authgate_authenticate_success_total", Help: "Tokens accepted by verification."},
	{ID: authgate.MetricAuthenticateFailure, Name: "authgate_authenticate_failure_total", Help: "Tokens rejected as malformed or badly signed."},
	{ID: authgate.MetricTokenExpired, Name: "authgate_token_expired_total", Help: "Tokens rejected for a lapsed expiry."},
	{ID: authgate.MetricSessionMissing, Name: "authgate_session_missing_total", Help: "Valid tokens presented without a tracked session."},
	{ID: authgate.MetricSessionCreated, Name: "authgate_session_created_total", Help: "Session records written at login."},
	{ID: authgate.MetricSessionSwept, Name: "authgate_session_swept_total", Help: "Session records removed by lazy expiry sweeps."},
	{ID: authgate.MetricLogout, Name: "authgate_logout_total", Help: "Explicit logouts that removed a session record."},
}

// HistogramDefs lists the exported histograms.
var HistogramDefs = []HistogramDef{
	{ID: authgate.MetricAuthenticateLatency, Name: "authgate_authenticate_latency_seconds", Help: "Token verification latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, matching the core
// histogram layout.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with characters legal in
// instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed layout.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// Prometheus expects.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
