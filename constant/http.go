package constant

// HeaderConstants defines HTTP header names used in requests
const (
	// LicenseIDHeader is set on gated responses with the identifier of the active license
	LicenseIDHeader = "X-License-ID"
)

// Verification server routes
const (
	VerifyRoute  = "/v1/licenses/verify"
	HealthRoute  = "/health"
	MetricsRoute = "/metrics"
)

// TimeConstants defines timeout and interval values
const (
	// DefaultRefreshIntervalHours is the default license revalidation interval in hours
	DefaultRefreshIntervalHours = 2
	// DefaultServerBodyLimit is the maximum accepted request body for the verification server
	DefaultServerBodyLimit = 1 << 20
)
