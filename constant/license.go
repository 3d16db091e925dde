package constant

import "time"

// ExpiryThresholds defines license expiration warning thresholds in days
const (
	// DefaultExpiryDaysToNormalWarn is the threshold for normal expiry warnings
	DefaultExpiryDaysToNormalWarn = 30
	// DefaultExpiryDaysToUrgentWarn is the threshold for urgent expiry warnings
	DefaultExpiryDaysToUrgentWarn = 7
)

// ExpirationLayout is the wire layout of the Expiration element.
const ExpirationLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// MaxExpiration is the expiration of a license that never expires.
var MaxExpiration = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// Token claim names
const (
	ClaimName        = "nameid"
	ClaimLicenseData = "ld"
)

// TokenSigningMethod is the only JWS algorithm accepted for license tokens.
const TokenSigningMethod = "PS256"
