package constant

// Environment variable names
const (
	// License document file path environment variable
	EnvLicenseFile = "LICENSE_FILE"

	// Base64 PKIX public key environment variable
	EnvLicensePublicKey = "LICENSE_PUBLIC_KEY"

	// Public key file path environment variable
	EnvLicensePublicKeyFile = "LICENSE_PUBLIC_KEY_FILE"

	// Application name environment variable
	EnvApplicationName = "APPLICATION_NAME"

	// Required product features environment variable (comma-separated list)
	EnvRequiredFeatures = "LICENSE_REQUIRED_FEATURES"

	// Revalidation interval environment variable (Go duration)
	EnvRefreshInterval = "LICENSE_REFRESH_INTERVAL"
)

// CLIEnvPrefix is the viper environment prefix of the licensectl command
const CLIEnvPrefix = "LICENSECTL"
