package model

import "time"

// Config is the public configuration of the offline license client.
type Config struct {
	ApplicationName  string        `json:"applicationName" envconfig:"APPLICATION_NAME"`
	LicenseFile      string        `json:"licenseFile" envconfig:"LICENSE_FILE"`
	PublicKey        string        `json:"publicKey" envconfig:"LICENSE_PUBLIC_KEY"`
	PublicKeyFile    string        `json:"publicKeyFile" envconfig:"LICENSE_PUBLIC_KEY_FILE"`
	RequiredFeatures []string      `json:"requiredFeatures" envconfig:"LICENSE_REQUIRED_FEATURES"`
	RefreshInterval  time.Duration `json:"refreshInterval" envconfig:"LICENSE_REFRESH_INTERVAL" default:"2h"`
}

// KeyFile is the JSON export form of RSA signing parameters.
type KeyFile struct {
	PrivateKey string `json:"PrivateKey,omitempty"`
	PublicKey  string `json:"PublicKey"`
	KeyLength  int    `json:"KeyLength"`
}
