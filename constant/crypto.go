package constant

// Key generation defaults
const (
	DefaultECDSACurveSize = 256
	DefaultRSAKeySize     = 2048
	MinRSAKeySize         = 2048
)

// Private key envelope parameters
const (
	ScryptN       = 32768
	ScryptR       = 8
	ScryptP       = 1
	ScryptKeyLen  = 32
	SaltSize      = 16
	NonceSize     = 12
	EnvelopeMagic = "LKEY"
	// EnvelopeVersion is bumped whenever KDF parameters change
	EnvelopeVersion byte = 1
)
