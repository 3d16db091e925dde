package sdk

import (
	"strings"

	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/pkg"
	"github.com/kelseyhightower/envconfig"
)

// LoadFromEnv builds the client Config from APPLICATION_NAME, LICENSE_FILE,
// LICENSE_PUBLIC_KEY, LICENSE_PUBLIC_KEY_FILE, LICENSE_REQUIRED_FEATURES and
// LICENSE_REFRESH_INTERVAL.
func LoadFromEnv() (model.Config, error) {
	var cfg model.Config

	if err := envconfig.Process("", &cfg); err != nil {
		return model.Config{}, err
	}

	cfg.PublicKey = strings.TrimSpace(cfg.PublicKey)
	cfg.RequiredFeatures = pkg.ParseList(strings.Join(cfg.RequiredFeatures, ","))

	return cfg, nil
}
