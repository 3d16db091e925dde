package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LerianStudio/lib-commons/commons"
	"github.com/LerianStudio/lib-commons/commons/log"
	"github.com/LerianStudio/lib-offline-license-go/constant"
	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ClientConfig holds the configuration for the offline license client
type ClientConfig struct {
	AppName       string `validate:"required"` // Application name (e.g., "plugin-fees")
	LicenseFile   string `validate:"required"`
	PublicKey     string `validate:"required_without=PublicKeyFile"`
	PublicKeyFile string `validate:"required_without=PublicKey"`
	Fingerprint   string

	// Product features that must be present in the license
	RequiredFeatures []string `validate:"dive,required"`

	// Background refresh configuration
	RefreshInterval time.Duration `validate:"gte=0"`
	WatchFile       bool
}

// NewDefaultConfig creates a new config with sensible defaults
func NewDefaultConfig() ClientConfig {
	return ClientConfig{
		RefreshInterval: constant.DefaultRefreshIntervalHours * time.Hour,
		WatchFile:       true,
	}
}

// Validate checks if the configuration is valid
func (c *ClientConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}

	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "required_without":
		return fmt.Sprintf("%s is required when %s is empty", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// GenerateFingerprint identifies this application and license file pairing in logs
func (c *ClientConfig) GenerateFingerprint() {
	c.Fingerprint = c.AppName + ":" + commons.HashSHA256(c.LicenseFile+":"+c.PublicKey+":"+c.PublicKeyFile)
}

// FromModel converts a model.Config to a ClientConfig
func FromModel(cfg model.Config, logger log.Logger) (*ClientConfig, error) {
	config := NewDefaultConfig()
	config.AppName = cfg.ApplicationName
	config.LicenseFile = cfg.LicenseFile
	config.PublicKey = strings.TrimSpace(cfg.PublicKey)
	config.PublicKeyFile = cfg.PublicKeyFile
	config.RequiredFeatures = cfg.RequiredFeatures

	if cfg.RefreshInterval > 0 {
		config.RefreshInterval = cfg.RefreshInterval
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.GenerateFingerprint()

	logger.Debugf("License client configured for %s [file: %s | features: %v]",
		config.AppName, config.LicenseFile, config.RequiredFeatures)

	return &config, nil
}
