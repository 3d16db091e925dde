package util

import (
	"errors"

	"github.com/LerianStudio/lib-commons/commons"
	"github.com/LerianStudio/lib-commons/commons/log"
	cn "github.com/LerianStudio/lib-offline-license-go/constant"
	"github.com/LerianStudio/lib-offline-license-go/model"
)

// ValidateEnvVariables checks that the variables the license client needs are set
func ValidateEnvVariables(cfg *model.Config, l log.Logger) error {
	if cfg == nil {
		return errors.New("license client config is nil")
	}

	if commons.IsNilOrEmpty(&cfg.ApplicationName) {
		err := "missing application name environment variable " + cn.EnvApplicationName

		l.Error(err)

		return errors.New(err)
	}

	if commons.IsNilOrEmpty(&cfg.LicenseFile) {
		err := "missing license file environment variable " + cn.EnvLicenseFile

		l.Error(err)

		return errors.New(err)
	}

	if commons.IsNilOrEmpty(&cfg.PublicKey) && commons.IsNilOrEmpty(&cfg.PublicKeyFile) {
		err := "missing public key: set " + cn.EnvLicensePublicKey + " or " + cn.EnvLicensePublicKeyFile

		l.Error(err)

		return errors.New(err)
	}

	return nil
}
