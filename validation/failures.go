package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/LerianStudio/lib-offline-license-go/model"
)

var (
	errMissingLicense    = errors.New("no license to validate")
	errMissingLicenseKey = errors.New("no license key to validate")
)

func invalidSignature(cause error) model.ValidationFailure {
	f := model.ValidationFailure{
		Code:         model.InvalidSignature,
		Message:      "License signature validation error!",
		HowToResolve: "The license signature and data do not match. This usually happens when a license file is corrupted or has been altered.",
	}

	if cause != nil {
		f.Message = fmt.Sprintf("%s (%v)", f.Message, cause)
	}

	return f
}

// CustomFailure is a CustomAssertionFailed descriptor for AssertThat.
func CustomFailure(message string) model.ValidationFailure {
	return model.ValidationFailure{Code: model.CustomAssertionFailed, Message: message}
}

// FeatureNotLicensed is the failure recorded when a required product feature is absent.
func FeatureNotLicensed(name string) model.ValidationFailure {
	return model.ValidationFailure{
		Code:         model.CustomAssertionFailed,
		Message:      fmt.Sprintf("product feature %q is not licensed", name),
		HowToResolve: "Contact your vendor to add the feature to your license.",
	}
}

func messageOr(message []string, fallback string) string {
	for _, m := range message {
		if strings.TrimSpace(m) != "" {
			return m
		}
	}

	return fallback
}
