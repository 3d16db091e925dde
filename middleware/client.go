package middleware

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/LerianStudio/lib-commons/commons/log"
	"github.com/LerianStudio/lib-offline-license-go/internal/shutdown"
	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/validation"
	"github.com/spf13/afero"
)

// LicenseClient is the public client API that exposes middleware functionality
// It's a wrapper around the internal validation client
type LicenseClient struct {
	validator *validation.Client
	// initOnce ensures startup validation and background refresh happen only once
	// even when both HTTP middleware and gRPC interceptors are used
	initOnce sync.Once
}

// NewLicenseClient creates a new license client with middleware capabilities.
// It returns nil when the configuration is invalid; the error is logged.
func NewLicenseClient(cfg model.Config, logger *log.Logger) *LicenseClient {
	validator, err := validation.New(cfg, logger)
	if err != nil {
		return nil
	}

	return &LicenseClient{
		validator: validator,
	}
}

// validateLicenseOnStartup validates the license file during application start.
// Panics if the license cannot be loaded so that the app never starts unlicensed.
// An invalid license is handled by the termination handler.
func (c *LicenseClient) validateLicenseOnStartup(ctx context.Context) {
	l := c.validator.GetLogger()

	verdict, err := c.validator.Validate(ctx)
	if err != nil {
		l.Errorf("License validation failed: %v", err)
		panic(fmt.Sprintf("License validation failed: %s", err.Error()))
	}

	c.logLicenseStatus(verdict)
}

// logLicenseStatus reports a license that survived an invalid verdict because
// a custom termination handler did not stop the application
func (c *LicenseClient) logLicenseStatus(v model.Verdict) {
	if v.Valid {
		return
	}

	l := c.validator.GetLogger()

	if v.IsTrial {
		l.Errorf("LICENSE TRIAL: license %s is an invalid trial license - application access will be denied", v.LicenseID)

		return
	}

	l.Errorf("LICENSE INVALID: license %s is not valid - application access will be denied", v.LicenseID)
}

// SetFilesystem replaces the filesystem the license is read from. Call it before
// creating middleware or interceptors.
func (c *LicenseClient) SetFilesystem(fs afero.Fs) {
	if c != nil && c.validator != nil {
		c.validator.SetFilesystem(fs)
	}
}

// SetTerminationHandler allows customizing how the application terminates when license validation fails
func (c *LicenseClient) SetTerminationHandler(handler func(reason string)) {
	if c != nil && c.validator != nil {
		c.validator.SetTerminationHandler(shutdown.Handler(handler))
	}
}

// ShutdownBackgroundRefresh stops the background refresh process
func (c *LicenseClient) ShutdownBackgroundRefresh() {
	if c != nil && c.validator != nil {
		c.validator.ShutdownBackgroundRefresh()
	}
}

// GetLogger returns the logger used by the client
func (c *LicenseClient) GetLogger() log.Logger {
	return c.validator.GetLogger()
}

// Verdict returns the current license verdict
func (c *LicenseClient) Verdict() (model.Verdict, bool) {
	if c == nil || c.validator == nil {
		return model.Verdict{}, false
	}

	return c.validator.Current()
}

// startupValidation performs common validation steps for both HTTP and gRPC
func (c *LicenseClient) startupValidation() {
	if c == nil || c.validator == nil {
		return
	}

	c.initOnce.Do(func() {
		bgCtx := context.Background()
		c.validateLicenseOnStartup(bgCtx)
		c.validator.StartBackgroundRefresh(bgCtx)
	})
}

// denial returns the reason a request must be rejected, or an empty string.
func (c *LicenseClient) denial() string {
	v, ok := c.validator.Current()
	if !ok {
		return "license has not been validated"
	}

	if v.Valid {
		return ""
	}

	msgs := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		msgs = append(msgs, e.Message)
	}

	if len(msgs) == 0 {
		return "license could not be loaded"
	}

	return strings.Join(msgs, "; ")
}

// hasFeature reports whether the active license carries the product feature.
func (c *LicenseClient) hasFeature(name string) bool {
	l := c.validator.License()

	return l != nil && l.ProductFeatures.Contains(name)
}
