package middleware

import (
	cn "github.com/LerianStudio/lib-offline-license-go/constant"
	"github.com/LerianStudio/lib-offline-license-go/pkg"
	pkgHTTP "github.com/LerianStudio/lib-offline-license-go/pkg/net/http"
	"github.com/gofiber/fiber/v2"
)

// Middleware creates a Fiber middleware that validates the license and manages background refresh.
// Requests are rejected with 403 while the current verdict is invalid.
func (c *LicenseClient) Middleware() fiber.Handler {
	c.startupValidation()

	return func(ctx *fiber.Ctx) error {
		if c == nil || c.validator == nil {
			return ctx.Next()
		}

		if reason := c.denial(); reason != "" {
			c.GetLogger().Errorf("Request to %s denied: %s", ctx.Path(), reason)
			return pkgHTTP.WithError(ctx, pkg.ValidateBusinessError(cn.ErrLicenseInvalid, "", reason))
		}

		if v, ok := c.Verdict(); ok {
			ctx.Set(cn.LicenseIDHeader, v.LicenseID)
		}

		return ctx.Next()
	}
}

// RequireFeature rejects requests with 403 unless the active license carries the product feature
func (c *LicenseClient) RequireFeature(name string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if c == nil || c.validator == nil {
			return ctx.Next()
		}

		if !c.hasFeature(name) {
			c.GetLogger().Warnf("Feature %s is not licensed", name)
			return pkgHTTP.WithError(ctx, pkg.ValidateBusinessError(cn.ErrFeatureNotLicensed, "", name))
		}

		return ctx.Next()
	}
}
