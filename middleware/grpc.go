package middleware

import (
	"context"

	cn "github.com/LerianStudio/lib-offline-license-go/constant"
	"github.com/LerianStudio/lib-offline-license-go/pkg"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnaryServerInterceptor creates a gRPC unary server interceptor that validates the license
// It works similarly to the HTTP middleware but adapted for gRPC context
func (c *LicenseClient) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	c.startupValidation()

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if err := c.checkGRPC(info.FullMethod); err != nil {
			return nil, err
		}

		return handler(ctx, req)
	}
}

// StreamServerInterceptor creates a gRPC stream server interceptor that validates the license
func (c *LicenseClient) StreamServerInterceptor() grpc.StreamServerInterceptor {
	c.startupValidation()

	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if err := c.checkGRPC(info.FullMethod); err != nil {
			return err
		}

		return handler(srv, ss)
	}
}

// FeatureUnaryInterceptor rejects calls to the given methods unless the active
// license carries the product feature
func (c *LicenseClient) FeatureUnaryInterceptor(feature string, methods ...string) grpc.UnaryServerInterceptor {
	gated := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		gated[m] = struct{}{}
	}

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if c == nil || c.validator == nil {
			return handler(ctx, req)
		}

		if _, ok := gated[info.FullMethod]; ok && !c.hasFeature(feature) {
			c.GetLogger().Warnf("Feature %s is not licensed for %s", feature, info.FullMethod)
			return nil, status.Error(codes.PermissionDenied, pkg.ValidateBusinessError(cn.ErrFeatureNotLicensed, "", feature).Error())
		}

		return handler(ctx, req)
	}
}

func (c *LicenseClient) checkGRPC(method string) error {
	if c == nil || c.validator == nil {
		return nil
	}

	if reason := c.denial(); reason != "" {
		c.GetLogger().Errorf("Call to %s denied: %s", method, reason)
		return status.Error(codes.PermissionDenied, pkg.ValidateBusinessError(cn.ErrLicenseInvalid, "", reason).Error())
	}

	return nil
}
