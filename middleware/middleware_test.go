package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LerianStudio/lib-commons/commons/log"
	cn "github.com/LerianStudio/lib-offline-license-go/constant"
	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/test/helper"
	"github.com/LerianStudio/lib-offline-license-go/test/helper/testlogger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const licensePath = "/srv/license.xml"

var licenseID = uuid.MustParse("0d6b2f0e-8a53-4d6f-9a3c-1d2e3f4a5b6c")

func newClient(t *testing.T, expiration time.Time, terminated *[]string) *LicenseClient {
	t.Helper()

	fs := afero.NewMemMapFs()
	pub := helper.WriteSignedLicense(t, fs, licensePath, model.NewLicenseBuilder().
		WithUniqueIdentifier(licenseID).
		As(model.Enterprise).
		ExpiresAt(expiration).
		LicensedTo("Acme", "").
		WithProductFeatures(model.Attribute{Key: "Reports", Value: "true"}))

	var logger log.Logger = testlogger.New()

	c := NewLicenseClient(model.Config{
		ApplicationName: "ledger",
		LicenseFile:     licensePath,
		PublicKey:       pub,
	}, &logger)
	require.NotNil(t, c)
	t.Cleanup(c.ShutdownBackgroundRefresh)

	c.SetFilesystem(fs)
	c.SetTerminationHandler(func(reason string) {
		if terminated != nil {
			*terminated = append(*terminated, reason)
		}
	})

	return c
}

func newApp(c *LicenseClient) *fiber.App {
	app := fiber.New()
	app.Use(c.Middleware())
	app.Get("/ping", func(ctx *fiber.Ctx) error { return ctx.SendString("pong") })
	app.Get("/reports", c.RequireFeature("Reports"), func(ctx *fiber.Ctx) error { return ctx.SendString("ok") })
	app.Get("/sales", c.RequireFeature("Sales"), func(ctx *fiber.Ctx) error { return ctx.SendString("ok") })

	return app
}

func TestMiddleware_ValidLicense(t *testing.T) {
	c := newClient(t, time.Now().AddDate(1, 0, 0), nil)
	app := newApp(c)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))
	assert.Equal(t, licenseID.String(), resp.Header.Get(cn.LicenseIDHeader))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/reports", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMiddleware_RequireFeature(t *testing.T) {
	c := newClient(t, time.Now().AddDate(1, 0, 0), nil)
	app := newApp(c)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/sales", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), cn.ErrFeatureNotLicensed.Error())
}

func TestMiddleware_ExpiredLicense(t *testing.T) {
	var terminated []string

	c := newClient(t, time.Now().AddDate(0, 0, -1), &terminated)
	app := newApp(c)

	require.Len(t, terminated, 1)
	assert.Contains(t, terminated[0], "expired")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), cn.ErrLicenseInvalid.Error())
}

func TestMiddleware_StartupValidatesOnce(t *testing.T) {
	var terminated []string

	c := newClient(t, time.Now().AddDate(0, 0, -1), &terminated)
	_ = c.Middleware()
	_ = c.UnaryServerInterceptor()
	_ = c.StreamServerInterceptor()

	assert.Len(t, terminated, 1)
}

func TestMiddleware_MissingFilePanics(t *testing.T) {
	c := newClient(t, time.Now().AddDate(1, 0, 0), nil)
	c.SetFilesystem(afero.NewMemMapFs())

	assert.Panics(t, func() { c.Middleware() })
}

func TestMiddleware_NilClient(t *testing.T) {
	var c *LicenseClient

	app := fiber.New()
	app.Use(c.Middleware())
	app.Get("/ping", func(ctx *fiber.Ctx) error { return ctx.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewLicenseClient_InvalidConfig(t *testing.T) {
	var logger log.Logger = testlogger.New()

	assert.Nil(t, NewLicenseClient(model.Config{}, &logger))
}

func unaryHandler(ctx context.Context, req any) (any, error) {
	return "handled", nil
}

func TestUnaryServerInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/ledger.v1.Ledger/Get"}

	valid := newClient(t, time.Now().AddDate(1, 0, 0), nil)
	resp, err := valid.UnaryServerInterceptor()(context.Background(), nil, info, unaryHandler)
	require.NoError(t, err)
	assert.Equal(t, "handled", resp)

	expired := newClient(t, time.Now().AddDate(0, 0, -1), &[]string{})
	_, err = expired.UnaryServerInterceptor()(context.Background(), nil, info, unaryHandler)
	require.Error(t, err)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

type fakeStream struct {
	grpc.ServerStream
}

func TestStreamServerInterceptor(t *testing.T) {
	info := &grpc.StreamServerInfo{FullMethod: "/ledger.v1.Ledger/Watch"}

	called := false
	handler := func(srv any, ss grpc.ServerStream) error {
		called = true
		return nil
	}

	expired := newClient(t, time.Now().AddDate(0, 0, -1), &[]string{})
	err := expired.StreamServerInterceptor()(nil, fakeStream{}, info, handler)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	assert.False(t, called)

	valid := newClient(t, time.Now().AddDate(1, 0, 0), nil)
	require.NoError(t, valid.StreamServerInterceptor()(nil, fakeStream{}, info, handler))
	assert.True(t, called)
}

func TestFeatureUnaryInterceptor(t *testing.T) {
	c := newClient(t, time.Now().AddDate(1, 0, 0), nil)
	c.startupValidation()

	interceptor := c.FeatureUnaryInterceptor("Sales", "/ledger.v1.Ledger/Forecast")

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/ledger.v1.Ledger/Forecast"}, unaryHandler)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	resp, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/ledger.v1.Ledger/Get"}, unaryHandler)
	require.NoError(t, err)
	assert.Equal(t, "handled", resp)

	reports := c.FeatureUnaryInterceptor("Reports", "/ledger.v1.Ledger/Forecast")
	_, err = reports(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/ledger.v1.Ledger/Forecast"}, unaryHandler)
	assert.NoError(t, err)
}
