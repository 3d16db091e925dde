package validation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/LerianStudio/lib-commons/commons/log"
	"github.com/LerianStudio/lib-offline-license-go/document"
	"github.com/LerianStudio/lib-offline-license-go/keys"
	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/pkg"
	"github.com/LerianStudio/lib-offline-license-go/signing"
	"github.com/LerianStudio/lib-offline-license-go/test/helper/testlogger"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const licensePath = "/etc/app/license.xml"

var clientExpiry = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	client     *Client
	fs         afero.Fs
	logger     *testlogger.TestLogger
	kp         *keys.KeyPair
	terminated []string
}

func newFixture(t *testing.T, lt model.LicenseType, features ...string) *fixture {
	t.Helper()

	kp, err := keys.Generate(keys.ECDSA, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kp.Close() })

	pub, err := kp.ToPublicKeyString()
	require.NoError(t, err)

	f := &fixture{fs: afero.NewMemMapFs(), logger: testlogger.New(), kp: kp}

	f.writeLicense(t, model.NewLicenseBuilder().
		WithUniqueIdentifier(uuid.MustParse("6f1c7a52-63a4-4d55-9a6b-0c2f4f36a0b1")).
		As(lt).
		ExpiresAt(clientExpiry).
		LicensedTo("Acme", "ops@acme.tld").
		WithProductFeatures(model.Attribute{Key: "Sales", Value: "yes"}))

	var logger log.Logger = f.logger

	client, err := New(model.Config{
		ApplicationName:  "plugin-fees",
		LicenseFile:      licensePath,
		PublicKey:        pub,
		RequiredFeatures: features,
	}, &logger)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	client.SetFilesystem(f.fs)
	client.SetClock(func() time.Time { return clientExpiry.AddDate(0, -6, 0) })
	client.SetTerminationHandler(func(reason string) { f.terminated = append(f.terminated, reason) })

	f.client = client

	return f
}

func (f *fixture) writeLicense(t *testing.T, b model.LicenseBuilder) {
	t.Helper()

	signed, err := signing.Sign(b.Build(), f.kp.Private)
	require.NoError(t, err)

	raw, err := document.Marshal(signed)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(f.fs, licensePath, raw, 0o644))
}

func TestClient_ValidLicense(t *testing.T) {
	f := newFixture(t, model.Standard, "Sales")

	_, ok := f.client.Current()
	assert.False(t, ok)

	verdict, err := f.client.Validate(context.Background())
	require.NoError(t, err)

	assert.True(t, verdict.Valid)
	assert.Equal(t, "6f1c7a52-63a4-4d55-9a6b-0c2f4f36a0b1", verdict.LicenseID)
	assert.Equal(t, model.Standard, verdict.Type)
	assert.False(t, verdict.IsTrial)
	assert.Greater(t, verdict.ExpiryDaysLeft, 180)
	assert.Empty(t, f.terminated)

	current, ok := f.client.Current()
	assert.True(t, ok)
	assert.Equal(t, verdict, current)

	l := f.client.License()
	require.NotNil(t, l)
	assert.Equal(t, "Acme", l.Customer.Name)

	_, err = f.client.Validate(context.Background())
	require.NoError(t, err)
	assert.True(t, f.logger.Contains("DEBUG", "Signature verdict cached"))
	assert.NoError(t, f.client.Revalidate(context.Background()))
}

func TestClient_ExpiredLicenseTerminates(t *testing.T) {
	f := newFixture(t, model.Standard)
	f.client.SetClock(func() time.Time { return clientExpiry.Add(time.Second) })

	verdict, err := f.client.Validate(context.Background())
	require.NoError(t, err)

	assert.False(t, verdict.Valid)
	assert.Equal(t, 0, verdict.ExpiryDaysLeft)
	require.Len(t, f.terminated, 1)
	assert.Contains(t, f.terminated[0], "expired")
	assert.True(t, f.logger.Contains("ERROR", "Invalid license"))

	err = f.client.Revalidate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestClient_MissingFeature(t *testing.T) {
	f := newFixture(t, model.Enterprise, "Sales", "Reports")

	verdict, err := f.client.Validate(context.Background())
	require.NoError(t, err)

	assert.False(t, verdict.Valid)
	require.Len(t, verdict.Errors, 1)
	assert.Equal(t, model.CustomAssertionFailed, verdict.Errors[0].Code)
	assert.Contains(t, verdict.Errors[0].Message, `"Reports"`)
	assert.Len(t, f.terminated, 1)
}

func TestClient_TamperedLicense(t *testing.T) {
	f := newFixture(t, model.Trial)

	raw, err := afero.ReadFile(f.fs, licensePath)
	require.NoError(t, err)

	tampered := strings.Replace(string(raw), "<Type>Trial</Type>", "<Type>Enterprise</Type>", 1)
	require.NotEqual(t, string(raw), tampered)
	require.NoError(t, afero.WriteFile(f.fs, licensePath, []byte(tampered), 0o644))

	verdict, err := f.client.Validate(context.Background())
	require.NoError(t, err)

	assert.False(t, verdict.Valid)
	assert.Equal(t, []model.ValidationFailure{verdict.Errors[0]}, verdict.Errors)
	assert.Equal(t, model.InvalidSignature, verdict.Errors[0].Code)
}

func TestClient_TrialLogsAndUrgentWarning(t *testing.T) {
	f := newFixture(t, model.Trial)
	f.client.SetClock(func() time.Time { return clientExpiry.AddDate(0, 0, -4) })

	verdict, err := f.client.Validate(context.Background())
	require.NoError(t, err)

	assert.True(t, verdict.Valid)
	assert.True(t, verdict.IsTrial)
	assert.Equal(t, 4, verdict.ExpiryDaysLeft)
	assert.True(t, f.logger.Contains("WARN", "WARNING: License expires in 4 days"))
	assert.True(t, f.logger.Contains("INFO", "trial license"))
}

func TestClient_MissingFile(t *testing.T) {
	f := newFixture(t, model.Standard)
	require.NoError(t, f.fs.Remove(licensePath))

	_, err := f.client.Validate(context.Background())
	require.Error(t, err)

	var notFound pkg.EntityNotFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.Len(t, f.terminated, 1)

	_, ok := f.client.Current()
	assert.True(t, ok)
	assert.Nil(t, f.client.License())
}

func TestClient_PublicKeyFile(t *testing.T) {
	f := newFixture(t, model.Standard)

	pub, err := f.kp.ToPublicKeyString()
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(f.fs, "/etc/app/license.pub", []byte(pub+"\n"), 0o644))

	f.client.config.PublicKey = ""
	f.client.config.PublicKeyFile = "/etc/app/license.pub"

	verdict, err := f.client.Validate(context.Background())
	require.NoError(t, err)
	assert.True(t, verdict.Valid)
}

func TestClient_CanceledContext(t *testing.T) {
	f := newFixture(t, model.Standard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.client.Validate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.terminated)
}

func TestNew_InvalidConfig(t *testing.T) {
	var logger log.Logger = testlogger.New()

	_, err := New(model.Config{LicenseFile: licensePath}, &logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AppName is required")
}
