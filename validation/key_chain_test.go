package validation

import (
	"testing"
	"time"

	"github.com/LerianStudio/lib-offline-license-go/keys"
	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seatKey struct {
	Seats int `json:"seats"`
}

var (
	activation = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	expiration = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
)

func testKey() *model.LicenseKey[seatKey] {
	return token.NewFactory(seatKey{Seats: 3}).
		WithActivationDate(activation).
		WithExpirationDate(expiration).
		WithType(model.Standard).
		WithName("acme").
		CreateLicense()
}

func TestKeyChain_ActivationBoundaries(t *testing.T) {
	k := testKey()

	assert.False(t, ForKey(k).ActivatesBefore(activation).Evaluate().HasErrors())
	assert.False(t, ForKey(k).ActivatesAfter(activation).Evaluate().HasErrors())
	assert.True(t, ForKey(k).ActivatesBefore(activation.Add(-time.Second)).Evaluate().HasErrors())
	assert.True(t, ForKey(k).ActivatesAfter(activation.Add(time.Second)).Evaluate().HasErrors())

	result := ForKey(k).ActivatesBefore(activation.Add(-time.Hour)).Evaluate()
	assert.Equal(t, model.LicenseNotActive, result.Errors[0].Code)
}

func TestKeyChain_ExpirationBoundaries(t *testing.T) {
	k := testKey()

	assert.False(t, ForKey(k).ExpiresBefore(expiration).Evaluate().HasErrors())
	assert.False(t, ForKey(k).ExpiresAfter(expiration).Evaluate().HasErrors())
	assert.False(t, ForKey(k).ExpirationAt(expiration).Evaluate().HasErrors())

	result := ForKey(k).
		ExpiresBefore(expiration.Add(-time.Hour)).
		ExpiresAfter(expiration.Add(time.Hour)).
		ExpirationAt(expiration.Add(time.Nanosecond)).
		Evaluate()

	assert.Equal(t, []model.FailureCode{model.ExpirationOutOfRange, model.LicenseExpired, model.LicenseExpired}, result.Codes())
	assert.Equal(t, "Licensing for this product has expired!", result.Errors[2].Message)
}

func TestKeyChain_AccumulatesInOrder(t *testing.T) {
	result := ForKey(testKey()).
		TypeIs(model.Enterprise).
		NameIs("other").
		MeetsCondition(func(k *model.LicenseKey[seatKey]) bool { return k.KeyData.Seats > 10 }).
		NameNot("acme", "custom message").
		TypeNot(model.Standard).
		Evaluate()

	assert.Equal(t, []string{
		"license requires Enterprise, got Standard",
		`license name "acme" does not match other`,
		"check failed custom condition",
		"custom message",
		"license cannot be Standard",
	}, result.Messages())
	assert.Equal(t, "acme", result.Subject.LicenseName)
}

func TestKeyChain_ConditionalActions(t *testing.T) {
	k := testKey()

	var (
		gotActivation time.Time
		gotExpiration time.Time
		gotTypes      []model.LicenseType
		gotNames      []string
		conditionMet  int
	)

	result := ForKey(k).
		IfActivatesBefore(activation, func(d time.Time) { gotActivation = d }).
		IfActivatesAfter(activation.Add(time.Hour), func(time.Time) { t.Fatal("activation is before the bound") }).
		IfExpiresBefore(expiration, func(d time.Time) { gotExpiration = d }).
		IfExpiresAfter(expiration.Add(time.Hour), func(time.Time) { t.Fatal("expiration is before the bound") }).
		IfTypeIs(model.Standard, func(lt model.LicenseType) { gotTypes = append(gotTypes, lt) }).
		IfTypeNot(model.Trial, func(lt model.LicenseType) { gotTypes = append(gotTypes, lt) }).
		IfNameIs("acme", func(n string) { gotNames = append(gotNames, n) }).
		IfNameNot("acme", func(string) { t.Fatal("name is acme") }).
		IfConditionMet(func(k *model.LicenseKey[seatKey]) bool { return k.KeyData.Seats == 3 }, func(*model.LicenseKey[seatKey]) { conditionMet++ }).
		Evaluate()

	assert.False(t, result.HasErrors())
	assert.Equal(t, activation, gotActivation)
	assert.Equal(t, expiration, gotExpiration)
	assert.Equal(t, []model.LicenseType{model.Standard, model.Standard}, gotTypes)
	assert.Equal(t, []string{"acme"}, gotNames)
	assert.Equal(t, 1, conditionMet)
}

func TestKeyChain_IfActivatesAfterUsesActivationDate(t *testing.T) {
	k := testKey()

	// expiration is after the bound but activation is not; the action must not run
	ForKey(k).IfActivatesAfter(activation.Add(24*time.Hour), func(time.Time) { t.Fatal("unexpected call") })

	called := false
	ForKey(k).IfExpiresAfter(activation, func(d time.Time) {
		called = true
		assert.Equal(t, expiration, d)
	})
	assert.True(t, called)
}

func TestForToken(t *testing.T) {
	params, err := keys.NewSigningParameters(2048)
	require.NoError(t, err)
	defer params.Close()

	sl, err := token.NewFactory(seatKey{Seats: 9}).
		WithActivationDate(activation).
		WithType(model.Trial).
		CreateAndSign(params)
	require.NoError(t, err)

	chain, err := ForSignedLicense[seatKey](sl, params.RSAPublicKey())
	require.NoError(t, err)

	result := chain.
		Activation().
		Expiration().
		TypeIs(model.Standard).
		Evaluate()

	assert.Equal(t, []model.FailureCode{model.TypeMismatch}, result.Codes())
	assert.Equal(t, 9, result.Subject.KeyData.Seats)

	other, err := keys.NewSigningParameters(2048)
	require.NoError(t, err)
	defer other.Close()

	_, err = ForToken[seatKey](sl.LicenseData, other.RSAPublicKey())
	assert.Error(t, err)
}

func TestKeyChain_NilKey(t *testing.T) {
	result := ForKey[seatKey](nil).
		Activation().
		Expiration().
		ExpiresBefore(expiration).
		TypeIs(model.Standard).
		TypeNot(model.Trial).
		NameIs("acme").
		NameNot("other", "name check needs a key").
		MeetsCondition(func(*model.LicenseKey[seatKey]) bool { t.Fatal("unexpected call"); return true }).
		IfActivatesBefore(activation, func(time.Time) { t.Fatal("unexpected call") }).
		IfExpiresAfter(activation, func(time.Time) { t.Fatal("unexpected call") }).
		IfTypeNot(model.Trial, func(model.LicenseType) { t.Fatal("unexpected call") }).
		IfNameNot("x", func(string) { t.Fatal("unexpected call") }).
		IfConditionMet(func(*model.LicenseKey[seatKey]) bool { return true }, func(*model.LicenseKey[seatKey]) { t.Fatal("unexpected call") }).
		Evaluate()

	assert.Equal(t, []model.FailureCode{
		model.LicenseNotActive,
		model.LicenseExpired,
		model.ExpirationOutOfRange,
		model.TypeMismatch,
		model.TypeMismatch,
		model.NameMismatch,
		model.NameMismatch,
		model.CustomAssertionFailed,
	}, result.Codes())
	assert.Equal(t, "no license key to validate", result.Errors[0].Message)
	assert.Equal(t, "name check needs a key", result.Errors[6].Message)
	assert.Nil(t, result.Subject)

	var zero KeyChain[seatKey]
	assert.True(t, zero.Expiration().Evaluate().HasErrors())
}
