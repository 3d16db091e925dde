package validation

import (
	"testing"
	"time"

	"github.com/LerianStudio/lib-offline-license-go/keys"
	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/signing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedLicense(t *testing.T, b model.LicenseBuilder) (*model.License, *keys.KeyPair) {
	t.Helper()

	kp, err := keys.Generate(keys.ECDSA, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kp.Close() })

	l, err := signing.Sign(b.Build(), kp.Private)
	require.NoError(t, err)

	return l, kp
}

func standardBuilder(exp time.Time) model.LicenseBuilder {
	return model.NewLicenseBuilder().
		WithUniqueIdentifier(uuid.New()).
		As(model.Standard).
		ExpiresAt(exp).
		LicensedTo("John Doe", "john@doe.tld").
		WithProductFeatures(model.Attribute{Key: "Sales", Value: "yes"})
}

func TestChain_ValidLicense(t *testing.T) {
	l, kp := signedLicense(t, standardBuilder(time.Now().Add(24*time.Hour)))

	var salesEnabled int

	result := For(l).
		Signature(kp.Public).
		Expiration().
		TypeIs(model.Standard).
		When(func(l *model.License) bool { return l.ProductFeatures.Contains("Sales") }, func(*model.License) { salesEnabled++ }).
		Evaluate()

	assert.False(t, result.HasErrors())
	assert.Equal(t, 1, salesEnabled)
	assert.Same(t, l, result.Subject)
}

func TestChain_CollectsEveryFailure(t *testing.T) {
	l, _ := signedLicense(t, standardBuilder(time.Now().Add(-time.Hour)))

	other, err := keys.Generate(keys.ECDSA, 0)
	require.NoError(t, err)
	defer other.Close()

	result := For(l).
		Signature(other.Public).
		Expiration().
		TypeIs(model.Enterprise).
		Evaluate()

	require.True(t, result.HasErrors())
	assert.Equal(t, []model.FailureCode{model.InvalidSignature, model.LicenseExpired, model.TypeMismatch}, result.Codes())
	assert.Equal(t, "license requires Enterprise, got Standard", result.Errors[2].Message)
	assert.NotNil(t, result.Subject)
}

func TestChain_UnrelatedKeyGivesOneFailure(t *testing.T) {
	l, _ := signedLicense(t, standardBuilder(time.Now().Add(time.Hour)))

	other, err := keys.Generate(keys.ECDSA, 0)
	require.NoError(t, err)
	defer other.Close()

	result := For(l).Signature(other.Public).Expiration().Evaluate()

	require.Len(t, result.Errors, 1)
	assert.Equal(t, model.InvalidSignature, result.Errors[0].Code)
	assert.NotEmpty(t, result.Errors[0].HowToResolve)
}

func TestChain_ExpirationBoundary(t *testing.T) {
	exp := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	l := standardBuilder(exp).Build()

	assert.False(t, For(l).ExpirationAt(exp).Evaluate().HasErrors(), "equal instant is still valid")
	assert.False(t, For(l).ExpirationAt(exp.Add(-time.Second)).Evaluate().HasErrors())
	assert.True(t, For(l).ExpirationAt(exp.Add(time.Second)).Evaluate().HasErrors())
}

func TestChain_SignatureString(t *testing.T) {
	l, kp := signedLicense(t, standardBuilder(time.Now().Add(time.Hour)))

	pub, err := kp.ToPublicKeyString()
	require.NoError(t, err)

	assert.False(t, For(l).SignatureString(pub).Evaluate().HasErrors())

	result := For(l).SignatureString("garbage").Evaluate()
	require.Len(t, result.Errors, 1)
	assert.Equal(t, model.InvalidSignature, result.Errors[0].Code)
}

func TestChain_TypeAndName(t *testing.T) {
	l := standardBuilder(time.Now().Add(time.Hour)).Build()

	result := For(l).
		TypeIs(model.Standard).
		TypeNot(model.Trial).
		TypeNot(model.Standard, "no standard licenses here").
		NameIs("John Doe").
		NameIs("Jane Roe").
		NameNot("John Doe").
		Evaluate()

	assert.Equal(t, []string{
		"no standard licenses here",
		`license name "John Doe" does not match Jane Roe`,
		`license name should not be "John Doe"`,
	}, result.Messages())
	assert.Equal(t, []model.FailureCode{model.TypeMismatch, model.NameMismatch, model.NameMismatch}, result.Codes())
}

func TestChain_AssertThat(t *testing.T) {
	l := standardBuilder(time.Now().Add(time.Hour)).WithMaximumUtilization(2).Build()

	want := model.ValidationFailure{Code: "SeatLimit", Message: "too few seats", HowToResolve: "buy more"}

	result := For(l).
		AssertThat(func(l *model.License) bool { return l.Quantity >= 5 }, want).
		AssertThat(func(l *model.License) bool { return false }, model.ValidationFailure{}).
		AssertThat(func(l *model.License) bool { return true }, want).
		Evaluate()

	require.Len(t, result.Errors, 2)
	assert.Equal(t, want, result.Errors[0])
	assert.Equal(t, model.ValidationFailure{}, result.Errors[1])

	custom := For(l).AssertThat(func(*model.License) bool { return false }, CustomFailure("needs 5 seats")).Evaluate()
	assert.Equal(t, []model.ValidationFailure{{Code: model.CustomAssertionFailed, Message: "needs 5 seats"}}, custom.Errors)
}

func TestChain_WhenRunsOnceAndIdempotentEvaluate(t *testing.T) {
	l := standardBuilder(time.Now().Add(-time.Hour)).Build()

	calls := 0
	chain := For(l).
		Expiration().
		When(func(*model.License) bool { return true }, func(*model.License) { calls++ }).
		When(func(*model.License) bool { return false }, func(*model.License) { calls += 100 })

	first := chain.Evaluate()
	second := chain.Evaluate()

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	first.Errors[0].Message = "mutated"
	assert.NotEqual(t, "mutated", chain.Evaluate().Errors[0].Message)
}

func TestChain_Branching(t *testing.T) {
	l := standardBuilder(time.Now().Add(time.Hour)).Build()

	base := For(l).TypeIs(model.Enterprise)
	a := base.NameIs("nobody")
	b := base.TypeNot(model.Standard)

	assert.Len(t, base.Evaluate().Errors, 1)
	assert.Equal(t, []model.FailureCode{model.TypeMismatch, model.NameMismatch}, a.Evaluate().Codes())
	assert.Equal(t, []model.FailureCode{model.TypeMismatch, model.TypeMismatch}, b.Evaluate().Codes())
}

func TestChain_NilLicense(t *testing.T) {
	kp, err := keys.Generate(keys.Ed25519, 0)
	require.NoError(t, err)
	defer kp.Close()

	result := For(nil).Signature(kp.Public).Expiration().TypeIs(model.Trial).Evaluate()

	assert.Equal(t, []model.FailureCode{model.InvalidSignature, model.LicenseExpired, model.TypeMismatch}, result.Codes())
	assert.Nil(t, result.Subject)
}
