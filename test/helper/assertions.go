// Package helper provides license fixtures and assertions shared by package tests
package helper

import (
	"testing"

	"github.com/LerianStudio/lib-offline-license-go/document"
	"github.com/LerianStudio/lib-offline-license-go/keys"
	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/signing"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertVerdict checks validity and, for an invalid verdict, the failure codes in order
func AssertVerdict(t *testing.T, v model.Verdict, expectedValid bool, expectedCodes ...model.FailureCode) {
	t.Helper()
	assert.Equal(t, expectedValid, v.Valid, "verdict validity mismatch")

	codes := make([]model.FailureCode, 0, len(v.Errors))
	for _, e := range v.Errors {
		codes = append(codes, e.Code)
	}

	if expectedValid {
		assert.Empty(t, codes, "valid verdict carries failures")
		return
	}

	assert.Equal(t, expectedCodes, codes, "failure codes mismatch")
}

// SignedDocument signs the license built by b with a fresh Ed25519 key and
// returns its canonical XML and the base64 public key.
func SignedDocument(t *testing.T, b model.LicenseBuilder) ([]byte, string) {
	t.Helper()

	kp, err := keys.Generate(keys.Ed25519, 0)
	require.NoError(t, err)

	defer kp.Close()

	l, err := signing.Sign(b.Build(), kp.Private)
	require.NoError(t, err)

	raw, err := document.Marshal(l)
	require.NoError(t, err)

	pub, err := kp.ToPublicKeyString()
	require.NoError(t, err)

	return raw, pub
}

// WriteSignedLicense writes a signed license to path on fs and returns the public key.
func WriteSignedLicense(t *testing.T, fs afero.Fs, path string, b model.LicenseBuilder) string {
	t.Helper()

	raw, pub := SignedDocument(t, b)
	require.NoError(t, afero.WriteFile(fs, path, raw, 0o644))

	return pub
}
