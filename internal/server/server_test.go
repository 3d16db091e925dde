package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	cn "github.com/LerianStudio/lib-offline-license-go/constant"
	"github.com/LerianStudio/lib-offline-license-go/document"
	"github.com/LerianStudio/lib-offline-license-go/keys"
	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/signing"
	"github.com/LerianStudio/lib-offline-license-go/test/helper"
	"github.com/LerianStudio/lib-offline-license-go/test/helper/testlogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*Server, *keys.KeyPair) {
	t.Helper()

	kp, err := keys.Generate(keys.ECDSA, 384)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kp.Close() })

	pub, err := kp.ToPublicKeyString()
	require.NoError(t, err)

	s, err := New(pub, testlogger.New())
	require.NoError(t, err)
	t.Cleanup(func() { s.cache.Close() })

	return s, kp
}

func signedDocument(t *testing.T, kp *keys.KeyPair, exp time.Time) []byte {
	t.Helper()

	l, err := signing.Sign(model.NewLicenseBuilder().
		As(model.Standard).
		ExpiresAt(exp).
		LicensedTo("Acme", "").
		WithProductFeatures(model.Attribute{Key: "Sales", Value: "yes"}).
		Build(), kp.Private)
	require.NoError(t, err)

	raw, err := document.Marshal(l)
	require.NoError(t, err)

	return raw
}

func post(t *testing.T, s *Server, target string, body []byte) (int, model.Verdict) {
	t.Helper()

	resp, err := s.App().Test(httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body)))
	require.NoError(t, err)

	var v model.Verdict
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	}

	return resp.StatusCode, v
}

func TestVerify_Valid(t *testing.T) {
	s, kp := newServer(t)
	raw := signedDocument(t, kp, time.Now().AddDate(1, 0, 0))

	code, v := post(t, s, cn.VerifyRoute+"?feature=Sales", raw)
	assert.Equal(t, http.StatusOK, code)
	helper.AssertVerdict(t, v, true)
	assert.Equal(t, model.Standard, v.Type)

	code, v = post(t, s, cn.VerifyRoute, raw)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, v.Valid)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, cn.MetricsRoute, nil))
	require.NoError(t, err)

	metrics, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `licensectl_verifications_total{result="valid"} 2`)
	assert.Contains(t, string(metrics), "licensectl_signature_cache_hits_total 1")
}

func TestVerify_Failures(t *testing.T) {
	s, kp := newServer(t)
	raw := signedDocument(t, kp, time.Now().AddDate(0, 0, -1))

	code, v := post(t, s, cn.VerifyRoute+"?feature=Sales&feature=Reports", raw)
	assert.Equal(t, http.StatusOK, code)
	helper.AssertVerdict(t, v, false, model.LicenseExpired, model.CustomAssertionFailed)
}

func TestVerify_ForeignKey(t *testing.T) {
	s, _ := newServer(t)

	other, err := keys.Generate(keys.ECDSA, 384)
	require.NoError(t, err)
	defer other.Close()

	code, v := post(t, s, cn.VerifyRoute, signedDocument(t, other, time.Now().AddDate(1, 0, 0)))
	assert.Equal(t, http.StatusOK, code)
	helper.AssertVerdict(t, v, false, model.InvalidSignature)
}

func TestVerify_Malformed(t *testing.T) {
	s, _ := newServer(t)

	code, _ := post(t, s, cn.VerifyRoute, []byte("<License><Quantity>-1</Quantity></License>"))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestHealth(t *testing.T) {
	s, _ := newServer(t)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, cn.HealthRoute, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNew_InvalidKey(t *testing.T) {
	_, err := New("not a key", testlogger.New())
	assert.Error(t, err)
}
