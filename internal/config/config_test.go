package config

import (
	"strings"
	"testing"
	"time"

	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/test/helper/testlogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromModel(t *testing.T) {
	cfg, err := FromModel(model.Config{
		ApplicationName:  "plugin-fees",
		LicenseFile:      "/etc/license.xml",
		PublicKey:        "  MFkw  ",
		RequiredFeatures: []string{"Sales"},
	}, testlogger.New())
	require.NoError(t, err)

	assert.Equal(t, "MFkw", cfg.PublicKey)
	assert.Equal(t, 2*time.Hour, cfg.RefreshInterval)
	assert.True(t, cfg.WatchFile)
	assert.True(t, strings.HasPrefix(cfg.Fingerprint, "plugin-fees:"))
}

func TestFromModel_KeepsRefreshInterval(t *testing.T) {
	cfg, err := FromModel(model.Config{
		ApplicationName: "app",
		LicenseFile:     "license.xml",
		PublicKeyFile:   "pub.key",
		RefreshInterval: time.Minute,
	}, testlogger.New())
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.RefreshInterval)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ClientConfig
		wantErr string
	}{
		{
			name:    "missing application",
			cfg:     ClientConfig{LicenseFile: "l.xml", PublicKey: "k"},
			wantErr: "AppName is required",
		},
		{
			name:    "missing license file",
			cfg:     ClientConfig{AppName: "a", PublicKey: "k"},
			wantErr: "LicenseFile is required",
		},
		{
			name:    "missing both keys",
			cfg:     ClientConfig{AppName: "a", LicenseFile: "l.xml"},
			wantErr: "PublicKey is required when PublicKeyFile is empty",
		},
		{
			name:    "empty feature",
			cfg:     ClientConfig{AppName: "a", LicenseFile: "l.xml", PublicKey: "k", RequiredFeatures: []string{""}},
			wantErr: "RequiredFeatures[0] is required",
		},
		{
			name: "valid with key file",
			cfg:  ClientConfig{AppName: "a", LicenseFile: "l.xml", PublicKeyFile: "k.pem"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGenerateFingerprint(t *testing.T) {
	a := ClientConfig{AppName: "app", LicenseFile: "a.xml", PublicKey: "k"}
	b := a
	b.LicenseFile = "b.xml"

	a.GenerateFingerprint()
	b.GenerateFingerprint()

	assert.NotEqual(t, a.Fingerprint, b.Fingerprint)
}
