package validation

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/LerianStudio/lib-commons/commons/log"
	"github.com/LerianStudio/lib-commons/commons/zap"
	cn "github.com/LerianStudio/lib-offline-license-go/constant"
	"github.com/LerianStudio/lib-offline-license-go/document"
	"github.com/LerianStudio/lib-offline-license-go/internal/cache"
	"github.com/LerianStudio/lib-offline-license-go/internal/config"
	"github.com/LerianStudio/lib-offline-license-go/internal/refresh"
	"github.com/LerianStudio/lib-offline-license-go/internal/shutdown"
	"github.com/LerianStudio/lib-offline-license-go/keys"
	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/signing"
	"github.com/spf13/afero"
)

// Client validates a license file on disk with a signature verdict cache and
// background revalidation
type Client struct {
	config          *config.ClientConfig
	fs              afero.Fs
	cacheManager    *cache.Manager
	refreshManager  *refresh.Manager
	shutdownManager *shutdown.Manager
	logger          log.Logger
	now             func() time.Time

	mu        sync.RWMutex
	verdict   model.Verdict
	license   *model.License
	validated bool
}

// New creates a new license validation client
func New(cfg model.Config, logger *log.Logger) (*Client, error) {
	var l log.Logger
	if logger != nil {
		l = *logger
	} else {
		l = zap.InitializeLogger()
	}

	clientCfg, err := config.FromModel(cfg, l)
	if err != nil {
		l.Errorf("Invalid configuration: %s", err.Error())
		return nil, err
	}

	cacheManager, err := cache.New(l)
	if err != nil {
		l.Errorf("Failed to initialize cache: %s", err.Error())
		return nil, err
	}

	client := &Client{
		config:          clientCfg,
		fs:              afero.NewOsFs(),
		cacheManager:    cacheManager,
		shutdownManager: shutdown.New(),
		logger:          l,
		now:             time.Now,
	}

	client.refreshManager = refresh.New(client, clientCfg.RefreshInterval, l)
	if clientCfg.WatchFile {
		client.refreshManager.Watch(clientCfg.LicenseFile)
	}

	return client, nil
}

// SetFilesystem replaces the filesystem the license and key files are read from.
// File watching only sees the OS filesystem.
func (c *Client) SetFilesystem(fs afero.Fs) {
	c.fs = fs
}

// SetClock replaces the time source used for expiration checks.
func (c *Client) SetClock(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

// SetTerminationHandler allows customizing how the application terminates when license validation fails
func (c *Client) SetTerminationHandler(handler shutdown.Handler) {
	c.shutdownManager.SetHandler(handler)
}

// Validate loads the license file and checks its signature, expiration and
// required features. A license that fails any check terminates the
// application through the termination handler. A license that cannot be read
// or parsed is reported as an error and terminates as well.
func (c *Client) Validate(ctx context.Context) (model.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return model.Verdict{}, err
	}

	encodedKey, pub, err := c.publicKey()
	if err != nil {
		c.logger.Errorf("Failed to load license public key: %v", err)
		return model.Verdict{}, err
	}

	raw, err := document.ReadFile(c.fs, c.config.LicenseFile)
	if err != nil {
		return c.handleLoadError(err)
	}

	l, err := document.Parse(raw)
	if err != nil {
		return c.handleLoadError(err)
	}

	return c.validateAndHandle(l, raw, encodedKey, pub), nil
}

func (c *Client) validateAndHandle(l *model.License, raw []byte, encodedKey string, pub crypto.PublicKey) model.Verdict {
	verdict := Assess(l, c.cachedVerify(raw, encodedKey, pub), c.now(), c.config.RequiredFeatures...)

	c.mu.Lock()
	c.verdict = verdict
	c.license = l
	c.validated = true
	c.mu.Unlock()

	if !verdict.Valid {
		msgs := failureMessages(verdict.Errors)

		c.logger.Errorf("Invalid license %s: %s", verdict.LicenseID, strings.Join(msgs, "; "))
		c.refreshManager.Stop()
		c.shutdownManager.Terminate(msgs...)

		return verdict
	}

	c.processValidResult(verdict)

	return verdict
}

// Assess runs the signature, expiration and required feature checks over l
// and summarizes them as a Verdict.
func Assess(l *model.License, verify VerifyFunc, now time.Time, requiredFeatures ...string) model.Verdict {
	chain := For(l).
		SignatureWith(verify).
		ExpirationAt(now)

	for _, feature := range requiredFeatures {
		chain = chain.AssertThat(func(l *model.License) bool {
			return l != nil && l.ProductFeatures.Contains(feature)
		}, FeatureNotLicensed(feature))
	}

	result := chain.Evaluate()

	verdict := model.Verdict{
		Valid:  !result.HasErrors(),
		Errors: result.Errors,
	}

	if l != nil {
		verdict.LicenseID = l.ID.String()
		verdict.Type = l.Type
		verdict.ExpiryDaysLeft = daysLeft(l.Expiration, now)
		verdict.IsTrial = l.Type == model.Trial
	}

	return verdict
}

func failureMessages(failures []model.ValidationFailure) []string {
	msgs := make([]string, 0, len(failures))
	for _, f := range failures {
		msgs = append(msgs, f.Message)
	}

	return msgs
}

// cachedVerify consults the verdict cache before verifying the signature.
// Only successful verifications are cached.
func (c *Client) cachedVerify(raw []byte, encodedKey string, pub crypto.PublicKey) VerifyFunc {
	key := cache.Key(raw, encodedKey)

	return func(l *model.License) (bool, error) {
		if valid, found := c.cacheManager.Get(key); found {
			return valid, nil
		}

		ok, err := signing.Verify(l, pub)
		if err != nil {
			return false, err
		}

		if ok {
			c.cacheManager.Store(key, true)
		}

		return ok, nil
	}
}

func (c *Client) handleLoadError(err error) (model.Verdict, error) {
	c.logger.Errorf("Exiting: license file could not be loaded: %v", err)

	c.mu.Lock()
	c.verdict = model.Verdict{}
	c.license = nil
	c.validated = true
	c.mu.Unlock()

	c.refreshManager.Stop()
	c.shutdownManager.Terminate("License file could not be loaded: " + err.Error())

	return model.Verdict{}, fmt.Errorf("failed to load license: %w", err)
}

func (c *Client) publicKey() (string, crypto.PublicKey, error) {
	encoded := c.config.PublicKey
	if encoded == "" {
		b, err := afero.ReadFile(c.fs, c.config.PublicKeyFile)
		if err != nil {
			return "", nil, err
		}

		encoded = strings.TrimSpace(string(b))
	}

	pub, err := keys.FromPublicKeyString(encoded)
	if err != nil {
		return "", nil, err
	}

	return encoded, pub, nil
}

// processValidResult logs how close a valid license is to expiring
func (c *Client) processValidResult(v model.Verdict) {
	switch {
	case v.ExpiryDaysLeft <= cn.DefaultExpiryDaysToUrgentWarn:
		c.logger.Warnf("WARNING: License expires in %d days. Contact your account manager to renew", v.ExpiryDaysLeft)
	case v.ExpiryDaysLeft <= cn.DefaultExpiryDaysToNormalWarn:
		c.logger.Warnf("License expires in %d days", v.ExpiryDaysLeft)
	default:
		c.logger.Debugf("License %s valid [type: %s | expires in %d days]", v.LicenseID, v.Type, v.ExpiryDaysLeft)
	}

	if v.IsTrial {
		c.logger.Infof("Running with a trial license (%d days left)", v.ExpiryDaysLeft)
	}
}

func daysLeft(expiration, now time.Time) int {
	if !expiration.After(now) {
		return 0
	}

	return int(expiration.Sub(now).Hours() / 24)
}

// Current returns the verdict of the last validation and whether one has run.
func (c *Client) Current() (model.Verdict, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.verdict, c.validated
}

// License returns a copy of the last loaded license, or nil.
func (c *Client) License() *model.License {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.license == nil {
		return nil
	}

	return c.license.Clone()
}

// StartBackgroundRefresh revalidates periodically and when the license file changes
func (c *Client) StartBackgroundRefresh(ctx context.Context) {
	c.refreshManager.Start(ctx)
}

// ShutdownBackgroundRefresh stops the background refresh process
func (c *Client) ShutdownBackgroundRefresh() {
	c.refreshManager.Shutdown()
}

// Close stops background refresh and releases the verdict cache.
func (c *Client) Close() {
	c.refreshManager.Shutdown()
	c.cacheManager.Close()
}

// GetLogger returns the logger used by the client
func (c *Client) GetLogger() log.Logger {
	return c.logger
}

// Revalidate implements the refresh.Validator interface
func (c *Client) Revalidate(ctx context.Context) error {
	v, err := c.Validate(ctx)
	if err != nil {
		return err
	}

	if !v.Valid {
		return errors.New(strings.Join(failureMessages(v.Errors), "; "))
	}

	return nil
}
