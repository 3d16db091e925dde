// Package server exposes offline license verification over HTTP for services
// that cannot link the library directly.
package server

import (
	"crypto"
	"time"

	"github.com/LerianStudio/lib-commons/commons/log"
	cn "github.com/LerianStudio/lib-offline-license-go/constant"
	"github.com/LerianStudio/lib-offline-license-go/document"
	"github.com/LerianStudio/lib-offline-license-go/internal/cache"
	"github.com/LerianStudio/lib-offline-license-go/keys"
	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/pkg"
	pkgHTTP "github.com/LerianStudio/lib-offline-license-go/pkg/net/http"
	"github.com/LerianStudio/lib-offline-license-go/signing"
	"github.com/LerianStudio/lib-offline-license-go/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server verifies license documents posted to it against one pinned public key
type Server struct {
	app        *fiber.App
	encodedKey string
	publicKey  crypto.PublicKey
	cache      *cache.Manager
	logger     log.Logger
	now        func() time.Time

	verifications *prometheus.CounterVec
	cacheHits     prometheus.Counter
}

// New creates a verification server pinned to the base64 PKIX public key
func New(encodedKey string, logger log.Logger) (*Server, error) {
	pub, err := keys.FromPublicKeyString(encodedKey)
	if err != nil {
		return nil, err
	}

	cacheManager, err := cache.New(logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		encodedKey: encodedKey,
		publicKey:  pub,
		cache:      cacheManager,
		logger:     logger,
		now:        time.Now,
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "licensectl",
			Name:      "verifications_total",
			Help:      "License verifications by result.",
		}, []string{"result"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "licensectl",
			Name:      "signature_cache_hits_total",
			Help:      "Signature verdicts served from the cache.",
		}),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(s.verifications, s.cacheHits)

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             cn.DefaultServerBodyLimit,
	})
	s.app.Post(cn.VerifyRoute, s.verify)
	s.app.Get(cn.HealthRoute, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})
	s.app.Get(cn.MetricsRoute, adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return s, nil
}

// App returns the underlying fiber application
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called
func (s *Server) Listen(addr string) error {
	s.logger.Infof("License verification server listening on %s", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the server and releases the verdict cache
func (s *Server) Shutdown() error {
	defer s.cache.Close()
	return s.app.Shutdown()
}

// verify accepts an XML or JSON license document as the request body.
// Repeated "feature" query parameters name required product features.
func (s *Server) verify(c *fiber.Ctx) error {
	body := append([]byte(nil), c.Body()...)

	l, err := document.Parse(body)
	if err != nil {
		s.verifications.WithLabelValues("malformed").Inc()
		s.logger.Warnf("Rejected malformed license document [%s]: %v", pkg.CodeOf(err), err)

		return pkgHTTP.WithError(c, err)
	}

	var features []string
	for _, f := range c.Context().QueryArgs().PeekMulti("feature") {
		features = append(features, string(f))
	}

	verdict := validation.Assess(l, s.cachedVerify(body), s.now(), features...)

	result := "valid"
	if !verdict.Valid {
		result = "invalid"
	}

	s.verifications.WithLabelValues(result).Inc()
	s.logger.Debugf("Verified license %s [valid: %t]", verdict.LicenseID, verdict.Valid)

	return c.Status(fiber.StatusOK).JSON(verdict)
}

func (s *Server) cachedVerify(body []byte) validation.VerifyFunc {
	key := cache.Key(body, s.encodedKey)

	return func(l *model.License) (bool, error) {
		if valid, found := s.cache.Get(key); found {
			s.cacheHits.Inc()
			return valid, nil
		}

		ok, err := signing.Verify(l, s.publicKey)
		if err != nil {
			return false, err
		}

		s.cache.Store(key, ok)

		return ok, nil
	}
}
