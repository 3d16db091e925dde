package cache

import (
	"github.com/LerianStudio/lib-commons/commons"
	"github.com/LerianStudio/lib-commons/commons/log"
	"github.com/LerianStudio/lib-offline-license-go/constant"
	"github.com/dgraph-io/ristretto/v2"
)

// Manager caches signature verdicts keyed by a digest of the document and the public key
type Manager struct {
	cache  *ristretto.Cache[string, bool]
	logger log.Logger
}

// New creates a new cache manager
func New(logger log.Logger) (*Manager, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, bool]{
		NumCounters: constant.CacheNumCounters,
		MaxCost:     constant.CacheMaxCost,
		BufferItems: constant.CacheBufferItems,
	})
	if err != nil {
		return nil, err
	}

	return &Manager{
		cache:  cache,
		logger: logger,
	}, nil
}

// Key derives the cache key of a document verified against a public key.
func Key(document []byte, publicKey string) string {
	return commons.HashSHA256(string(document) + ":" + publicKey)
}

// Get retrieves a cached signature verdict
func (m *Manager) Get(key string) (bool, bool) {
	valid, found := m.cache.Get(key)
	if found {
		m.logger.Debugf("Signature verdict cached for %s [valid: %t]", short(key), valid)
	}

	return valid, found
}

// Store caches a signature verdict with a fixed TTL
func (m *Manager) Store(key string, valid bool) {
	m.cache.SetWithTTL(key, valid, 1, constant.CacheTTL)
	m.cache.Wait()

	m.logger.Debugf("Stored signature verdict for %s", short(key))
}

// Close releases the cache goroutines.
func (m *Manager) Close() {
	m.cache.Close()
}

func short(key string) string {
	if len(key) > 12 {
		return key[:12]
	}

	return key
}
