package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/secmon-lab/themis/pkg/domain/model/auth"
)

const (
	authCacheTTL = 5 * time.Minute
)

type cachedPrincipal struct {
	principal *auth.Principal
	expiresAt time.Time
}

// authCache keeps verified principals keyed by a digest of the raw token
type authCache struct {
	cache sync.Map
}

func newAuthCache() *authCache {
	return &authCache{}
}

func tokenKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (c *authCache) get(raw string) (*auth.Principal, bool) {
	key := tokenKey(raw)
	val, ok := c.cache.Load(key)
	if !ok {
		return nil, false
	}

	cached := val.(*cachedPrincipal)
	if time.Now().After(cached.expiresAt) {
		c.cache.Delete(key)
		return nil, false
	}

	return cached.principal, true
}

func (c *authCache) set(raw string, p *auth.Principal, expiresAt time.Time) {
	c.cache.Store(tokenKey(raw), &cachedPrincipal{
		principal: p,
		expiresAt: expiresAt,
	})
}
