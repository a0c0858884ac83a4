package persona

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache memoizes a Provider for a fixed TTL. Bundle files do not change
// while a server is running, so a long-lived MCP session loads each agent
// once per TTL.
type Cache struct {
	next  Provider
	store *gocache.Cache
}

// NewCache wraps next. A non-positive ttl disables caching.
func NewCache(next Provider, ttl time.Duration) *Cache {
	c := &Cache{next: next}
	if ttl > 0 {
		c.store = gocache.New(ttl, 2*ttl)
	}
	return c
}

// Persona returns a cached persona or loads it from the wrapped provider.
// Failures are not cached.
func (c *Cache) Persona(agentID string) (*Persona, error) {
	if c.store == nil {
		return c.next.Persona(agentID)
	}
	if v, ok := c.store.Get(agentID); ok {
		p := *v.(*Persona)
		return &p, nil
	}

	p, err := c.next.Persona(agentID)
	if err != nil {
		return nil, err
	}
	c.store.SetDefault(agentID, p)
	cp := *p
	return &cp, nil
}

// Flush drops every cached persona.
func (c *Cache) Flush() {
	if c.store != nil {
		c.store.Flush()
	}
}
