package rotator

import (
	"fmt"
	"sync"
)

// Credential is one interchangeable API key. Token never changes after
// construction; the counters are owned by the Pool and must only be
// touched through its methods.
type Credential struct {
	Name  string
	Token string

	used      int
	max       int
	exhausted bool
}

// Stats is a read-only snapshot of one credential, shaped for /api/stats.
type Stats struct {
	Name      string `json:"name"`
	Used      int    `json:"used"`
	Max       int    `json:"max"`
	Remaining int    `json:"remaining"`
	Exhausted bool   `json:"exhausted"`
}

// Pool rotates over a fixed set of credentials. All mutation goes through
// one mutex so concurrent requests cannot skew the usage counters.
type Pool struct {
	mu     sync.Mutex
	creds  []*Credential
	cursor int
}

// NewPool builds a pool from the configured tokens. Empty tokens are
// skipped; maxPerPeriod applies to every key.
func NewPool(tokens []string, maxPerPeriod int) *Pool {
	p := &Pool{}
	for i, token := range tokens {
		if token == "" {
			continue
		}
		p.creds = append(p.creds, &Credential{
			Name:  fmt.Sprintf("key_%d", i+1),
			Token: token,
			max:   maxPerPeriod,
		})
	}
	return p
}

// Next returns the first eligible credential at or after the cursor and
// advances the cursor past it. Returns nil when every key is exhausted
// or over quota, which is the caller's signal to fall back.
func (p *Pool) Next() *Credential {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := 0; i < len(p.creds); i++ {
		idx := (p.cursor + i) % len(p.creds)
		c := p.creds[idx]
		if !c.exhausted && c.used < c.max {
			p.cursor = (idx + 1) % len(p.creds)
			return c
		}
	}
	return nil
}

// MarkUsed records one successful upstream call on c and returns the
// remaining quota. One call is one unit regardless of items returned.
func (p *Pool) MarkUsed(c *Credential) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	c.used++
	return c.max - c.used
}

// MarkExhausted flags c after a rate-limit response. Sticky for the
// process lifetime; counters only reset on restart.
func (p *Pool) MarkExhausted(c *Credential) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c.exhausted = true
}

func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.creds)
}

func (p *Pool) Snapshot() []Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Stats, 0, len(p.creds))
	for _, c := range p.creds {
		out = append(out, Stats{
			Name:      c.Name,
			Used:      c.used,
			Max:       c.max,
			Remaining: c.max - c.used,
			Exhausted: c.exhausted,
		})
	}
	return out
}
