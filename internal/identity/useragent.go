package identity

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// defaultUserAgents is used when no pool is configured. Plain desktop
// browser strings; marketplaces serve different markup to obvious bots.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36 Edg/91.0.864.59",
}

// UserAgentPool owns the current User-Agent string. It rotates on the same
// interval rules as the proxy Pool but entirely independently: the two
// pools may rotate at different moments.
type UserAgentPool struct {
	mu           sync.Mutex
	agents       []string
	current      string
	lastRotation time.Time
	interval     time.Duration
}

// NewUserAgentPool builds a pool from the configured strings, falling back
// to the built-in browser set when the list is empty.
func NewUserAgentPool(agents []string, interval time.Duration) *UserAgentPool {
	if interval <= 0 {
		interval = DefaultRotationInterval
	}
	if len(agents) == 0 {
		agents = defaultUserAgents
		log.Debug().Int("count", len(agents)).Msg("No user agents configured, using defaults")
	}
	return &UserAgentPool{agents: agents, interval: interval}
}

// Current returns the active user agent, rotating first if the rotation
// interval has elapsed.
func (p *UserAgentPool) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lastRotation.IsZero() || time.Since(p.lastRotation) > p.interval {
		p.rotateLocked()
	}
	return p.current
}

// Rotate forces replacement with a random pick, different from the
// current one when the pool holds more than one string.
func (p *UserAgentPool) Rotate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rotateLocked()
}

func (p *UserAgentPool) rotateLocked() {
	next := p.agents[rand.Intn(len(p.agents))]
	if len(p.agents) > 1 && next == p.current {
		others := make([]string, 0, len(p.agents)-1)
		for _, a := range p.agents {
			if a != p.current {
				others = append(others, a)
			}
		}
		next = others[rand.Intn(len(others))]
	}
	p.current = next
	p.lastRotation = time.Now()
	log.Debug().Msg("Rotated user agent")
}

// Count returns the pool size.
func (p *UserAgentPool) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.agents)
}
