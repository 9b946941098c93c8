// Package identity manages the rotating egress identities (proxies and
// user agents) shared by all source adapters.
package identity

import (
	"fmt"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Kind classifies where an identity's proxy comes from.
type Kind string

const (
	KindStatic Kind = "static"
	KindTor    Kind = "tor"
	KindNone   Kind = "none"
)

// Identity is the proxy half of an egress identity. The zero value is the
// "no identity" sentinel: requests go out unproxied.
type Identity struct {
	Proxy *url.URL
	Kind  Kind
}

// None is the sentinel returned when no proxies are configured at all.
var None = Identity{Kind: KindNone}

// HasProxy reports whether requests should be routed through a proxy.
func (id Identity) HasProxy() bool {
	return id.Proxy != nil
}

func (id Identity) String() string {
	if id.Proxy == nil {
		return string(KindNone)
	}
	return fmt.Sprintf("%s(%s)", id.Kind, id.Proxy.Host)
}

// torFallbackProxy is the well-known local Tor SOCKS endpoint used when no
// static proxies are configured.
const torFallbackProxy = "socks5://127.0.0.1:9050"

// DefaultRotationInterval is how long an identity stays current before
// Current() rotates it on the next read.
const DefaultRotationInterval = 5 * time.Minute

// Health reports pool sizes by kind for the operational snapshot.
type Health struct {
	Static      int
	TorFallback int
}

// Pool owns the current proxy identity. Rotation happens implicitly when
// the rotation interval elapses between reads, or explicitly via Rotate
// after a failed attempt. Current and Rotate are atomic with respect to
// each other; callers never see a torn rotation.
type Pool struct {
	mu           sync.Mutex
	static       []Identity
	tor          []Identity
	current      Identity
	lastRotation time.Time
	interval     time.Duration
}

// Options tunes pool construction.
type Options struct {
	// RotationInterval overrides DefaultRotationInterval when positive.
	RotationInterval time.Duration
	// DisableTor skips the Tor fallback, so an empty static pool yields
	// the "no identity" sentinel and requests go out unproxied.
	DisableTor bool
}

// NewPool parses the configured proxy URIs and builds a pool. An empty
// list is valid: the pool falls back to the local Tor proxy, and if that
// is disabled too, Current returns the sentinel.
func NewPool(proxies []string, opts Options) (*Pool, error) {
	interval := opts.RotationInterval
	if interval <= 0 {
		interval = DefaultRotationInterval
	}

	p := &Pool{interval: interval}
	for _, raw := range proxies {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URI %q: %w", raw, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy URI %q: scheme and host required", raw)
		}
		p.static = append(p.static, Identity{Proxy: u, Kind: KindStatic})
	}

	if len(p.static) == 0 && !opts.DisableTor {
		u, err := url.Parse(torFallbackProxy)
		if err != nil {
			return nil, fmt.Errorf("parse tor fallback: %w", err)
		}
		p.tor = []Identity{{Proxy: u, Kind: KindTor}}
		log.Debug().Msg("No static proxies configured, using Tor fallback")
	}

	return p, nil
}

// Current returns the active identity, rotating first if the rotation
// interval has elapsed since the last rotation.
func (p *Pool) Current() Identity {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lastRotation.IsZero() || time.Since(p.lastRotation) > p.interval {
		p.rotateLocked()
	}
	return p.current
}

// Rotate forces replacement of the current identity with a random pick
// from the configured pool. With more than one candidate the replacement
// always differs from the current identity.
func (p *Pool) Rotate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rotateLocked()
}

func (p *Pool) rotateLocked() {
	candidates := p.static
	kind := KindStatic
	if len(candidates) == 0 {
		candidates = p.tor
		kind = KindTor
	}

	if len(candidates) == 0 {
		p.current = None
		p.lastRotation = time.Now()
		log.Warn().Msg("No proxies available, requests will go out unproxied")
		return
	}

	next := candidates[rand.Intn(len(candidates))]
	if len(candidates) > 1 && next.Proxy == p.current.Proxy {
		// Re-pick among the others so a forced rotation actually changes
		// the egress identity.
		others := make([]Identity, 0, len(candidates)-1)
		for _, c := range candidates {
			if c.Proxy != p.current.Proxy {
				others = append(others, c)
			}
		}
		next = others[rand.Intn(len(others))]
	}

	p.current = next
	p.lastRotation = time.Now()
	log.Debug().Str("proxy", next.String()).Str("kind", string(kind)).Msg("Rotated proxy identity")
}

// Health returns pool sizes by kind.
func (p *Pool) Health() Health {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Health{Static: len(p.static), TorFallback: len(p.tor)}
}
