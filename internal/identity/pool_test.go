package identity

import (
	"testing"
	"time"
)

func TestPoolPrefersStaticProxies(t *testing.T) {
	pool, err := NewPool([]string{"http://proxyA:8080", "http://proxyB:8080"}, Options{})
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}

	id := pool.Current()
	if id.Kind != KindStatic {
		t.Errorf("Expected static identity, got %s", id.Kind)
	}
	if !id.HasProxy() {
		t.Error("Expected a proxy URL on a static identity")
	}

	h := pool.Health()
	if h.Static != 2 || h.TorFallback != 0 {
		t.Errorf("Expected health {2 0}, got %+v", h)
	}
}

func TestPoolFallsBackToTor(t *testing.T) {
	pool, err := NewPool(nil, Options{})
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}

	id := pool.Current()
	if id.Kind != KindTor {
		t.Errorf("Expected tor identity, got %s", id.Kind)
	}
	if id.Proxy == nil || id.Proxy.Host != "127.0.0.1:9050" {
		t.Errorf("Expected local tor SOCKS proxy, got %v", id.Proxy)
	}

	h := pool.Health()
	if h.Static != 0 || h.TorFallback != 1 {
		t.Errorf("Expected health {0 1}, got %+v", h)
	}
}

func TestPoolSentinelWhenEmpty(t *testing.T) {
	pool, err := NewPool(nil, Options{DisableTor: true})
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}

	id := pool.Current()
	if id.Kind != KindNone || id.HasProxy() {
		t.Errorf("Expected the no-identity sentinel, got %+v", id)
	}
}

func TestPoolRotateChangesIdentity(t *testing.T) {
	pool, err := NewPool([]string{"http://proxyA:8080", "http://proxyB:8080"}, Options{})
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}

	before := pool.Current()
	for i := 0; i < 10; i++ {
		pool.Rotate()
		after := pool.Current()
		if after.Proxy == before.Proxy {
			t.Fatalf("Rotation %d did not change the identity", i)
		}
		before = after
	}
}

func TestPoolRotatesAfterInterval(t *testing.T) {
	pool, err := NewPool([]string{"http://proxyA:8080", "http://proxyB:8080"}, Options{})
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}

	first := pool.Current()

	// Backdate the last rotation past the interval; the next read must
	// rotate on its own.
	pool.mu.Lock()
	pool.lastRotation = time.Now().Add(-2 * DefaultRotationInterval)
	pool.mu.Unlock()

	second := pool.Current()
	if second.Proxy == first.Proxy {
		t.Error("Expected Current to rotate after the interval elapsed")
	}
}

func TestPoolRejectsInvalidURI(t *testing.T) {
	if _, err := NewPool([]string{"not a proxy"}, Options{}); err == nil {
		t.Error("Expected error for invalid proxy URI")
	}
}

func TestUserAgentPoolDefaults(t *testing.T) {
	pool := NewUserAgentPool(nil, 0)

	if pool.Count() == 0 {
		t.Fatal("Expected built-in user agents when none configured")
	}
	if ua := pool.Current(); ua == "" {
		t.Error("Expected a non-empty user agent")
	}
}

func TestUserAgentPoolRotateChangesAgent(t *testing.T) {
	pool := NewUserAgentPool([]string{"uaX", "uaY"}, time.Minute)

	before := pool.Current()
	pool.Rotate()
	after := pool.Current()
	if before == after {
		t.Errorf("Expected rotation to change the user agent, got %q twice", after)
	}
}

func TestUserAgentPoolSingleEntryStable(t *testing.T) {
	pool := NewUserAgentPool([]string{"uaX"}, time.Minute)

	pool.Rotate()
	if ua := pool.Current(); ua != "uaX" {
		t.Errorf("Expected uaX, got %q", ua)
	}
}
