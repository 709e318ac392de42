// Package oauth guards the OAuth authorization-code redirect against CSRF.
//
// Before sending the user to a provider, the caller issues a state token for
// that provider. When the redirect comes back, the echoed state is validated:
// a match consumes the token, so each token validates at most once. A
// mismatch leaves the issued token in place, so a wrong guess cannot burn it.
//
// Tokens do not expire on their own. An entry lives until it is validated or
// replaced by a newer issue for the same provider.
package oauth

import (
	"crypto/subtle"
	"fmt"
	"sync"

	"github.com/roach88/sidecar/internal/randutil"
)

// StateGuard maps provider name to the most recently issued state token.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StateGuard struct {
	mu     sync.Mutex
	states map[string]string
}

// NewStateGuard creates an empty guard.
func NewStateGuard() *StateGuard {
	return &StateGuard{states: make(map[string]string)}
}

// Issue records token for provider, replacing any earlier token.
func (g *StateGuard) Issue(provider, token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.states[provider] = token
}

// Validate reports whether candidate equals the token issued for provider.
// On a match the token is consumed.
func (g *StateGuard) Validate(provider, candidate string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	stored, ok := g.states[provider]
	if !ok {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) != 1 {
		return false
	}
	delete(g.states, provider)
	return true
}

// Begin generates a random token of the given length, issues it for
// provider and returns it.
func (g *StateGuard) Begin(provider string, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("state length must be positive, got %d", length)
	}
	token, err := randutil.RandomString(length)
	if err != nil {
		return "", fmt.Errorf("begin oauth state for %q: %w", provider, err)
	}
	g.Issue(provider, token)
	return token, nil
}

// Pending returns the number of issued, unconsumed tokens.
func (g *StateGuard) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.states)
}
