package auth

import (
	"math/rand"
	"strconv"
	"sync"
	"time"
)

const tokenRandLen = 11

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// CSRFRegistry issues opaque form tokens and tracks the set of tokens
// currently valid. Tokens have no individual expiry; the whole set is
// dropped at logout.
type CSRFRegistry struct {
	mu     sync.Mutex
	tokens map[string]struct{}
	now    func() time.Time
}

// NewCSRFRegistry builds an empty registry. now is the clock source;
// pass time.Now outside of tests.
func NewCSRFRegistry(now func() time.Time) *CSRFRegistry {
	if now == nil {
		now = time.Now
	}
	return &CSRFRegistry{
		tokens: make(map[string]struct{}),
		now:    now,
	}
}

// Issue generates a token from a pseudo-random base36 string combined
// with the current timestamp, records it as valid, and returns it.
func (r *CSRFRegistry) Issue() string {
	buf := make([]byte, tokenRandLen)
	for i := range buf {
		buf[i] = base36[rand.Intn(len(base36))]
	}
	token := string(buf) + strconv.FormatInt(r.now().UnixMilli(), 36)

	r.mu.Lock()
	r.tokens[token] = struct{}{}
	r.mu.Unlock()
	return token
}

// Validate reports membership. Tokens stay valid for reuse until the
// registry is cleared.
func (r *CSRFRegistry) Validate(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tokens[token]
	return ok
}

// Clear invalidates every issued token. Called on logout.
func (r *CSRFRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = make(map[string]struct{})
}
