// Package otp holds the in-memory one-time-code store used to verify email
// ownership during registration. Entries live in process memory only: a
// restart drops them and re-requesting a code is cheap. The store is injected
// into the auth service rather than kept as a package global so tests can
// substitute a deterministic clock.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// Clock abstracts time for expiry checks.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

type entry struct {
	code      string
	expiresAt time.Time
}

// Store keeps one live code per email. A newer code overwrites the older one.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	clock   Clock
}

// NewStore creates a Store. Pass SystemClock() outside of tests.
func NewStore(clock Clock) *Store {
	return &Store{
		entries: make(map[string]entry),
		clock:   clock,
	}
}

// Put stores a code for an email with the given time-to-live, replacing any
// previous unconsumed code for that email.
func (s *Store) Put(email, code string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[email] = entry{
		code:      code,
		expiresAt: s.clock.Now().Add(ttl),
	}
}

// Get returns the live code for an email. Expired entries are treated as
// absent but not removed; the sweeper or a successful consume deletes them.
func (s *Store) Get(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[email]
	if !ok || s.clock.Now().After(e.expiresAt) {
		return "", false
	}
	return e.code, true
}

// Delete removes the entry for an email. Called when the dependent operation
// (registration) completes, not by validation itself.
func (s *Store) Delete(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, email)
}

// Sweep removes expired entries to bound memory.
func (s *Store) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	for email, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, email)
		}
	}
}

// StartSweeper runs Sweep on the given interval until the returned stop
// function is called.
func (s *Store) StartSweeper(interval time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-done:
				return
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
	}
}

// GenerateCode returns a random 6-digit numeric code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
