// Package wallet provides the acting identity for workflow calls. A Session
// is the explicit context object carrying the connected account: created on
// connect, swapped on account change, torn down on disconnect. Workflow
// entry points take a Session and fail with domain.ErrWalletNotConnected
// when it is absent or disconnected.
package wallet

import (
	"fmt"
	"sync"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"land-registry-workflow/internal/domain"
)

// AddressLength is the raw byte length of an account public key.
const AddressLength = 32

// ParseAddress validates a base58-encoded ed25519 account address and
// returns its canonical encoding. The raw key must be 32 bytes and a
// canonical curve point.
func ParseAddress(s string) (string, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return "", fmt.Errorf("decode address: %w", err)
	}
	if len(raw) != AddressLength {
		return "", fmt.Errorf("address must be %d bytes, got %d", AddressLength, len(raw))
	}
	if _, err := new(edwards25519.Point).SetBytes(raw); err != nil {
		return "", fmt.Errorf("address is not a valid curve point: %w", err)
	}
	return base58.Encode(raw), nil
}

// Session holds the acting account for one user connection.
type Session struct {
	mu        sync.RWMutex
	account   string
	connected bool
}

// Connect creates a session for the given account address.
func Connect(address string) (*Session, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrWalletNotConnected, err)
	}
	return &Session{account: addr, connected: true}, nil
}

// Account returns the acting account, or domain.ErrWalletNotConnected when
// the session is nil or has been disconnected.
func (s *Session) Account() (string, error) {
	if s == nil {
		return "", domain.ErrWalletNotConnected
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.connected {
		return "", domain.ErrWalletNotConnected
	}
	return s.account, nil
}

// SwitchAccount replaces the acting account, invalidating any state the
// consumer derived from the previous one.
func (s *Session) SwitchAccount(address string) error {
	addr, err := ParseAddress(address)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrWalletNotConnected, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = addr
	s.connected = true
	return nil
}

// Disconnect tears the session down. Subsequent Account calls fail.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	s.account = ""
}
