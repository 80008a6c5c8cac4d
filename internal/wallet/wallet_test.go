package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/mr-tron/base58"

	"land-registry-workflow/internal/domain"
)

func testAddress(t *testing.T) string {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return base58.Encode(pub)
}

func TestParseAddress(t *testing.T) {
	addr := testAddress(t)
	got, err := ParseAddress(addr)
	if err != nil {
		t.Fatalf("ParseAddress(%q): %v", addr, err)
	}
	if got != addr {
		t.Errorf("canonical form changed: %q -> %q", addr, got)
	}
}

func TestParseAddress_Invalid(t *testing.T) {
	cases := []string{
		"",
		"0OIl",                          // not base58
		base58.Encode([]byte{1}),        // too short
		base58.Encode(make([]byte, 64)), // too long
	}
	for _, in := range cases {
		if _, err := ParseAddress(in); err == nil {
			t.Errorf("ParseAddress(%q): expected error", in)
		}
	}
}

func TestSession_Lifecycle(t *testing.T) {
	addr := testAddress(t)
	s, err := Connect(addr)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	got, err := s.Account()
	if err != nil {
		t.Fatalf("Account: %v", err)
	}
	if got != addr {
		t.Errorf("Account = %q, want %q", got, addr)
	}

	other := testAddress(t)
	if err := s.SwitchAccount(other); err != nil {
		t.Fatalf("SwitchAccount: %v", err)
	}
	got, _ = s.Account()
	if got != other {
		t.Errorf("after switch, Account = %q, want %q", got, other)
	}

	s.Disconnect()
	if _, err := s.Account(); !errors.Is(err, domain.ErrWalletNotConnected) {
		t.Errorf("after disconnect: expected ErrWalletNotConnected, got %v", err)
	}
}

func TestSession_NilBlocksEntry(t *testing.T) {
	var s *Session
	if _, err := s.Account(); !errors.Is(err, domain.ErrWalletNotConnected) {
		t.Errorf("nil session: expected ErrWalletNotConnected, got %v", err)
	}
}

func TestConnect_InvalidAddress(t *testing.T) {
	if _, err := Connect("not-an-address"); !errors.Is(err, domain.ErrWalletNotConnected) {
		t.Errorf("expected ErrWalletNotConnected, got %v", err)
	}
}
