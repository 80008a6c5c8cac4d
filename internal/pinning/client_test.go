package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mr-tron/base58"

	"land-registry-workflow/internal/domain"
)

// testCID builds a syntactically valid content address from a fake digest.
func testCID() string {
	raw := make([]byte, 34)
	raw[0] = 0x12
	raw[1] = 0x20
	for i := 2; i < len(raw); i++ {
		raw[i] = byte(i)
	}
	return base58.Encode(raw)
}

func TestClient_Pin(t *testing.T) {
	cid := testCID()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pinning/pinFileToIPFS" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("pinata_api_key") != "key" || r.Header.Get("pinata_secret_api_key") != "secret" {
			t.Error("missing API credentials")
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "deed.pdf" {
			t.Errorf("filename = %s", header.Filename)
		}

		var meta map[string]string
		if err := json.Unmarshal([]byte(r.FormValue("pinataMetadata")), &meta); err != nil {
			t.Fatalf("metadata: %v", err)
		}
		if meta["name"] != "deed.pdf" {
			t.Errorf("metadata name = %q", meta["name"])
		}

		json.NewEncoder(w).Encode(map[string]string{"IpfsHash": cid})
	}))
	defer server.Close()

	client := NewClient(server.URL, "https://gateway.example.com", Credentials{APIKey: "key", APISecret: "secret"})
	got, err := client.Pin(context.Background(), "deed.pdf", bytes.NewReader([]byte("%PDF-1.4 test")))
	if err != nil {
		t.Fatalf("Pin: %v", err)
	}
	if got != cid {
		t.Errorf("cid = %q, want %q", got, cid)
	}

	if url := client.GatewayURL(got); url != "https://gateway.example.com/ipfs/"+cid {
		t.Errorf("GatewayURL = %q", url)
	}
}

func TestClient_Pin_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "https://gateway.example.com", Credentials{})
	_, err := client.Pin(context.Background(), "deed.pdf", bytes.NewReader([]byte("x")))
	if !errors.Is(err, domain.ErrPinningFailed) {
		t.Fatalf("expected ErrPinningFailed, got %v", err)
	}
}

func TestClient_Pin_MalformedCID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"IpfsHash": "not-a-cid"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "https://gateway.example.com", Credentials{})
	_, err := client.Pin(context.Background(), "deed.pdf", bytes.NewReader([]byte("x")))
	if !errors.Is(err, domain.ErrPinningFailed) {
		t.Fatalf("expected ErrPinningFailed, got %v", err)
	}
}

func TestValidateCID(t *testing.T) {
	if err := ValidateCID(testCID()); err != nil {
		t.Errorf("valid cid rejected: %v", err)
	}

	bad := []string{
		"",
		"0OIl",
		base58.Encode([]byte{0x12, 0x20, 1, 2, 3}),    // wrong length
		base58.Encode(bytes.Repeat([]byte{0xab}, 34)), // wrong prefix
	}
	for _, cid := range bad {
		if err := ValidateCID(cid); err == nil {
			t.Errorf("ValidateCID(%q): expected error", cid)
		}
	}
}
