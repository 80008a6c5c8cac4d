package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"land-registry-workflow/internal/domain"
)

func rpcResult(t *testing.T, w http.ResponseWriter, id uint64, result interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
}

func rpcReject(t *testing.T, w http.ResponseWriter, id uint64, code int, msg string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   map[string]interface{}{"code": code, "message": msg},
	})
}

func TestHTTPClient_GetLand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		if req.Method != "registry_getLand" {
			t.Errorf("expected method registry_getLand, got %s", req.Method)
		}

		rpcResult(t, w, req.ID, map[string]interface{}{
			"owner":         "owner-addr",
			"location":      "Plot 7, Sector B",
			"price":         "10000000000000000000",
			"pricePerToken": "2500000000000000000",
			"isAvailable":   true,
			"documentRef":   "QmTestRef",
			"tokenCount":    4,
			"tokenIds":      []int64{11, 12, 13, 14},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	record, err := client.GetLand(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetLand: %v", err)
	}

	if record.ID != 3 {
		t.Errorf("ID = %d, want 3", record.ID)
	}
	if record.Owner != "owner-addr" {
		t.Errorf("Owner = %q", record.Owner)
	}
	if record.Price.String() != "10000000000000000000" {
		t.Errorf("Price = %s", record.Price)
	}
	if record.PricePerToken.String() != "2500000000000000000" {
		t.Errorf("PricePerToken = %s", record.PricePerToken)
	}
	if record.TokenCount != 4 || len(record.TokenIDs) != 4 {
		t.Errorf("TokenCount = %d, TokenIDs = %v", record.TokenCount, record.TokenIDs)
	}
}

func TestHTTPClient_RegistrationFee(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		rpcResult(t, w, req.ID, "5000000000000000")
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	fee, err := client.RegistrationFee(context.Background())
	if err != nil {
		t.Fatalf("RegistrationFee: %v", err)
	}
	if fee.Cmp(big.NewInt(5000000000000000)) != 0 {
		t.Errorf("fee = %s", fee)
	}
}

func TestHTTPClient_RegisterLand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Method != "registry_registerLand" {
			t.Errorf("method = %s", req.Method)
		}
		if len(req.Params) != 1 {
			t.Fatalf("expected 1 param, got %d", len(req.Params))
		}
		param := req.Params[0].(map[string]interface{})
		if param["price"] != "10000000000000000000" {
			t.Errorf("price param = %v", param["price"])
		}
		if param["fee"] != "5000000000000000" {
			t.Errorf("fee param = %v", param["fee"])
		}

		rpcResult(t, w, req.ID, map[string]interface{}{"landId": 7})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	id, err := client.RegisterLand(context.Background(), Registration{
		From:          "acct",
		Location:      "Plot 7",
		Price:         mustBig("10000000000000000000"),
		PricePerToken: mustBig("2500000000000000000"),
		DocumentRef:   "QmRef",
		TokenCount:    4,
		Fee:           mustBig("5000000000000000"),
	})
	if err != nil {
		t.Fatalf("RegisterLand: %v", err)
	}
	if id != 7 {
		t.Errorf("id = %d, want 7", id)
	}
}

func TestHTTPClient_RegisterLand_RejectedNotRetried(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		rpcReject(t, w, req.ID, -32000, "incorrect registration fee")
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithMaxRetries(5), WithRetryDelay(time.Millisecond))
	_, err := client.RegisterLand(context.Background(), Registration{From: "acct", Fee: big.NewInt(1)})
	if !errors.Is(err, domain.ErrLedgerRejected) {
		t.Fatalf("expected ErrLedgerRejected, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("rejection was retried: %d calls", got)
	}
}

func TestHTTPClient_BuyLand_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		rpcReject(t, w, req.ID, -32000, "already sold")
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	err := client.BuyLand(context.Background(), Purchase{From: "acct", LandID: 1, Value: big.NewInt(1)})
	if !errors.Is(err, domain.ErrPurchaseRejected) {
		t.Fatalf("expected ErrPurchaseRejected, got %v", err)
	}
}

func TestHTTPClient_WriteTransportErrorNotRetried(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithMaxRetries(5), WithRetryDelay(time.Millisecond))
	err := client.BuyLand(context.Background(), Purchase{From: "acct", LandID: 1, Value: big.NewInt(1)})
	if !errors.Is(err, domain.ErrPurchaseRejected) {
		t.Fatalf("expected ErrPurchaseRejected, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("write was retried: %d calls", got)
	}
}

func TestHTTPClient_ReadRetriesRateLimit(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		rpcResult(t, w, req.ID, 42)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(time.Millisecond))
	count, err := client.LandCount(context.Background())
	if err != nil {
		t.Fatalf("LandCount: %v", err)
	}
	if count != 42 {
		t.Errorf("count = %d", count)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 calls, got %d", got)
	}
}

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad test amount: " + s)
	}
	return v
}
