package listing

import (
	"context"
	"math/big"
	"testing"
	"time"

	"land-registry-workflow/internal/domain"
	"land-registry-workflow/internal/ledger"
	"land-registry-workflow/internal/ledger/stub"
)

func testRecords() []*domain.LandRecord {
	return []*domain.LandRecord{
		{ID: 1, IsAvailable: true, TokenCount: 0},
		{ID: 2, IsAvailable: true, TokenCount: 10},
		{ID: 3, IsAvailable: false, TokenCount: 0},
		{ID: 4, IsAvailable: false, TokenCount: 5},
	}
}

func TestFilter(t *testing.T) {
	records := testRecords()

	cases := []struct {
		mode Mode
		want []int64
	}{
		{ModeAll, []int64{1, 2, 3, 4}},
		{ModeTokenized, []int64{2, 4}},
		{ModeForSale, []int64{1, 2}},
		{ModeSold, []int64{3, 4}},
		{Mode("bogus"), nil},
	}

	for _, tc := range cases {
		t.Run(string(tc.mode), func(t *testing.T) {
			got := Filter(records, tc.mode)
			if len(got) != len(tc.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tc.want))
			}
			for i, r := range got {
				if r.ID != tc.want[i] {
					t.Errorf("got[%d].ID = %d, want %d", i, r.ID, tc.want[i])
				}
			}
		})
	}
}

func TestFilter_Partition(t *testing.T) {
	records := []*domain.LandRecord{
		{ID: 1, IsAvailable: true, TokenCount: 0},
		{ID: 2, IsAvailable: false, TokenCount: 2},
		{ID: 3, IsAvailable: true, TokenCount: 0},
	}

	sold := Filter(records, ModeSold)
	if len(sold) != 1 || sold[0].ID != 2 {
		t.Errorf("sold = %v", ids(sold))
	}
	tokenized := Filter(records, ModeTokenized)
	if len(tokenized) != 1 || tokenized[0].ID != 2 {
		t.Errorf("tokenized = %v", ids(tokenized))
	}
	all := Filter(records, ModeAll)
	if len(all) != 3 || all[0].ID != 1 || all[2].ID != 3 {
		t.Errorf("all = %v", ids(all))
	}
}

func ids(records []*domain.LandRecord) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestFilter_PreservesInput(t *testing.T) {
	records := testRecords()
	Filter(records, ModeForSale)
	if len(records) != 4 || records[0].ID != 1 {
		t.Error("Filter modified its input")
	}
}

func seedLedger() *stub.Ledger {
	l := stub.New(big.NewInt(0))
	l.AddRecord(&domain.LandRecord{Owner: "alice", Price: big.NewInt(100), PricePerToken: new(big.Int), IsAvailable: true})
	l.AddRecord(&domain.LandRecord{Owner: "bob", Price: big.NewInt(200), PricePerToken: big.NewInt(20), IsAvailable: true, TokenCount: 10})
	l.AddRecord(&domain.LandRecord{Owner: "carol", Price: big.NewInt(300), PricePerToken: new(big.Int), IsAvailable: false})
	return l
}

func TestService_Refresh(t *testing.T) {
	svc := NewService(seedLedger(), false)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	all := svc.List(ModeAll)
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	if all[0].ID != 1 || all[2].ID != 3 {
		t.Errorf("records out of ledger order: %d, %d", all[0].ID, all[2].ID)
	}

	forSale := svc.List(ModeForSale)
	if len(forSale) != 2 {
		t.Errorf("len(forSale) = %d, want 2", len(forSale))
	}
	sold := svc.List(ModeSold)
	if len(sold) != 1 || sold[0].ID != 3 {
		t.Errorf("sold = %+v", sold)
	}
}

func TestService_ListReturnsCopies(t *testing.T) {
	svc := NewService(seedLedger(), false)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	svc.List(ModeAll)[0].Price.SetInt64(1)

	again := svc.List(ModeAll)
	if again[0].Price.Cmp(big.NewInt(100)) != 0 {
		t.Errorf("snapshot mutated through returned record: %s", again[0].Price)
	}
}

func TestService_RefreshErrorKeepsSnapshot(t *testing.T) {
	l := seedLedger()
	svc := NewService(l, false)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	// Break record 2 so the next refresh fails mid-fetch.
	delete(l.Records, 2)
	if err := svc.Refresh(context.Background()); err == nil {
		t.Fatal("Expected refresh error")
	}

	if len(svc.List(ModeAll)) != 3 {
		t.Error("failed refresh should keep the previous snapshot")
	}
}

// fakeFeed is a hand-fed EventFeed.
type fakeFeed struct {
	ch chan ledger.RecordEvent
}

func (f *fakeFeed) Events() <-chan ledger.RecordEvent { return f.ch }
func (f *fakeFeed) Close() error                      { close(f.ch); return nil }

func TestService_Watch(t *testing.T) {
	l := seedLedger()
	svc := NewService(l, false)

	feed := &fakeFeed{ch: make(chan ledger.RecordEvent)}
	done := make(chan struct{})
	go func() {
		svc.Watch(context.Background(), feed)
		close(done)
	}()

	feed.ch <- ledger.RecordEvent{LandID: 4, Kind: ledger.EventRegistered}

	// The refresh runs on the watch goroutine; poll until it lands.
	deadline := time.After(2 * time.Second)
	for len(svc.List(ModeAll)) != 3 {
		select {
		case <-deadline:
			t.Fatal("snapshot never refreshed after event")
		case <-time.After(10 * time.Millisecond):
		}
	}

	feed.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop after feed close")
	}
}
