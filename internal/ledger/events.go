package ledger

// Record event kinds emitted by the registry.
const (
	EventRegistered = "REGISTERED" // new record created
	EventPurchased  = "PURCHASED"  // whole parcel or tokens sold
)

// RecordEvent is a notification that a land record was created or changed.
// It carries no record state: the ledger remains the only authority, so a
// consumer reacts by re-fetching, never by patching a cached snapshot.
type RecordEvent struct {
	LandID int64  `json:"landId"`
	Kind   string `json:"kind"`
}

// EventFeed delivers record events until closed.
type EventFeed interface {
	// Events returns the notification channel. The channel is closed when the
	// feed shuts down.
	Events() <-chan RecordEvent

	// Close shuts the feed down and releases its connection.
	Close() error
}
