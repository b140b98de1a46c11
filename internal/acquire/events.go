package acquire

const eventBufferSize = 16

// Stage identifies how far an acquisition has progressed.
type Stage string

const (
	StageDispatched Stage = "dispatched"
	StageResolved   Stage = "resolved"
	StageDownloaded Stage = "downloaded"
	StageStored     Stage = "stored"
	StageFailed     Stage = "failed"
)

// Event is one progress notification for an in-flight acquisition. The
// Progress fraction is monotonically non-decreasing for a given item's
// request, ending at 1.0 on success.
type Event struct {
	ItemID   string
	Kind     Kind
	Stage    Stage
	Progress float64
	Source   string // winning source label, set from StageResolved on
	Err      error  // set only for StageFailed
}

// Kind distinguishes artwork from lyrics acquisitions.
type Kind string

const (
	KindArtwork Kind = "artwork"
	KindLyrics  Kind = "lyrics"
)

// Subscription delivers acquisition events to one subscriber. Events are
// dropped rather than blocking the acquisition when the subscriber lags.
type Subscription struct {
	Events <-chan Event
	Done   <-chan struct{}

	events chan Event
	done   chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		events: make(chan Event, eventBufferSize),
		done:   make(chan struct{}),
	}
	s.Events = s.events
	s.Done = s.done
	return s
}

func (s *Subscription) close() {
	close(s.done)
}

// send delivers an event without blocking.
func (s *Subscription) send(e Event) {
	select {
	case s.events <- e:
	default:
		// Drop if buffer full
	}
}
