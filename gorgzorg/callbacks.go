package gorgzorg

import "time"

// Callbacks provides hooks for transfer events.
// All callbacks are optional - nil callbacks use default behavior.
type Callbacks struct {
	// OnAccept is called on the receiver before a top-level item is
	// accepted. Return true to accept, false to reject the transfer.
	// The default accepts everything.
	OnAccept func(name string, size int64) bool

	// OnItemStart is called when an item begins transferring.
	OnItemStart func(path string, size int64)

	// OnItemComplete is called when an item has been fully transferred.
	OnItemComplete func(path string, size int64, duration time.Duration)

	// OnProgress is called periodically while an item's body streams.
	OnProgress func(path string, transferred, total int64)
}

// defaultCallbacks returns a set of callbacks with default implementations.
func defaultCallbacks() *Callbacks {
	return &Callbacks{
		OnAccept:       func(string, int64) bool { return true },
		OnItemStart:    func(string, int64) {},
		OnItemComplete: func(string, int64, time.Duration) {},
		OnProgress:     func(string, int64, int64) {},
	}
}

// mergeCallbacks merges user callbacks with defaults.
// User callbacks override defaults, nil callbacks use defaults.
func mergeCallbacks(user *Callbacks) *Callbacks {
	def := defaultCallbacks()
	if user == nil {
		return def
	}

	merged := *def
	if user.OnAccept != nil {
		merged.OnAccept = user.OnAccept
	}
	if user.OnItemStart != nil {
		merged.OnItemStart = user.OnItemStart
	}
	if user.OnItemComplete != nil {
		merged.OnItemComplete = user.OnItemComplete
	}
	if user.OnProgress != nil {
		merged.OnProgress = user.OnProgress
	}
	return &merged
}
