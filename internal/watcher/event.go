package watcher

import "time"

// EventType says how a watched file changed. Its value is what gets logged.
type EventType string

const (
	EventAdded    EventType = "added"    // appeared and settled
	EventModified EventType = "modified" // known file rewritten and settled
	EventRemoved  EventType = "removed"  // deleted or renamed away
)

func (t EventType) String() string { return string(t) }

// Event is a settled change to one file. Size and ModTime are zero for EventRemoved.
type Event struct {
	Type    EventType
	Path    string
	Size    int64
	ModTime time.Time
}
