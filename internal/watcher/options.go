package watcher

import (
	"path/filepath"
	"strings"
	"time"
)

const defaultSettleDelay = 250 * time.Millisecond

// Editor and spreadsheet scratch files seen next to exported CSVs.
var defaultIgnore = []string{"*.tmp", "*.swp", "*~", ".~lock.*", "~$*"}

// Options configures the file watcher behavior.
type Options struct {
	// Include restricts directory watches to matching base names. Empty means every file.
	Include []string
	// IgnorePatterns nil means defaultIgnore plus hidden files; an empty slice ignores nothing.
	IgnorePatterns []string
	// SettleDelay is how long size and mtime must stay unchanged before an event fires.
	SettleDelay  time.Duration
	IgnoreHidden bool
}

func (o *Options) setDefaults() {
	if o.SettleDelay <= 0 {
		o.SettleDelay = defaultSettleDelay
	}
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = defaultIgnore
		o.IgnoreHidden = true
	}
}

// shouldIgnore reports whether path is filtered out of directory watches.
func (o *Options) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	switch {
	case o.IgnoreHidden && strings.HasPrefix(base, "."):
		return true
	case matchAny(o.IgnorePatterns, base):
		return true
	case len(o.Include) > 0:
		return !matchAny(o.Include, base)
	}
	return false
}

// matchAny ignores malformed patterns.
func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}
