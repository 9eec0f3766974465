package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptions_Defaults(t *testing.T) {
	var o Options
	o.setDefaults()

	assert.Equal(t, 250*time.Millisecond, o.SettleDelay)
	assert.True(t, o.IgnoreHidden)
	assert.NotEmpty(t, o.IgnorePatterns)
}

func TestOptions_ExplicitEmptyPatternsKeepHidden(t *testing.T) {
	o := Options{IgnorePatterns: []string{}}
	o.setDefaults()

	assert.False(t, o.IgnoreHidden)
	assert.False(t, o.shouldIgnore("/data/.leaderboard.csv"))
}

func TestOptions_ShouldIgnore(t *testing.T) {
	o := Options{Include: []string{"*.csv"}}
	o.setDefaults()

	tests := map[string]bool{
		"/data/leaderboard.csv":     false,
		"/data/leaderboard.csv.swp": true,
		"/data/.leaderboard.csv":    true,
		"/data/leaderboard.tmp":     true,
		"/data/readme.md":           true,
		"/data/.~lock.sheet.csv#":   true,
		"/data/~$leaderboard.csv":   true,
	}
	for path, want := range tests {
		assert.Equal(t, want, o.shouldIgnore(path), path)
	}
}
