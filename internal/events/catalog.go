// Package events serves the community event catalog: upcoming, live and past events
// with their derived phase, redirect notice and text renderings.
package events

import (
	_ "embed"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gdgscriet/studyjam-server/internal/domain"
	"github.com/gdgscriet/studyjam-server/internal/normalize"
)

//go:embed catalog.json
var defaultCatalog []byte

// Redirect tells the page to send the visitor elsewhere after a countdown.
type Redirect struct {
	URL              string `json:"url"`
	CountdownSeconds int    `json:"countdownSeconds"`
}

// View is an event with everything derived for display at a point in time.
type View struct {
	domain.Event        `json:",inline"`
	Phase               domain.EventPhase `json:"phase"`
	Notice              *Redirect         `json:"redirect,omitempty"`
	DescriptionMarkdown string            `json:"descriptionMarkdown"`
	Summary             string            `json:"summary"`
	ImageBlurHash       string            `json:"imageBlurHash,omitempty"`
}

type entry struct {
	event    domain.Event
	markdown string
	text     string
	summary  string
	blurHash string
}

// Catalog holds the loaded events. Safe for concurrent use; Reload swaps the set.
type Catalog struct {
	imageDir string
	logger   *slog.Logger

	mu      sync.RWMutex
	entries []*entry
	bySlug  map[string]*entry
}

// Options configures a Catalog.
type Options struct {
	// File is a JSON array of events. Empty uses the built-in catalog.
	File string
	// ImageDir resolves headingImage base names for BlurHash placeholders. Optional.
	ImageDir string
	Logger   *slog.Logger
}

// New loads the catalog.
func New(opts Options) (*Catalog, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Catalog{imageDir: opts.ImageDir, logger: logger}

	data := defaultCatalog
	if opts.File != "" {
		var err error
		if data, err = os.ReadFile(opts.File); err != nil {
			return nil, fmt.Errorf("read event catalog: %w", err)
		}
	}
	if err := c.Load(data); err != nil {
		return nil, err
	}
	return c, nil
}

// Load replaces the catalog from JSON. On error the previous catalog is kept.
func (c *Catalog) Load(data []byte) error {
	var raw []domain.Event
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse event catalog: %w", err)
	}

	entries := make([]*entry, 0, len(raw))
	bySlug := make(map[string]*entry, len(raw))
	for i, ev := range raw {
		if strings.TrimSpace(ev.Heading) == "" {
			return fmt.Errorf("event %d: heading is required", i)
		}
		slug := normalize.Slugify(ev.Slug)
		if slug == "" {
			slug = normalize.Slugify(ev.Heading)
		}
		if _, dup := bySlug[slug]; dup {
			return fmt.Errorf("event %d: duplicate slug %q", i, slug)
		}
		ev.Slug = slug

		text := plainText(ev.Description)
		e := &entry{
			event:    ev,
			markdown: toMarkdown(ev.Description),
			text:     text,
			summary:  summarize(text),
			blurHash: c.blurHash(ev.HeadingImage),
		}
		entries = append(entries, e)
		bySlug[slug] = e
	}

	// Soonest first; undated events last.
	slices.SortStableFunc(entries, func(a, b *entry) int {
		at, bt := a.event.Time, b.event.Time
		switch {
		case at == nil && bt == nil:
			return 0
		case at == nil:
			return 1
		case bt == nil:
			return -1
		default:
			return at.Compare(bt.Time)
		}
	})

	c.mu.Lock()
	c.entries = entries
	c.bySlug = bySlug
	c.mu.Unlock()

	c.logger.Info("event catalog loaded", "events", len(entries))
	return nil
}

// ReloadFile re-reads path into the catalog.
func (c *Catalog) ReloadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read event catalog: %w", err)
	}
	return c.Load(data)
}

func (c *Catalog) blurHash(image string) string {
	if c.imageDir == "" || image == "" {
		return ""
	}
	p := filepath.Join(c.imageDir, path.Base(image))
	hash, err := computeBlurHash(p)
	if err != nil {
		c.logger.Debug("no blurhash for event image", "image", image, "error", err)
		return ""
	}
	return hash
}

// List returns every event as seen at now. An upcoming-only view excludes ended events.
func (c *Catalog) List(now time.Time, includeEnded bool) []View {
	c.mu.RLock()
	defer c.mu.RUnlock()

	views := make([]View, 0, len(c.entries))
	for _, e := range c.entries {
		v := e.view(now)
		if !includeEnded && v.Phase == domain.PhaseEnded {
			continue
		}
		views = append(views, v)
	}
	return views
}

// Get returns one event by slug. Slugs are matched after normalization.
func (c *Catalog) Get(slug string, now time.Time) (View, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.bySlug[normalize.Slugify(slug)]
	if !ok {
		return View{}, false
	}
	return e.view(now), true
}

// Indexed is an event with its full plain-text description.
type Indexed struct {
	Event domain.Event
	Text  string
}

// Texts returns each event with its plain-text description, for indexing.
func (c *Catalog) Texts() []Indexed {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Indexed, len(c.entries))
	for i, e := range c.entries {
		out[i] = Indexed{Event: e.event, Text: e.text}
	}
	return out
}

func (e *entry) view(now time.Time) View {
	v := View{
		Event:               e.event,
		Phase:               e.event.Phase(now),
		DescriptionMarkdown: e.markdown,
		Summary:             e.summary,
		ImageBlurHash:       e.blurHash,
	}
	if url, ok := e.event.Redirect(now); ok {
		v.Notice = &Redirect{URL: url, CountdownSeconds: int(domain.RedirectCountdown / time.Second)}
	}
	return v
}
