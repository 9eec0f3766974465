package events

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdgscriet/studyjam-server/internal/domain"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func TestNew_DefaultCatalog(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)

	v, ok := c.Get("techsprint2025", time.Date(2025, 12, 1, 0, 0, 0, 0, ist))
	require.True(t, ok)
	assert.Equal(t, "Tech Sprint by GDG SCRIET x CODE.SCRIET", v.Heading)
	assert.Equal(t, domain.PhaseUpcoming, v.Phase)
	assert.Nil(t, v.Notice)
	assert.Contains(t, v.DescriptionMarkdown, "**TechSprint**")
	assert.NotContains(t, v.Summary, "<b>")
	assert.True(t, strings.HasPrefix(v.Summary, "Welcome to TechSprint, hosted by"))
}

func TestCatalog_PhasesAndRedirects(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)

	tests := []struct {
		name     string
		at       time.Time
		phase    domain.EventPhase
		redirect string
	}{
		{"before start", time.Date(2025, 12, 18, 19, 59, 0, 0, ist), domain.PhaseUpcoming, ""},
		{"live auto redirect", time.Date(2025, 12, 18, 20, 30, 0, 0, ist), domain.PhaseLive, "https://gdg.community.dev/e/mwkkvu/"},
		{"after expiry", time.Date(2025, 12, 18, 21, 31, 0, 0, ist), domain.PhaseEnded, "https://vision.hack2skill.com/event/gdgoc-25-scriethacks2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := c.Get("techsprint2025", tt.at)
			require.True(t, ok)
			assert.Equal(t, tt.phase, v.Phase)
			if tt.redirect == "" {
				assert.Nil(t, v.Notice)
				return
			}
			require.NotNil(t, v.Notice)
			assert.Equal(t, tt.redirect, v.Notice.URL)
			assert.Equal(t, 3, v.Notice.CountdownSeconds)
		})
	}
}

func TestCatalog_ListExcludesEnded(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)

	after := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, c.List(after, false))
	assert.Len(t, c.List(after, true), 1)
}

func TestCatalog_Load(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)

	data := `[
		{"heading": "Cloud Study Jam Kickoff", "time": "2025-10-03T10:00:00Z", "description": "Intro"},
		{"slug": "Gemini Night!", "heading": "Gemini Night", "time": "2025-09-01T10:00:00Z"},
		{"heading": "Undated"}
	]`
	require.NoError(t, c.Load([]byte(data)))

	views := c.List(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), true)
	require.Len(t, views, 3)
	assert.Equal(t, "gemini-night", views[0].Slug)
	assert.Equal(t, "cloud-study-jam-kickoff", views[1].Slug)
	assert.Equal(t, "undated", views[2].Slug)

	_, ok := c.Get("Gemini Night", time.Now())
	assert.True(t, ok)
	_, ok = c.Get("techsprint2025", time.Now())
	assert.False(t, ok)
}

func TestCatalog_LoadRejectsBadInput(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)

	assert.Error(t, c.Load([]byte(`{"not": "an array"}`)))
	assert.Error(t, c.Load([]byte(`[{"heading": ""}]`)))
	assert.Error(t, c.Load([]byte(`[{"heading": "A"}, {"heading": "a"}]`)))

	// Previous catalog survives failed loads.
	_, ok := c.Get("techsprint2025", time.Now())
	assert.True(t, ok)
}

func TestNew_MissingFile(t *testing.T) {
	_, err := New(Options{File: filepath.Join(t.TempDir(), "nope.json")})
	assert.Error(t, err)
}

func TestCatalog_BlurHash(t *testing.T) {
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := range 100 {
		for x := range 200 {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, "banner.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	c, err := New(Options{ImageDir: dir})
	require.NoError(t, err)
	require.NoError(t, c.Load([]byte(`[{"heading": "Banner", "headingImage": "/events/banner.png"}, {"heading": "No Image", "headingImage": "/events/missing.png"}]`)))

	v, ok := c.Get("banner", time.Now())
	require.True(t, ok)
	assert.NotEmpty(t, v.ImageBlurHash)

	v, ok = c.Get("no-image", time.Now())
	require.True(t, ok)
	assert.Empty(t, v.ImageBlurHash)
}

func TestPlainTextAndSummary(t *testing.T) {
	assert.Equal(t, "Hello world. Next para", plainText("Hello <b>world</b>.\n\nNext para"))
	assert.Equal(t, "", plainText(""))

	long := strings.Repeat("word ", 100)
	s := summarize(strings.TrimSpace(long))
	assert.True(t, strings.HasSuffix(s, "…"))
	assert.LessOrEqual(t, len([]rune(s)), summaryRunes+1)
}

func TestThumbnail(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 10, 10))
	assert.Same(t, small, thumbnail(small).(*image.RGBA))

	wide := image.NewRGBA(image.Rect(0, 0, 640, 160))
	assert.Equal(t, image.Rect(0, 0, 64, 16), thumbnail(wide).Bounds())
}
