package domain

import "time"

// EventPhase is where an event sits relative to now.
type EventPhase string

// Event phases.
const (
	PhaseUpcoming EventPhase = "upcoming"
	PhaseLive     EventPhase = "live"
	PhaseEnded    EventPhase = "ended"
)

// RedirectCountdown is how long a visitor sees the notice before being sent on.
const RedirectCountdown = 3 * time.Second

// Contact is an event's point of contact.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Event is one entry in the community event catalog.
// Description holds trusted HTML (bold runs, paragraphs).
type Event struct {
	Slug               string     `json:"slug"`
	Heading            string     `json:"heading"`
	Description        string     `json:"description"`
	HeadingImage       string     `json:"headingImage,omitempty"`
	CTA                string     `json:"cta,omitempty"`
	CTALink            string     `json:"ctaLink,omitempty"`
	SecondaryCTA       string     `json:"secondaryCta,omitempty"`
	SecondaryCTALink   string     `json:"secondaryCtaLink,omitempty"`
	Time               *Timestamp `json:"time,omitempty"`
	ExpiryTime         *Timestamp `json:"expiryTime,omitempty"`
	RedirectURL        string     `json:"redirectUrl,omitempty"`
	LiveTime           *Timestamp `json:"liveTime,omitempty"`
	LiveURL            string     `json:"liveUrl,omitempty"`
	LiveCTA            string     `json:"liveCta,omitempty"`
	AutoRedirectOnLive bool       `json:"autoRedirectOnLive,omitempty"`
	DateDisplay        string     `json:"dateDisplay,omitempty"`
	Location           string     `json:"location,omitempty"`
	Contact            *Contact   `json:"contact,omitempty"`
}

// Phase returns the event phase at now. An event without an expiry never ends;
// one without a live time goes live at its start time.
func (e *Event) Phase(now time.Time) EventPhase {
	if e.ExpiryTime != nil && now.After(e.ExpiryTime.Time) {
		return PhaseEnded
	}
	live := e.LiveTime
	if live == nil {
		live = e.Time
	}
	if live != nil && !now.Before(live.Time) {
		return PhaseLive
	}
	return PhaseUpcoming
}

// Redirect returns where a visitor should be sent at now, if anywhere.
// Ended events go to RedirectURL; live events go to LiveURL when AutoRedirectOnLive is set.
func (e *Event) Redirect(now time.Time) (string, bool) {
	switch e.Phase(now) {
	case PhaseEnded:
		return e.RedirectURL, e.RedirectURL != ""
	case PhaseLive:
		if e.AutoRedirectOnLive && e.LiveURL != "" {
			return e.LiveURL, true
		}
	}
	return "", false
}
