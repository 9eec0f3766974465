package domain

import (
	"encoding/json/v2"
	"fmt"
	"strconv"
	"strings"
)

// BadgeType distinguishes skill badges from arcade games.
type BadgeType string

// Badge types reported by the participant API.
const (
	BadgeTypeSkill  BadgeType = "skill_badge"
	BadgeTypeArcade BadgeType = "arcade_game"
)

// Badge is one achievement in a participant's profile. Owned by its Participant.
type Badge struct {
	Name      string    `json:"name"`
	BadgeType BadgeType `json:"badge_type"`
	Completed bool      `json:"completed"`
}

// ParticipantID accepts either a JSON string or number from the remote API
// and always encodes as a string.
type ParticipantID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ParticipantID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ParticipantID(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*id = ParticipantID(strconv.FormatFloat(n, 'f', -1, 64))
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into participant id", string(data))
}

// Participant is a tracked study jam participant as returned by the remote API.
// Optional fields are pointers: nil means the server did not send the field.
// The badge counters and percentage are derived by the normalize package and
// are not trusted as received.
type Participant struct {
	ID                   ParticipantID `json:"id"`
	Name                 string        `json:"name"`
	Email                string        `json:"email,omitempty"`
	Badges               []Badge       `json:"badges,omitempty"`
	CompletedBadges      *int          `json:"completed_badges,omitempty"`
	TotalBadges          *int          `json:"total_badges,omitempty"`
	CompletionPercentage *int          `json:"completion_percentage,omitempty"`
	AccessCodeRedeemed   *bool         `json:"access_code_redeemed,omitempty"`
	CompletionDate       *Timestamp    `json:"completion_date,omitempty"`
	Rank                 *int          `json:"rank,omitempty"`
	ProfileURL           string        `json:"profile_url,omitempty"`
	// UpdatedAt is when the scraper bot last refreshed this record.
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
}

// Completed returns the completed badge count, 0 when absent.
func (p *Participant) Completed() int { return deref(p.CompletedBadges) }

// Total returns the total badge count, 0 when absent.
func (p *Participant) Total() int { return deref(p.TotalBadges) }

// Percentage returns the completion percentage, 0 when absent.
func (p *Participant) Percentage() int { return deref(p.CompletionPercentage) }

// Redeemed reports whether the access code was redeemed; absent counts as false.
func (p *Participant) Redeemed() bool {
	return p.AccessCodeRedeemed != nil && *p.AccessCodeRedeemed
}

// Clone returns a deep copy so callers can derive values without touching shared records.
func (p Participant) Clone() Participant {
	c := p
	if p.Badges != nil {
		c.Badges = make([]Badge, len(p.Badges))
		copy(c.Badges, p.Badges)
	}
	c.CompletedBadges = clonePtr(p.CompletedBadges)
	c.TotalBadges = clonePtr(p.TotalBadges)
	c.CompletionPercentage = clonePtr(p.CompletionPercentage)
	c.AccessCodeRedeemed = clonePtr(p.AccessCodeRedeemed)
	c.CompletionDate = clonePtr(p.CompletionDate)
	c.Rank = clonePtr(p.Rank)
	c.UpdatedAt = clonePtr(p.UpdatedAt)
	return c
}

// BadgesOfType returns the badges of one kind, preserving order.
func (p *Participant) BadgesOfType(t BadgeType) []Badge {
	var out []Badge
	for _, b := range p.Badges {
		if b.BadgeType == t {
			out = append(out, b)
		}
	}
	return out
}

// LeaderboardRow is one parsed line of the public CSV feed.
type LeaderboardRow struct {
	Rank           int    `json:"rank"`
	Name           string `json:"name"`
	ProfileURL     string `json:"profile_url"`
	CompletionDate string `json:"completion_date"`
}

// MatchesName reports whether q is a case-insensitive substring of the row's name.
func (r LeaderboardRow) MatchesName(q string) bool {
	return strings.Contains(strings.ToLower(r.Name), strings.ToLower(q))
}

// RankString renders an optional rank for tabular output.
func RankString(rank *int) string {
	if rank == nil {
		return ""
	}
	return strconv.Itoa(*rank)
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool { return &v }

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
