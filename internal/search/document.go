// Package search provides full-text search over the leaderboard feed and the event catalog
// using an in-memory Bleve index.
package search

import (
	"github.com/gdgscriet/studyjam-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeParticipant DocType = "participant"
	DocTypeEvent       DocType = "event"
)

// SearchDocument is the unified document structure for the Bleve index.
type SearchDocument struct {
	ID   string  `json:"id"`
	Type DocType `json:"type"`

	// Participant: display name. Event: heading.
	Name string `json:"name"`

	// Event summary and location; empty for participants.
	Text     string `json:"text,omitempty"`
	Location string `json:"location,omitempty"`

	URL  string `json:"url,omitempty"`
	Date string `json:"date,omitempty"`
	Rank int    `json:"rank,omitempty"`
}

// ToMap converts the document to the field names used by the index mapping.
func (d *SearchDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":   d.ID,
		"type": string(d.Type),
		"name": d.Name,
	}
	if d.Text != "" {
		m["text"] = d.Text
	}
	if d.Location != "" {
		m["location"] = d.Location
	}
	if d.URL != "" {
		m["url"] = d.URL
	}
	if d.Date != "" {
		m["date"] = d.Date
	}
	if d.Rank > 0 {
		m["rank"] = d.Rank
	}
	return m
}

// RowToSearchDocument indexes a feed row under its profile URL.
func RowToSearchDocument(row domain.LeaderboardRow) *SearchDocument {
	return &SearchDocument{
		ID:   string(DocTypeParticipant) + ":" + row.ProfileURL,
		Type: DocTypeParticipant,
		Name: row.Name,
		URL:  row.ProfileURL,
		Date: row.CompletionDate,
		Rank: row.Rank,
	}
}

// EventToSearchDocument indexes an event; summary is its plain-text description.
func EventToSearchDocument(ev *domain.Event, summary string) *SearchDocument {
	doc := &SearchDocument{
		ID:       string(DocTypeEvent) + ":" + ev.Slug,
		Type:     DocTypeEvent,
		Name:     ev.Heading,
		Text:     summary,
		Location: ev.Location,
		URL:      "/events/" + ev.Slug,
		Date:     ev.DateDisplay,
	}
	return doc
}
