// Package leaderboard parses the public study jam CSV feed.
//
// The feed is produced externally and is not strict CSV: each data line is
// rank,name,profile_url,completion_date where the profile URL is located by
// pattern and may be surrounded by whitespace. A line that cannot be read is
// reported as malformed and skipped; it never aborts the batch.
package leaderboard

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/gdgscriet/studyjam-server/internal/domain"
)

var profileURLPattern = regexp.MustCompile(`https?://[^\s,]+`)

var utf8BOM = []byte("\xef\xbb\xbf")

// Reasons attached to malformed lines.
const (
	ReasonNoURL       = "no profile url"
	ReasonMissingName = "missing name"
	ReasonBadRank     = "rank is not a positive integer"
)

// MalformedLine is a skipped input line. Line is 1-based and counts the header.
type MalformedLine struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
	Text   string `json:"text"`
}

// Feed is the result of one parse.
type Feed struct {
	Rows      []domain.LeaderboardRow `json:"rows"`
	Malformed []MalformedLine         `json:"malformed,omitempty"`
}

// Parse reads a whole feed. The first non-blank line is the header and is discarded.
// An input with no data lines yields an empty Feed.
func Parse(data []byte) Feed {
	data = bytes.TrimPrefix(data, utf8BOM)

	feed := Feed{Rows: []domain.LeaderboardRow{}}
	headerSeen := false

	for i, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if !headerSeen {
			headerSeen = true
			continue
		}

		row, reason := parseLine(line)
		if reason != "" {
			feed.Malformed = append(feed.Malformed, MalformedLine{Line: i + 1, Reason: reason, Text: line})
			continue
		}
		feed.Rows = append(feed.Rows, row)
	}

	return feed
}

// ParseReader reads r fully and parses it.
func ParseReader(r io.Reader) (Feed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Feed{}, fmt.Errorf("read feed: %w", err)
	}
	return Parse(data), nil
}

// parseLine returns the row or a non-empty reason when the line is malformed.
func parseLine(line string) (domain.LeaderboardRow, string) {
	loc := profileURLPattern.FindStringIndex(line)
	if loc == nil {
		return domain.LeaderboardRow{}, ReasonNoURL
	}

	before := strings.TrimSpace(line[:loc[0]])
	before = strings.TrimSpace(strings.TrimSuffix(before, ","))
	after := strings.TrimSpace(line[loc[1]:])
	after = strings.TrimSpace(strings.TrimPrefix(after, ","))

	rankText, name := splitRankName(before)
	if name == "" {
		return domain.LeaderboardRow{}, ReasonMissingName
	}
	rank, err := strconv.Atoi(rankText)
	if err != nil || rank < 1 {
		return domain.LeaderboardRow{}, ReasonBadRank
	}

	return domain.LeaderboardRow{
		Rank:           rank,
		Name:           name,
		ProfileURL:     line[loc[0]:loc[1]],
		CompletionDate: unquote(after),
	}, ""
}

// splitRankName splits "rank,name" at the first field boundary. Quoted names
// may contain commas; unquoted extra commas stay part of the name.
func splitRankName(s string) (rank, name string) {
	r := csv.NewReader(strings.NewReader(s))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	fields, err := r.Read()
	if err != nil || len(fields) == 0 {
		rank, name, _ = strings.Cut(s, ",")
		return strings.TrimSpace(rank), unquote(strings.TrimSpace(name))
	}
	if len(fields) == 1 {
		return strings.TrimSpace(fields[0]), ""
	}
	return strings.TrimSpace(fields[0]), unquote(strings.TrimSpace(strings.Join(fields[1:], ",")))
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}
	return s
}

// Search returns the rows whose name contains q, ignoring case. An empty q returns all rows.
func Search(rows []domain.LeaderboardRow, q string) []domain.LeaderboardRow {
	q = strings.TrimSpace(q)
	out := make([]domain.LeaderboardRow, 0, len(rows))
	for _, row := range rows {
		if q == "" || row.MatchesName(q) {
			out = append(out, row)
		}
	}
	return out
}
