package leaderboard

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdgscriet/studyjam-server/internal/domain"
)

const header = "Rank,Name,Profile URL,Completion Date\n"

func TestParse_WellFormedLines(t *testing.T) {
	var b strings.Builder
	b.WriteString(header)
	const n = 25
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%d,Participant %d,https://www.cloudskillsboost.google/public_profiles/%d,2024-10-%02d\n", i, i, i, i%28+1)
	}

	feed := Parse([]byte(b.String()))

	require.Len(t, feed.Rows, n)
	assert.Empty(t, feed.Malformed)
	urlRe := regexp.MustCompile(`^https?://`)
	for i, row := range feed.Rows {
		assert.NotEmpty(t, row.Name)
		assert.Regexp(t, urlRe, row.ProfileURL)
		assert.Equal(t, i+1, row.Rank)
	}
}

func TestParse_FieldExtraction(t *testing.T) {
	input := header + "  7 ,  Asha Verma ,  https://example.com/u/asha?x=1  ,  2024-10-03  \r\n"

	feed := Parse([]byte(input))

	require.Len(t, feed.Rows, 1)
	assert.Equal(t, domain.LeaderboardRow{
		Rank:           7,
		Name:           "Asha Verma",
		ProfileURL:     "https://example.com/u/asha?x=1",
		CompletionDate: "2024-10-03",
	}, feed.Rows[0])
}

func TestParse_MalformedLineSkipped(t *testing.T) {
	input := header +
		"1,Ana,https://example.com/ana,2024-10-01\n" +
		"2,Ben,no profile here,2024-10-02\n" +
		"3,Cai,http://example.com/cai,\n"

	feed := Parse([]byte(input))

	require.Len(t, feed.Rows, 2)
	assert.Equal(t, "Ana", feed.Rows[0].Name)
	assert.Equal(t, "Cai", feed.Rows[1].Name)
	assert.Empty(t, feed.Rows[1].CompletionDate)

	require.Len(t, feed.Malformed, 1)
	assert.Equal(t, 3, feed.Malformed[0].Line)
	assert.Equal(t, ReasonNoURL, feed.Malformed[0].Reason)
	assert.Equal(t, "2,Ben,no profile here,2024-10-02", feed.Malformed[0].Text)
}

func TestParse_InvalidRankAndName(t *testing.T) {
	input := header +
		"x,Ana,https://example.com/ana,\n" +
		"0,Ben,https://example.com/ben,\n" +
		"4,,https://example.com/empty,\n" +
		"https://example.com/only,\n"

	feed := Parse([]byte(input))

	assert.Empty(t, feed.Rows)
	require.Len(t, feed.Malformed, 4)
	assert.Equal(t, ReasonBadRank, feed.Malformed[0].Reason)
	assert.Equal(t, ReasonBadRank, feed.Malformed[1].Reason)
	assert.Equal(t, ReasonMissingName, feed.Malformed[2].Reason)
	assert.Equal(t, ReasonMissingName, feed.Malformed[3].Reason)
}

func TestParse_BlankLinesAreNotMalformed(t *testing.T) {
	input := "\n\n" + header + "\n   \n1,Ana,https://example.com/ana,2024-10-01\n\n"

	feed := Parse([]byte(input))

	assert.Len(t, feed.Rows, 1)
	assert.Empty(t, feed.Malformed)
}

func TestParse_NoDataLines(t *testing.T) {
	for name, input := range map[string]string{
		"empty":       "",
		"header only": header,
		"whitespace":  "  \n \n",
	} {
		t.Run(name, func(t *testing.T) {
			feed := Parse([]byte(input))
			assert.NotNil(t, feed.Rows)
			assert.Empty(t, feed.Rows)
			assert.Empty(t, feed.Malformed)
		})
	}
}

func TestParse_BOM(t *testing.T) {
	feed := Parse([]byte("\xef\xbb\xbf" + header + "1,Ana,https://example.com/ana,\n"))
	require.Len(t, feed.Rows, 1)
}

func TestParse_NamesWithCommas(t *testing.T) {
	input := header +
		`1,"Doe, Jane",https://example.com/jane,2024-10-01` + "\n" +
		`2,Smith, John,https://example.com/john,2024-10-02` + "\n" +
		`3,"The ""Ace""",https://example.com/ace,"Oct 3, 2024"` + "\n"

	feed := Parse([]byte(input))

	require.Len(t, feed.Rows, 3)
	assert.Equal(t, "Doe, Jane", feed.Rows[0].Name)
	assert.Equal(t, "Smith, John", feed.Rows[1].Name)
	assert.Equal(t, `The "Ace"`, feed.Rows[2].Name)
	assert.Equal(t, "Oct 3, 2024", feed.Rows[2].CompletionDate)
}

func TestParse_FirstURLWins(t *testing.T) {
	feed := Parse([]byte(header + "1,Ana,https://a.example/1,https://b.example/2\n"))

	require.Len(t, feed.Rows, 1)
	assert.Equal(t, "https://a.example/1", feed.Rows[0].ProfileURL)
	assert.Equal(t, "https://b.example/2", feed.Rows[0].CompletionDate)
}

func TestParseReader(t *testing.T) {
	feed, err := ParseReader(strings.NewReader(header + "1,Ana,https://example.com/ana,\n"))
	require.NoError(t, err)
	assert.Len(t, feed.Rows, 1)
}

func TestSearch(t *testing.T) {
	rows := []domain.LeaderboardRow{
		{Rank: 1, Name: "Asha Verma"},
		{Rank: 2, Name: "Ben Ashford"},
		{Rank: 3, Name: "Cai"},
	}

	assert.Len(t, Search(rows, ""), 3)
	got := Search(rows, "  ASH ")
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 2, got[1].Rank)
	assert.Empty(t, Search(rows, "zed"))
}
