package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gdgscriet/studyjam-server/internal/domain"
	"github.com/gdgscriet/studyjam-server/internal/query"
)

func TestFilename(t *testing.T) {
	now := time.Date(2025, 10, 3, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "GDG_Participants_2025-10-03.xlsx", Filename(now))
}

func TestRecord(t *testing.T) {
	updated := domain.NewTimestamp(time.Date(2025, 10, 3, 12, 30, 0, 0, time.UTC))
	r := query.Ranked{
		SerialNo: 4,
		Participant: domain.Participant{
			Name:                 "Asha",
			Email:                "asha@example.com",
			Rank:                 domain.IntPtr(7),
			CompletedBadges:      domain.IntPtr(2),
			TotalBadges:          domain.IntPtr(3),
			CompletionPercentage: domain.IntPtr(67),
			AccessCodeRedeemed:   domain.BoolPtr(true),
			UpdatedAt:            updated,
		},
	}

	assert.Equal(t, []any{4, 7, "Asha", "asha@example.com", 2, 3, 67, "2025-10-03T12:30:00Z", "Yes"}, Record(r))
}

func TestRecord_MissingFields(t *testing.T) {
	got := Record(query.Ranked{SerialNo: 1, Participant: domain.Participant{Name: "B"}})
	assert.Equal(t, []any{1, "", "B", "", 0, 0, 0, "", "No"}, got)
}

func TestWrite(t *testing.T) {
	rows := []query.Ranked{
		{SerialNo: 1, Participant: domain.Participant{Name: "Asha", Rank: domain.IntPtr(1), CompletionPercentage: domain.IntPtr(100)}},
		{SerialNo: 2, Participant: domain.Participant{Name: "Rohan", AccessCodeRedeemed: domain.BoolPtr(true)}},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, Columns, got[0])
	assert.Equal(t, []string{"1", "1", "Asha", "", "0", "0", "100", "", "No"}, got[1])
	assert.Equal(t, []string{"2", "", "Rohan", "", "0", "0", "0", "", "Yes"}, got[2])
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, got, 1)
}
