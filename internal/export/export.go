// Package export renders the participant view as an xlsx workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gdgscriet/studyjam-server/internal/query"
)

// SheetName is the single worksheet in an export.
const SheetName = "Participants"

// ContentType is the xlsx MIME type.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Columns is the fixed header order.
var Columns = []string{
	"S.No",
	"Rank",
	"Name",
	"Email",
	"Completed Badges",
	"Total Badges",
	"Completion %",
	"Bot Time Stamp %",
	"Access Code Redeemed",
}

var columnWidths = []float64{6, 6, 28, 32, 17, 13, 13, 24, 21}

// Filename returns GDG_Participants_<YYYY-MM-DD>.xlsx for the date of now.
func Filename(now time.Time) string {
	return fmt.Sprintf("GDG_Participants_%s.xlsx", now.Format(time.DateOnly))
}

// Record is one spreadsheet row, in Columns order.
func Record(r query.Ranked) []any {
	p := r.Participant

	var rank any = ""
	if p.Rank != nil {
		rank = *p.Rank
	}
	botTime := ""
	if p.UpdatedAt != nil {
		botTime = p.UpdatedAt.UTC().Format(time.RFC3339)
	}
	redeemed := "No"
	if p.Redeemed() {
		redeemed = "Yes"
	}

	return []any{
		r.SerialNo,
		rank,
		p.Name,
		p.Email,
		p.Completed(),
		p.Total(),
		p.Percentage(),
		botTime,
		redeemed,
	}
}

// Write streams rows to w as a workbook with a bold, frozen header row.
func Write(w io.Writer, rows []query.Ranked) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E8F0FE"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	for i, width := range columnWidths {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: c}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, Record(r)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
