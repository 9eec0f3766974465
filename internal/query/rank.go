package query

import "github.com/gdgscriet/studyjam-server/internal/domain"

// Ranked is a participant with its display serial number: the 1-based position
// in the filtered and sorted view. It is recomputed on every Apply.
type Ranked struct {
	SerialNo    int                `json:"serial_no"`
	Participant domain.Participant `json:"participant"`
}

// Result is the outcome of Apply.
type Result struct {
	Rows []Ranked `json:"rows"`
	// Total is the size of the unfiltered input.
	Total int `json:"total"`
}

// Apply filters, sorts and numbers participants. in is not modified.
func Apply(in []domain.Participant, spec FilterSpec, keys []SortKey) Result {
	sorted := Sort(Filter(in, spec), keys)

	rows := make([]Ranked, len(sorted))
	for i := range sorted {
		rows[i] = Ranked{SerialNo: i + 1, Participant: sorted[i]}
	}
	return Result{Rows: rows, Total: len(in)}
}
