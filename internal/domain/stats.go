package domain

// Stats is the aggregate block shown above the participant table.
type Stats struct {
	TotalParticipants int     `json:"total_participants"`
	RedeemedCount     int     `json:"redeemed_count"`
	CompletedAllCount int     `json:"completed_all_count"`
	AverageCompletion float64 `json:"average_completion"`
}

// ComputeStats derives Stats from normalized participants, e.g. for a filtered view.
func ComputeStats(participants []Participant) Stats {
	var s Stats
	s.TotalParticipants = len(participants)
	if s.TotalParticipants == 0 {
		return s
	}
	sum := 0
	for i := range participants {
		p := &participants[i]
		if p.Redeemed() {
			s.RedeemedCount++
		}
		if p.Total() > 0 && p.Completed() >= p.Total() {
			s.CompletedAllCount++
		}
		sum += p.Percentage()
	}
	s.AverageCompletion = float64(sum) / float64(s.TotalParticipants)
	return s
}
