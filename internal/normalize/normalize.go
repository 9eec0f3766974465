// Package normalize reconciles participant payloads into canonical badge counts
// and provides text normalization shared by search and filtering.
package normalize

import "github.com/gdgscriet/studyjam-server/internal/domain"

// Participant returns a copy of p with CompletedBadges, TotalBadges and
// CompletionPercentage derived from its badges:
//
//   - a non-empty badge list is authoritative: completed is the number of
//     completed badges and total is the list length;
//   - otherwise the server counters are kept, defaulting to 0;
//   - percentage is round(100*completed/total) when total > 0, else the
//     server percentage, else 0. It is always within 0..100.
//
// The function is pure and idempotent. p is never modified.
func Participant(p domain.Participant) domain.Participant {
	out := p.Clone()

	completed, total := p.Completed(), p.Total()
	if len(p.Badges) > 0 {
		completed, total = 0, len(p.Badges)
		for _, b := range p.Badges {
			if b.Completed {
				completed++
			}
		}
	}

	var pct int
	if total > 0 {
		pct = Percentage(completed, total)
	} else {
		pct = clampPercent(p.Percentage())
	}

	out.CompletedBadges = domain.IntPtr(completed)
	out.TotalBadges = domain.IntPtr(total)
	out.CompletionPercentage = domain.IntPtr(pct)
	return out
}

// Participants normalizes every record into a new slice.
func Participants(in []domain.Participant) []domain.Participant {
	out := make([]domain.Participant, len(in))
	for i := range in {
		out[i] = Participant(in[i])
	}
	return out
}

// Percentage returns round(100*completed/total) with halves rounded up,
// clamped to 0..100. total must be positive.
func Percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return clampPercent((200*completed + total) / (2 * total))
}

func clampPercent(v int) int {
	return min(max(v, 0), 100)
}
