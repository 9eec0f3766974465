package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/gdgscriet/studyjam-server/internal/domain"
	domainerrors "github.com/gdgscriet/studyjam-server/internal/errors"
	"github.com/gdgscriet/studyjam-server/internal/normalize"
)

// Field is a sortable participant column.
type Field string

// Sortable fields.
const (
	FieldRank       Field = "rank"
	FieldName       Field = "name"
	FieldEmail      Field = "email"
	FieldCompleted  Field = "completed_badges"
	FieldTotal      Field = "total_badges"
	FieldPercentage Field = "completion_percentage"
)

// SortKey is one level of a multi-key sort.
type SortKey struct {
	Field Field `json:"field"`
	Desc  bool  `json:"desc"`
}

// DefaultSort orders by rank ascending, then completion percentage descending.
func DefaultSort() []SortKey {
	return []SortKey{
		{Field: FieldRank},
		{Field: FieldPercentage, Desc: true},
	}
}

// ParseSort parses "rank,-completion_percentage" style directives. A leading '-'
// means descending. Empty input yields DefaultSort.
func ParseSort(s string) ([]SortKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultSort(), nil
	}

	var keys []SortKey
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key := SortKey{}
		if rest, ok := strings.CutPrefix(part, "-"); ok {
			key.Desc, part = true, rest
		} else {
			part = strings.TrimPrefix(part, "+")
		}
		key.Field = Field(strings.ToLower(part))
		if !key.Field.valid() {
			return nil, domainerrors.Validationf("unknown sort field %q", part)
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return DefaultSort(), nil
	}
	return keys, nil
}

// String renders the directive in ParseSort form.
func (k SortKey) String() string {
	if k.Desc {
		return fmt.Sprintf("-%s", k.Field)
	}
	return string(k.Field)
}

func (f Field) valid() bool {
	switch f {
	case FieldRank, FieldName, FieldEmail, FieldCompleted, FieldTotal, FieldPercentage:
		return true
	default:
		return false
	}
}

// Sort returns a stably sorted copy of in. A participant without a rank sorts
// after every ranked participant regardless of direction.
func Sort(in []domain.Participant, keys []SortKey) []domain.Participant {
	out := slices.Clone(in)
	if len(keys) == 0 {
		return out
	}
	slices.SortStableFunc(out, func(a, b domain.Participant) int {
		for _, k := range keys {
			if c := compareField(&a, &b, k); c != 0 {
				return c
			}
		}
		return 0
	})
	return out
}

func compareField(a, b *domain.Participant, k SortKey) int {
	if k.Field == FieldRank {
		switch {
		case a.Rank == nil && b.Rank == nil:
			return 0
		case a.Rank == nil:
			return 1
		case b.Rank == nil:
			return -1
		}
	}

	var c int
	switch k.Field {
	case FieldRank:
		c = cmp.Compare(*a.Rank, *b.Rank)
	case FieldName:
		c = strings.Compare(normalize.Fold(a.Name), normalize.Fold(b.Name))
	case FieldEmail:
		c = strings.Compare(normalize.Fold(a.Email), normalize.Fold(b.Email))
	case FieldCompleted:
		c = cmp.Compare(a.Completed(), b.Completed())
	case FieldTotal:
		c = cmp.Compare(a.Total(), b.Total())
	case FieldPercentage:
		c = cmp.Compare(a.Percentage(), b.Percentage())
	}
	if k.Desc {
		return -c
	}
	return c
}
