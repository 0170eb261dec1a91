package rubric

import (
	"errors"
	"fmt"
	"strings"
)

// Rating is one of the four levels of the evaluation scale.
// The zero value means "not rated" and is never persisted.
type Rating int

const (
	Ruim Rating = iota + 1
	Regular
	Bom
	Otimo
)

var ErrUnknownRating = errors.New("unknown rating")

// Ratings returns the scale in display order, best first.
func Ratings() []Rating {
	return []Rating{Otimo, Bom, Regular, Ruim}
}

func (r Rating) String() string {
	switch r {
	case Otimo:
		return "Ótimo"
	case Bom:
		return "Bom"
	case Regular:
		return "Regular"
	case Ruim:
		return "Ruim"
	default:
		return fmt.Sprintf("Rating(%d)", int(r))
	}
}

// Valid reports whether r is one of the four scale values.
func (r Rating) Valid() bool {
	return r >= Ruim && r <= Otimo
}

// Percent maps the rating onto the 25..100 bar used in printed reports.
func (r Rating) Percent() int {
	if !r.Valid() {
		return 0
	}
	return int(r) * 25
}

// IsLow reports whether the rating counts towards the follow-up threshold.
func (r Rating) IsLow() bool {
	return r == Regular || r == Ruim
}

// ParseRating accepts the Portuguese labels, case-insensitively, with or
// without the accent on "Ótimo".
func ParseRating(s string) (Rating, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ótimo", "otimo":
		return Otimo, nil
	case "bom":
		return Bom, nil
	case "regular":
		return Regular, nil
	case "ruim":
		return Ruim, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRating, s)
}

func (r Rating) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRating, int(r))
	}
	return []byte(r.String()), nil
}

func (r *Rating) UnmarshalText(text []byte) error {
	parsed, err := ParseRating(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
