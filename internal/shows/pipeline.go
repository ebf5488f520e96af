// Package shows implements the filter, rank, paginate and aggregation
// stages applied to tvmaze listings.
package shows

import (
	"cmp"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/handsomefox/showboard/internal/tvmaze"
)

// PopularLimit is the fixed size of the popular listing.
const PopularLimit = 9

var ErrInvalidAmount = errors.New("amount must be a non-negative integer")

// Amount is an optional result-count limit. The zero value means "no limit".
type Amount struct {
	n   int
	set bool
}

func Limit(n int) Amount { return Amount{n: max(n, 0), set: true} }

func (a Amount) IsSet() bool { return a.set }

func (a Amount) Value() int { return a.n }

// ParseAmount accepts an empty string as "no limit".
func ParseAmount(raw string) (Amount, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Amount{}, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return Amount{}, ErrInvalidAmount
	}
	return Limit(n), nil
}

// FilterByGenre keeps the shows listing genre, compared case-insensitively.
func FilterByGenre(items []tvmaze.Show, genre string) []tvmaze.Show {
	out := make([]tvmaze.Show, 0, len(items))
	for _, show := range items {
		if slices.ContainsFunc(show.Genres, func(g string) bool { return strings.EqualFold(g, genre) }) {
			out = append(out, show)
		}
	}
	return out
}

// RankByRating returns a copy sorted by rating.average, highest first.
// Unrated shows go last; equal ratings keep their input order.
func RankByRating(items []tvmaze.Show) []tvmaze.Show {
	out := slices.Clone(items)
	if out == nil {
		out = []tvmaze.Show{}
	}
	slices.SortStableFunc(out, func(a, b tvmaze.Show) int {
		ra, rb := a.Rating.Average, b.Rating.Average
		switch {
		case ra == nil && rb == nil:
			return 0
		case ra == nil:
			return 1
		case rb == nil:
			return -1
		default:
			return cmp.Compare(*rb, *ra)
		}
	})
	return out
}

// Paginate returns the first amount items, or all of them when amount is unset.
func Paginate[T any](items []T, amount Amount) []T {
	if items == nil {
		items = []T{}
	}
	if !amount.IsSet() || amount.Value() >= len(items) {
		return items
	}
	return items[:amount.Value()]
}
