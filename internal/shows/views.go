package shows

import "math/rand/v2"

// MaxViews bounds the synthetic view count: values are in [0, MaxViews).
const MaxViews = 10000

type ViewCounter interface {
	Views(showID int64) int
}

// SeededViews derives the view count from the seed and the show id, so the
// same show always reports the same number for a given seed.
type SeededViews struct {
	Seed uint64
}

func (s SeededViews) Views(showID int64) int {
	r := rand.New(rand.NewPCG(s.Seed, uint64(showID)))
	return r.IntN(MaxViews)
}

// FixedViews reports the same count for every show.
type FixedViews int

func (f FixedViews) Views(int64) int { return int(f) }
