package shows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/handsomefox/showboard/internal/logger"
	"github.com/handsomefox/showboard/internal/tvmaze"
)

// ErrCreditLookup marks an actor whose person record was found but whose
// credited shows could not all be resolved.
var ErrCreditLookup = errors.New("credit show lookup failed")

// DefaultFanOut bounds the concurrent show lookups made for one actor.
const DefaultFanOut = 8

// Catalog is the subset of the tvmaze client the service depends on.
type Catalog interface {
	Shows(ctx context.Context) ([]tvmaze.Show, error)
	SearchShows(ctx context.Context, query string) ([]tvmaze.Show, error)
	Show(ctx context.Context, id int64) (tvmaze.Show, error)
	Episodes(ctx context.Context, showID int64) ([]json.RawMessage, error)
	ShowsByCountry(ctx context.Context, code string) ([]tvmaze.Show, error)
	Person(ctx context.Context, id int64) (tvmaze.Person, error)
	CastCredits(ctx context.Context, personID int64) ([]tvmaze.CastCredit, error)
	ShowByURL(ctx context.Context, href string) (tvmaze.Show, error)
}

type Service struct {
	catalog Catalog
	views   ViewCounter
	fanOut  int
}

type Option func(*Service)

func WithViews(v ViewCounter) Option {
	return func(s *Service) { s.views = v }
}

func WithFanOut(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.fanOut = n
		}
	}
}

func NewService(catalog Catalog, opts ...Option) (*Service, error) {
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	s := &Service{
		catalog: catalog,
		views:   SeededViews{},
		fanOut:  DefaultFanOut,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// List searches when query is non-empty, otherwise lists every show.
func (s *Service) List(ctx context.Context, query string, amount Amount) ([]tvmaze.Show, error) {
	var (
		items []tvmaze.Show
		err   error
	)
	if q := strings.TrimSpace(query); q != "" {
		items, err = s.catalog.SearchShows(ctx, q)
	} else {
		items, err = s.catalog.Shows(ctx)
	}
	if err != nil {
		return nil, err
	}
	return Paginate(items, amount), nil
}

// Detail fetches the show, then its episodes, and merges both.
func (s *Service) Detail(ctx context.Context, id int64) (tvmaze.ShowDetail, error) {
	show, err := s.catalog.Show(ctx, id)
	if err != nil {
		return tvmaze.ShowDetail{}, err
	}
	episodes, err := s.catalog.Episodes(ctx, id)
	if err != nil {
		return tvmaze.ShowDetail{}, err
	}
	return tvmaze.ShowDetail{
		Show:   show,
		Views:  s.views.Views(show.ID),
		Series: episodes,
	}, nil
}

func (s *Service) ByGenre(ctx context.Context, genre string, amount Amount) ([]tvmaze.Show, error) {
	items, err := s.catalog.Shows(ctx)
	if err != nil {
		return nil, err
	}
	return Paginate(FilterByGenre(items, genre), amount), nil
}

func (s *Service) ByCountry(ctx context.Context, code string, amount Amount) ([]tvmaze.Show, error) {
	items, err := s.catalog.ShowsByCountry(ctx, code)
	if err != nil {
		return nil, err
	}
	return Paginate(RankByRating(items), amount), nil
}

// Popular returns the PopularLimit best rated shows.
func (s *Service) Popular(ctx context.Context) ([]tvmaze.Show, error) {
	items, err := s.catalog.Shows(ctx)
	if err != nil {
		return nil, err
	}
	return Paginate(RankByRating(items), Limit(PopularLimit)), nil
}

// Actor merges a person with the shows behind their cast credits. The shows
// are fetched concurrently; one failed lookup fails the whole call.
func (s *Service) Actor(ctx context.Context, id int64) (tvmaze.ActorDetail, error) {
	person, err := s.catalog.Person(ctx, id)
	if err != nil {
		return tvmaze.ActorDetail{}, err
	}
	credits, err := s.catalog.CastCredits(ctx, id)
	if err != nil {
		return tvmaze.ActorDetail{}, err
	}

	casts := make([]tvmaze.ShowSummary, len(credits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanOut)
	for i, credit := range credits {
		href := credit.Links.Show.Href
		g.Go(func() error {
			show, err := s.catalog.ShowByURL(gctx, href)
			if err != nil {
				return fmt.Errorf("%w: credit %d: %w", ErrCreditLookup, i, err)
			}
			casts[i] = show.Summary()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Warn("actor: credit lookup failed", slog.Int64("person", id), logger.Error(err))
		return tvmaze.ActorDetail{}, err
	}

	return tvmaze.ActorDetail{Person: person, Casts: casts}, nil
}
