package shows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handsomefox/showboard/internal/tvmaze"
)

type fakeCatalog struct {
	shows     []tvmaze.Show
	search    map[string][]tvmaze.Show
	byCountry map[string][]tvmaze.Show
	episodes  map[int64][]json.RawMessage
	people    map[int64]tvmaze.Person
	credits   map[int64][]tvmaze.CastCredit
	byURL     map[string]tvmaze.Show
	failURL   string
	err       error

	mu       sync.Mutex
	calls    []string
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeCatalog) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeCatalog) Shows(context.Context) ([]tvmaze.Show, error) {
	f.record("shows")
	return f.shows, f.err
}

func (f *fakeCatalog) SearchShows(_ context.Context, q string) ([]tvmaze.Show, error) {
	f.record("search:" + q)
	return f.search[q], f.err
}

func (f *fakeCatalog) Show(_ context.Context, id int64) (tvmaze.Show, error) {
	f.record(fmt.Sprintf("show:%d", id))
	for _, s := range f.shows {
		if s.ID == id {
			return s, f.err
		}
	}
	return tvmaze.Show{}, &tvmaze.UpstreamError{URL: "show", Status: 404}
}

func (f *fakeCatalog) Episodes(_ context.Context, id int64) ([]json.RawMessage, error) {
	f.record(fmt.Sprintf("episodes:%d", id))
	return f.episodes[id], f.err
}

func (f *fakeCatalog) ShowsByCountry(_ context.Context, code string) ([]tvmaze.Show, error) {
	f.record("country:" + code)
	return f.byCountry[code], f.err
}

func (f *fakeCatalog) Person(_ context.Context, id int64) (tvmaze.Person, error) {
	f.record(fmt.Sprintf("person:%d", id))
	return f.people[id], f.err
}

func (f *fakeCatalog) CastCredits(_ context.Context, id int64) ([]tvmaze.CastCredit, error) {
	f.record(fmt.Sprintf("credits:%d", id))
	return f.credits[id], f.err
}

func (f *fakeCatalog) ShowByURL(_ context.Context, href string) (tvmaze.Show, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	if href == f.failURL {
		return tvmaze.Show{}, &tvmaze.UpstreamError{URL: href, Status: 500}
	}
	show, ok := f.byURL[href]
	if !ok {
		return tvmaze.Show{}, &tvmaze.UpstreamError{URL: href, Status: 404}
	}
	return show, nil
}

func credit(href string) tvmaze.CastCredit {
	var c tvmaze.CastCredit
	c.Links.Show.Href = href
	return c
}

func newService(t *testing.T, catalog Catalog, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(catalog, opts...)
	require.NoError(t, err)
	return svc
}

func TestNewService_RequiresCatalog(t *testing.T) {
	_, err := NewService(nil)
	assert.Error(t, err)
}

func TestService_List(t *testing.T) {
	catalog := &fakeCatalog{
		shows:  []tvmaze.Show{rated(1, 5), rated(2, 6), rated(3, 7)},
		search: map[string][]tvmaze.Show{"dome": {rated(10, 6.5), rated(11, 3)}},
	}
	svc := newService(t, catalog)

	all, err := svc.List(context.Background(), "", Amount{})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids(all))

	limited, err := svc.List(context.Background(), "", Limit(2))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(limited))

	found, err := svc.List(context.Background(), " dome ", Limit(1))
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, ids(found))

	assert.Equal(t, []string{"shows", "shows", "search:dome"}, catalog.calls)
}

func TestService_DetailMergesEpisodesAndViews(t *testing.T) {
	catalog := &fakeCatalog{
		shows:    []tvmaze.Show{rated(5, 8)},
		episodes: map[int64][]json.RawMessage{5: {json.RawMessage(`{"id":1}`), json.RawMessage(`{"id":2}`)}},
	}
	svc := newService(t, catalog, WithViews(FixedViews(321)))

	detail, err := svc.Detail(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), detail.ID)
	assert.Equal(t, 321, detail.Views)
	assert.Len(t, detail.Series, 2)
	assert.Equal(t, []string{"show:5", "episodes:5"}, catalog.calls)
}

func TestService_DetailShowMissing(t *testing.T) {
	catalog := &fakeCatalog{}
	svc := newService(t, catalog)

	_, err := svc.Detail(context.Background(), 99)
	assert.ErrorIs(t, err, tvmaze.ErrUpstream)
	assert.Equal(t, []string{"show:99"}, catalog.calls, "episodes must not be fetched")
}

func TestService_ByGenre(t *testing.T) {
	catalog := &fakeCatalog{shows: []tvmaze.Show{
		rated(1, 5, "Drama"),
		rated(2, 9, "Comedy"),
		rated(3, 4, "Drama", "Horror"),
		rated(4, 2, "drama"),
	}}
	svc := newService(t, catalog)

	out, err := svc.ByGenre(context.Background(), "Drama", Limit(2))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(out))
}

func TestService_ByCountryRanks(t *testing.T) {
	catalog := &fakeCatalog{byCountry: map[string][]tvmaze.Show{
		"GB": {rated(1, 5), unrated(2), rated(3, 9), rated(4, 7)},
	}}
	svc := newService(t, catalog)

	out, err := svc.ByCountry(context.Background(), "GB", Amount{})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4, 1, 2}, ids(out))

	out, err = svc.ByCountry(context.Background(), "GB", Limit(1))
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids(out))
}

func TestService_PopularCapsAtNine(t *testing.T) {
	items := make([]tvmaze.Show, 0, 25)
	for i := range 25 {
		items = append(items, rated(int64(i), float64(i%10)))
	}
	svc := newService(t, &fakeCatalog{shows: items})

	out, err := svc.Popular(context.Background())
	require.NoError(t, err)
	require.Len(t, out, PopularLimit)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, *out[i-1].Rating.Average, *out[i].Rating.Average)
	}

	short, err := newService(t, &fakeCatalog{shows: items[:3]}).Popular(context.Background())
	require.NoError(t, err)
	assert.Len(t, short, 3)
}

func TestService_UpstreamErrorsPropagate(t *testing.T) {
	boom := &tvmaze.UpstreamError{URL: "x", Status: 503}
	svc := newService(t, &fakeCatalog{err: boom})
	ctx := context.Background()

	_, err := svc.List(ctx, "", Amount{})
	assert.ErrorIs(t, err, tvmaze.ErrUpstream)
	_, err = svc.ByGenre(ctx, "Drama", Amount{})
	assert.ErrorIs(t, err, tvmaze.ErrUpstream)
	_, err = svc.ByCountry(ctx, "US", Amount{})
	assert.ErrorIs(t, err, tvmaze.ErrUpstream)
	_, err = svc.Popular(ctx)
	assert.ErrorIs(t, err, tvmaze.ErrUpstream)
	_, err = svc.Actor(ctx, 1)
	assert.ErrorIs(t, err, tvmaze.ErrUpstream)
	assert.NotErrorIs(t, err, ErrCreditLookup)
}

func actorCatalog(n int) *fakeCatalog {
	catalog := &fakeCatalog{
		people:  map[int64]tvmaze.Person{1: {ID: 1, Name: "Jane"}},
		credits: map[int64][]tvmaze.CastCredit{},
		byURL:   map[string]tvmaze.Show{},
	}
	for i := range n {
		href := fmt.Sprintf("http://upstream/shows/%d", i)
		catalog.credits[1] = append(catalog.credits[1], credit(href))
		catalog.byURL[href] = rated(int64(i), float64(i), "Drama")
	}
	return catalog
}

func TestService_ActorResolvesEveryCreditInOrder(t *testing.T) {
	catalog := actorCatalog(20)
	svc := newService(t, catalog, WithFanOut(4))

	actor, err := svc.Actor(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Jane", actor.Name)
	require.Len(t, actor.Casts, 20)
	for i, c := range actor.Casts {
		assert.Equal(t, int64(i), c.ID)
		require.NotNil(t, c.Rating.Average)
		assert.InDelta(t, float64(i), *c.Rating.Average, 0.001)
	}
	assert.LessOrEqual(t, catalog.maxSeen.Load(), int32(4))
}

func TestService_ActorNoCredits(t *testing.T) {
	svc := newService(t, actorCatalog(0))

	actor, err := svc.Actor(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, actor.Casts)
}

func TestService_ActorFailsWhenOneCreditFails(t *testing.T) {
	catalog := actorCatalog(5)
	catalog.failURL = "http://upstream/shows/3"
	svc := newService(t, catalog)

	_, err := svc.Actor(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, tvmaze.ErrUpstream)
	assert.ErrorIs(t, err, ErrCreditLookup)
	assert.True(t, strings.Contains(err.Error(), "shows/3"))

	var upErr *tvmaze.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, 500, upErr.Status)
}
