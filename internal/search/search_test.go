package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardonyia/basket/internal/client"
	"github.com/gardonyia/basket/internal/models"
)

type fakeProvider struct {
	source     models.Source
	candidates []models.MatchCandidate
	err        error
	delay      time.Duration
	panics     bool
	calls      int
}

func (f *fakeProvider) Source() models.Source { return f.source }

func (f *fakeProvider) Search(ctx context.Context, _ Request) ([]models.MatchCandidate, error) {
	f.calls++
	if f.panics {
		panic("boom")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, &client.FetchError{Kind: client.KindTimeout, Source: string(f.source), Err: ctx.Err()}
		}
	}
	return f.candidates, f.err
}

func candidate(source models.Source, home, away string) models.MatchCandidate {
	return models.MatchCandidate{Source: source, Home: home, Away: away, Score: models.UnknownScore}
}

func testRequest(t *testing.T) Request {
	t.Helper()
	req, err := NewRequest("Partizan", "2024-03-10", "", time.Now())
	require.NoError(t, err)
	return req
}

func TestNewRequest(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC)

	req, err := NewRequest("  Partizan ", "", "all", now)
	require.NoError(t, err)
	assert.Equal(t, "Partizan", req.Query)
	assert.Equal(t, "2024-03-10", req.Day())
	assert.Equal(t, LeagueAll, req.League)

	req, err = NewRequest("Partizan", "2023-11-02", "EuroCup", now)
	require.NoError(t, err)
	assert.Equal(t, 2023, req.Year())
	assert.Equal(t, LeagueEurocup, req.League)

	_, err = NewRequest("   ", "", "", now)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = NewRequest("Partizan", "10/03/2024", "", now)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = NewRequest("Partizan", "", "nba", now)
	assert.ErrorIs(t, err, ErrUnknownLeague)
}

func TestSearchAll_OrderAndAdditivity(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		a := &fakeProvider{source: models.SourceSofascore, candidates: []models.MatchCandidate{
			candidate(models.SourceSofascore, "Partizan", "Zvezda"),
			candidate(models.SourceSofascore, "Partizan", "Mega"),
		}, delay: 20 * time.Millisecond}
		b := &fakeProvider{source: models.SourceFIBA, err: &client.FetchError{Kind: client.KindStatus, StatusCode: 500}}
		c := &fakeProvider{source: models.SourceRealGM, candidates: []models.MatchCandidate{
			candidate(models.SourceRealGM, "Partizan 82", "77 Zvezda"),
		}}

		agg := NewAggregator([]Provider{a, b, c}, AggregatorConfig{Parallel: parallel})
		results, err := agg.SearchAll(context.Background(), testRequest(t))
		require.NoError(t, err)

		require.Len(t, results.Candidates, 3, "parallel=%v", parallel)
		assert.Equal(t, models.SourceSofascore, results.Candidates[0].Source)
		assert.Equal(t, "Mega", results.Candidates[1].Away)
		assert.Equal(t, models.SourceRealGM, results.Candidates[2].Source)

		require.Len(t, results.Reports, 3)
		sum := 0
		for _, r := range results.Reports {
			sum += r.Count
		}
		assert.Equal(t, len(results.Candidates), sum)
		assert.Equal(t, "status", results.Reports[1].ErrorKind())
		assert.Equal(t, "", results.Reports[0].ErrorKind())
		assert.Equal(t, []models.Source{models.SourceSofascore, models.SourceFIBA, models.SourceRealGM}, results.Sources())
	}
}

func TestSearchAll_PartialResultsKeptOnError(t *testing.T) {
	p := &fakeProvider{
		source:     models.SourceEurobasket,
		candidates: []models.MatchCandidate{candidate(models.SourceEurobasket, "Falco", "Szolnok")},
		err:        client.ParseError("eurobasket", "", errors.New("bad row")),
	}

	results, err := NewAggregator([]Provider{p}, AggregatorConfig{}).SearchAll(context.Background(), testRequest(t))
	require.NoError(t, err)
	assert.Len(t, results.Candidates, 1)
	assert.Equal(t, "parse", results.Reports[0].ErrorKind())
}

func TestSearchAll_DropsInvalidCandidates(t *testing.T) {
	p := &fakeProvider{source: models.SourceRealGM, candidates: []models.MatchCandidate{
		candidate(models.SourceRealGM, "Partizan", ""),
		candidate(models.SourceRealGM, "Partizan", "Zvezda"),
	}}

	results, err := NewAggregator([]Provider{p}, AggregatorConfig{}).SearchAll(context.Background(), testRequest(t))
	require.NoError(t, err)
	require.Len(t, results.Candidates, 1)
	assert.Equal(t, 1, results.Reports[0].Count)
}

func TestSearchAll_SlowSourceDoesNotBlockOthers(t *testing.T) {
	slow := &fakeProvider{source: models.SourceFIBA, delay: time.Second}
	fast := &fakeProvider{source: models.SourceRealGM, candidates: []models.MatchCandidate{
		candidate(models.SourceRealGM, "Bayern", "Alba"),
	}}

	agg := NewAggregator([]Provider{slow, fast}, AggregatorConfig{Parallel: true, SourceTimeout: 50 * time.Millisecond})
	start := time.Now()
	results, err := agg.SearchAll(context.Background(), testRequest(t))
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Len(t, results.Candidates, 1)
	assert.Equal(t, "timeout", results.Reports[0].ErrorKind())
}

func TestSearchAll_PanicIsIsolated(t *testing.T) {
	bad := &fakeProvider{source: models.SourceFIBA, panics: true}
	good := &fakeProvider{source: models.SourceRealGM, candidates: []models.MatchCandidate{
		candidate(models.SourceRealGM, "Bayern", "Alba"),
	}}

	results, err := NewAggregator([]Provider{bad, good}, AggregatorConfig{}).SearchAll(context.Background(), testRequest(t))
	require.NoError(t, err)
	assert.Len(t, results.Candidates, 1)
	assert.Equal(t, "parse", results.Reports[0].ErrorKind())
}

func TestSearchAll_ValidationBlocksSearch(t *testing.T) {
	p := &fakeProvider{source: models.SourceSofascore}
	_, err := NewAggregator([]Provider{p}, AggregatorConfig{}).SearchAll(context.Background(), Request{Query: " ", Date: time.Now()})
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Equal(t, 0, p.calls)
}

func TestSearchAll_NoProviders(t *testing.T) {
	results, err := NewAggregator(nil, AggregatorConfig{}).SearchAll(context.Background(), testRequest(t))
	require.NoError(t, err)
	assert.True(t, results.Empty())
	assert.NotNil(t, results.Candidates)
}

func TestFilter(t *testing.T) {
	candidates := []models.MatchCandidate{
		candidate(models.SourceEurobasket, "KK Partizan", "Crvena Zvezda"),
		candidate(models.SourceEurobasket, "Bayern München", "ALBA Berlin"),
		candidate(models.SourceEurobasket, "Falco", "Szolnoki Olajbányász"),
	}

	assert.Len(t, Filter(candidates, "partizan"), 1)
	assert.Len(t, Filter(candidates, "ZVEZDA"), 1, "away side matches too")
	assert.Len(t, Filter(candidates, "munchen"), 1, "accents are ignored")
	assert.Len(t, Filter(candidates, "olajbanyasz"), 1)
	assert.Empty(t, Filter(candidates, "Unknown Team XYZ"))
	assert.Empty(t, Filter(candidates, "  "))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "szolnoki olajbanyasz", Fold(" Szolnoki Olajbányász "))
	assert.Equal(t, "crvena zvezda", Fold("Crvena Zvezda"))
}

func TestAggregatorProviderLookup(t *testing.T) {
	p := &fakeProvider{source: models.SourceEuroleague}
	agg := NewAggregator([]Provider{p}, AggregatorConfig{})

	got, ok := agg.Provider(models.SourceEuroleague)
	require.True(t, ok)
	assert.Equal(t, p, got)

	_, ok = agg.Provider(models.SourceFIBA)
	assert.False(t, ok)
}
