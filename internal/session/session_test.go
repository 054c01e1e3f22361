package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardonyia/basket/internal/client"
	"github.com/gardonyia/basket/internal/models"
	"github.com/gardonyia/basket/internal/search"
	"github.com/gardonyia/basket/internal/stats"
)

func sampleResults() *search.Results {
	return &search.Results{
		Request: search.Request{Query: "Partizan", Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
		Candidates: []models.MatchCandidate{
			{Source: models.SourceSofascore, Home: "Partizan", Away: "Crvena Zvezda", Score: "82 - 77", MatchID: "11830442"},
			{Source: models.SourceFIBA, Home: "Partizan", Away: "Crvena Zvezda", Score: "?", MatchID: "/game/1"},
		},
		Reports: []search.SourceReport{
			{Source: models.SourceSofascore, Count: 1},
			{Source: models.SourceFIBA, Count: 1},
			{Source: models.SourceRealGM, Err: &client.FetchError{Kind: client.KindTimeout, Source: "realgm", Err: errors.New("deadline")}},
		},
	}
}

func TestSelect(t *testing.T) {
	candidates := sampleResults().Candidates

	c, err := Select(candidates, 1)
	require.NoError(t, err)
	assert.Equal(t, models.SourceFIBA, c.Source)

	_, err = Select(candidates, 2)
	assert.ErrorIs(t, err, ErrSelectionOutOfRange)

	_, err = Select(candidates, -1)
	assert.ErrorIs(t, err, ErrSelectionOutOfRange)

	_, err = Select(nil, 0)
	assert.ErrorIs(t, err, ErrNoMatches)
}

func TestNew(t *testing.T) {
	s := New(sampleResults())

	assert.NotEmpty(t, s.ID)
	assert.NotEqual(t, s.ID, New(sampleResults()).ID)
	assert.Equal(t, NoSelection, s.Selected)
	assert.False(t, s.Empty())

	require.Len(t, s.Sources, 3)
	assert.Equal(t, "timeout", s.Sources[2].Kind)
	assert.Empty(t, s.Sources[0].Error)

	_, ok := s.Selection()
	assert.False(t, ok)
}

func TestNew_EmptyResults(t *testing.T) {
	s := New(&search.Results{Request: search.Request{Query: "Unknown Team XYZ"}})
	assert.True(t, s.Empty())
	assert.NotNil(t, s.Candidates)

	_, err := s.Select(0)
	assert.ErrorIs(t, err, ErrNoMatches)
}

func TestState_SelectResetsStats(t *testing.T) {
	s := New(sampleResults())

	_, err := s.Select(0)
	require.NoError(t, err)
	s.Stats = &stats.Outcome{State: stats.StateLoaded}

	_, err = s.Select(0)
	require.NoError(t, err)
	assert.NotNil(t, s.Stats, "same selection keeps stats")

	c, err := s.Select(1)
	require.NoError(t, err)
	assert.Nil(t, s.Stats)

	got, ok := s.Selection()
	require.True(t, ok)
	assert.Equal(t, c, got)

	_, err = s.Select(5)
	assert.ErrorIs(t, err, ErrSelectionOutOfRange)
	assert.Equal(t, 1, s.Selected, "rejected selection leaves state untouched")
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	s := New(sampleResults())
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound, "expired sessions are not returned")
	assert.Equal(t, 1, store.Len())

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_Copies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	s := New(sampleResults())
	require.NoError(t, store.Save(ctx, s))

	_, err := s.Select(1)
	require.NoError(t, err)
	s.Candidates[0].Home = "changed"

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, NoSelection, got.Selected, "changes after Save do not reach the store")
	assert.Equal(t, "Partizan", got.Candidates[0].Home)

	_, err = got.Select(0)
	require.NoError(t, err)
	got.Stats = &stats.Outcome{State: stats.StateLoaded}

	again, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, NoSelection, again.Selected, "changes to a returned state stay local")
	assert.Nil(t, again.Stats)
}

func TestState_Clone(t *testing.T) {
	s := New(sampleResults())
	c := s.Clone()
	assert.Equal(t, s, c)

	c.Candidates[0].Score = "?"
	c.Sources[0].Count = 9
	assert.Equal(t, "82 - 77", s.Candidates[0].Score)
	assert.Equal(t, 1, s.Sources[0].Count)

	empty := New(&search.Results{})
	assert.Equal(t, []models.MatchCandidate{}, empty.Clone().Candidates)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	s := New(sampleResults())

	require.NoError(t, store.Save(ctx, s))
	require.NoError(t, store.Delete(ctx, s.ID))

	_, err := store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	store := NewRedisStore(rdb, 10*time.Minute)

	s := New(sampleResults())
	_, err := s.Select(0)
	require.NoError(t, err)
	s.Stats = &stats.Outcome{
		Source: models.SourceSofascore,
		State:  stats.StateLoaded,
		Rows:   []models.StatRow{{Team: "Partizan", Player: "Kevin Punter", Points: "21", Assists: "4", Rebounds: "3"}},
	}
	require.NoError(t, store.Save(ctx, s))

	assert.True(t, mr.Exists(redisKey(s.ID)))
	assert.Equal(t, 10*time.Minute, mr.TTL(redisKey(s.ID)))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, 0, got.Selected)
	assert.Equal(t, s.Candidates, got.Candidates)
	assert.Equal(t, "2024-03-10", got.Request.Day())
	require.NotNil(t, got.Stats)
	assert.Equal(t, s.Stats.Rows, got.Stats.Rows)

	mr.FastForward(11 * time.Minute)
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Delete(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	store := NewRedisStore(rdb, time.Minute)
	s := New(sampleResults())

	require.NoError(t, store.Save(ctx, s))
	require.NoError(t, store.Delete(ctx, s.ID))

	_, err := store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
