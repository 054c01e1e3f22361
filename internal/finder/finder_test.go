package finder

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardonyia/basket/internal/client"
	"github.com/gardonyia/basket/internal/models"
	"github.com/gardonyia/basket/internal/present"
	"github.com/gardonyia/basket/internal/providers/eurobasket"
	"github.com/gardonyia/basket/internal/providers/fiba"
	"github.com/gardonyia/basket/internal/providers/realgm"
	"github.com/gardonyia/basket/internal/providers/sofascore"
	"github.com/gardonyia/basket/internal/search"
	"github.com/gardonyia/basket/internal/session"
	"github.com/gardonyia/basket/internal/stats"
)

// upstream is a fake source site that records the paths it served
type upstream struct {
	*httptest.Server
	mu     sync.Mutex
	routes map[string]string
	hits   []string
}

func newUpstream(t *testing.T, routes map[string]string) *upstream {
	t.Helper()
	u := &upstream{routes: routes}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.hits = append(u.hits, r.URL.Path)
		u.mu.Unlock()

		body, ok := u.routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(u.Close)
	return u
}

func (u *upstream) served() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.hits...)
}

func newService(providers ...search.Provider) *Service {
	agg := search.NewAggregator(providers, search.AggregatorConfig{Parallel: true})
	fetcher := stats.NewFetcher(providers, client.Options{Timeout: time.Second})
	return New(agg, fetcher, session.NewMemoryStore(time.Minute))
}

func TestScenario_PartizanStructuredStatsFirst(t *testing.T) {
	sofa := newUpstream(t, map[string]string{
		"/api/v1/team-search/Partizan": `{"teams":[{"id":3452}]}`,
		"/api/v1/team/3452/events/date/2024-03-10": `{"events":[{"id":11830442,
			"homeTeam":{"name":"Partizan"},"awayTeam":{"name":"Crvena Zvezda"},
			"homeScore":{"current":82},"awayScore":{"current":77}}]}`,
		"/api/v1/event/11830442/statistics": `{"statistics":[{"team":{"name":"Partizan"},
			"players":[{"player":{"name":"Kevin Punter"},"points":21,"assists":4,"rebounds":3}]}]}`,
	})
	fibaSite := newUpstream(t, map[string]string{"/search": `<html><body>nothing</body></html>`})

	svc := newService(
		sofascore.New(sofa.URL, client.Options{}),
		fiba.New(fibaSite.URL, client.Options{}),
	)
	ctx := context.Background()

	state, err := svc.Search(ctx, "Partizan", "2024-03-10", "")
	require.NoError(t, err)
	require.Len(t, state.Candidates, 1)
	assert.Equal(t, "Partizan - Crvena Zvezda (Sofascore)", state.Candidates[0].Label())

	state, err = svc.SelectByID(ctx, state.ID, 0)
	require.NoError(t, err)

	assert.Equal(t, "82 - 77", present.Summarize(state.Candidates[0]).Score)
	require.NotNil(t, state.Stats)
	assert.Equal(t, stats.StateLoaded, state.Stats.State)
	assert.Equal(t, stats.StageStructured, state.Stats.Attempts[0].Stage)
	assert.Contains(t, sofa.served(), "/api/v1/event/11830442/statistics")

	stored, err := svc.Session(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Selected)
}

func TestScenario_NoMatchesIsDistinctFromStatsUnavailable(t *testing.T) {
	empty := newUpstream(t, map[string]string{
		"/api/v1/team-search/Unknown Team XYZ": `{"teams":[]}`,
		"/search": `<html><body><a href="/news">Unknown</a></body></html>`,
	})

	svc := newService(
		sofascore.New(empty.URL, client.Options{}),
		fiba.New(empty.URL, client.Options{}),
		realgm.New(empty.URL, client.Options{}),
		eurobasket.New(empty.URL, client.Options{}),
	)
	ctx := context.Background()

	state, err := svc.Search(ctx, "Unknown Team XYZ", "2024-03-10", "")
	require.NoError(t, err)
	assert.True(t, state.Empty())

	_, err = svc.Select(ctx, state, 0)
	assert.ErrorIs(t, err, session.ErrNoMatches)
	assert.Nil(t, state.Stats)

	var buf bytes.Buffer
	require.NoError(t, present.NewPrinter(&buf, present.FormatTable).Session(state))
	assert.Contains(t, buf.String(), present.MsgNoMatches)
	assert.NotContains(t, buf.String(), present.MsgStatsUnavailable)
}

func TestScenario_SummaryWithStatsUnavailable(t *testing.T) {
	site := newUpstream(t, map[string]string{
		"/feed/games/2024-03-10.json": `{"games":[{"id":7001,"home":{"name":"Falco"},"away":{"name":"Szolnok"}}]}`,
		"/feed/game/7001.json":        `{"teams":[]}`,
		"/game/7001":                  `<html><body><p>Box score coming soon</p></body></html>`,
	})

	svc := newService(eurobasket.New(site.URL, client.Options{}))
	ctx := context.Background()

	state, err := svc.Search(ctx, "falco", "2024-03-10", "")
	require.NoError(t, err)
	require.Len(t, state.Candidates, 1)

	state, err = svc.Select(ctx, state, 0)
	require.NoError(t, err)

	require.NotNil(t, state.Stats)
	assert.Equal(t, stats.StateUnavailable, state.Stats.State)
	assert.Equal(t, []stats.State{
		stats.StateNotAttempted, stats.StateTryingStructured, stats.StateTryingHTMLFallback, stats.StateUnavailable,
	}, state.Stats.Trace)

	var buf bytes.Buffer
	require.NoError(t, present.NewPrinter(&buf, present.FormatPlain).Session(state))
	assert.Contains(t, buf.String(), "Falco – Szolnok")
	assert.Contains(t, buf.String(), "Score: ? - ?")
	assert.Contains(t, buf.String(), present.MsgStatsUnavailable)
}

func TestSearch_ValidationError(t *testing.T) {
	svc := newService()
	_, err := svc.Search(context.Background(), "  ", "", "")
	assert.ErrorIs(t, err, search.ErrEmptyQuery)
}

func TestSelect_OutOfRange(t *testing.T) {
	site := newUpstream(t, map[string]string{
		"/feed/games/2024-03-10.json": `{"games":[{"id":1,"home":{"name":"Falco"},"away":{"name":"Szolnok"}}]}`,
	})
	svc := newService(eurobasket.New(site.URL, client.Options{}))

	state, err := svc.Search(context.Background(), "falco", "2024-03-10", "")
	require.NoError(t, err)

	_, err = svc.Select(context.Background(), state, 3)
	assert.ErrorIs(t, err, session.ErrSelectionOutOfRange)
}

func TestSelect_LeavesCallerStateAlone(t *testing.T) {
	site := newUpstream(t, map[string]string{
		"/feed/games/2024-03-10.json": `{"games":[{"id":1,"home":{"name":"Falco"},"away":{"name":"Szolnok"}}]}`,
	})
	svc := newService(eurobasket.New(site.URL, client.Options{}))
	ctx := context.Background()

	state, err := svc.Search(ctx, "falco", "2024-03-10", "")
	require.NoError(t, err)

	selected, err := svc.Select(ctx, state, 0)
	require.NoError(t, err)
	assert.NotSame(t, state, selected)
	assert.Equal(t, 0, selected.Selected)
	require.NotNil(t, selected.Stats)

	assert.Equal(t, session.NoSelection, state.Selected)
	assert.Nil(t, state.Stats)

	stored, err := svc.Session(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Selected)
}

func TestSessionUnknownID(t *testing.T) {
	_, err := newService().SelectByID(context.Background(), "nope", 0)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestBoxScore(t *testing.T) {
	site := newUpstream(t, map[string]string{
		"/api/v1/event/42/statistics": `{"statistics":[{"team":{"name":"Bayern"},"players":[{"player":{"name":"Carsen Edwards"},"points":19}]}]}`,
	})
	svc := newService(sofascore.New(site.URL, client.Options{}))

	out, err := svc.BoxScore(context.Background(), models.SourceSofascore, "42", "")
	require.NoError(t, err)
	assert.True(t, out.Loaded())

	_, err = svc.BoxScore(context.Background(), models.SourceFIBA, "1", "")
	assert.Error(t, err)
	assert.Equal(t, []models.Source{models.SourceSofascore}, svc.Sources())
}
