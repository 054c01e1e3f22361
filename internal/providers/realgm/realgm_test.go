package realgm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardonyia/basket/internal/client"
	"github.com/gardonyia/basket/internal/models"
	"github.com/gardonyia/basket/internal/search"
)

func newRequest(t *testing.T) search.Request {
	t.Helper()
	req, err := search.NewRequest("Bayern", "2024-03-10", "", time.Now())
	require.NoError(t, err)
	return req
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		_, _ = w.Write([]byte(`<table>
			<tr><td><a href="/international/boxscore/2024-03-10/Bayern-at-Alba/41">Bayern 88 - 80 Alba Berlin</a></td></tr>
			<tr><td><a href="/team/Bayern">Bayern Munich</a></td></tr>
			<tr><td><a href="/x">Bayern - Alba</a></td></tr>
			<tr><td><a href="/y">Ulm-Neu 70 - 60 Bayern</a></td></tr>
			<tr><td><a>Oldenburg 1 - 2 Bayern</a></td></tr>
		</table>`))
	}))
	defer srv.Close()

	candidates, err := New(srv.URL, client.Options{}).Search(context.Background(), newRequest(t))
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, models.MatchCandidate{
		Source:    models.SourceRealGM,
		Home:      "Bayern 88",
		Away:      "80 Alba Berlin",
		Score:     models.UnknownScore,
		MatchID:   "/international/boxscore/2024-03-10/Bayern-at-Alba/41",
		DetailURL: srv.URL + "/international/boxscore/2024-03-10/Bayern-at-Alba/41",
	}, candidates[0])

	assert.Equal(t, "Oldenburg 1", candidates[1].Home)
	assert.Empty(t, candidates[1].MatchID)
	assert.Empty(t, candidates[1].DetailURL)
}

func TestSearch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	candidates, err := New(srv.URL, client.Options{}).Search(context.Background(), newRequest(t))
	assert.Empty(t, candidates)
	assert.Equal(t, client.KindTransport, client.KindOf(err))
}
