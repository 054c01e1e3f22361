package fiba

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

const searchPage = `<html><body>
<ul>
	<li><a href="/euroleague/2024/game/1003/Partizan-Crvena-Zvezda">Partizan - Crvena Zvezda</a></li>
	<li><a href="/euroleague/2023/game/900/Partizan-Mega">Partizan - Mega</a></li>
	<li><a href="/news/2024/partizan-wins">Partizan - news</a></li>
	<li><a href="/game/77">Partizan vs Zvezda 2024</a></li>
	<li><a href="/game/78">Baskonia-Vitoria - Partizan 2024</a></li>
	<li><a href="/euroleague/2024/game/1004">- Partizan</a></li>
</ul>
</body></html>`

func newRequest(t *testing.T) search.Request {
	t.Helper()
	req, err := search.NewRequest("Partizan", "2024-03-10", "", time.Now())
	require.NoError(t, err)
	return req
}

func TestSearch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(searchPage))
	}))
	defer srv.Close()

	candidates, err := New(srv.URL, client.Options{}).Search(context.Background(), newRequest(t))
	require.NoError(t, err)
	assert.Equal(t, "Partizan", gotQuery)

	require.Len(t, candidates, 2)
	assert.Equal(t, models.MatchCandidate{
		Source:    models.SourceFIBA,
		Home:      "Partizan",
		Away:      "Crvena Zvezda",
		Score:     models.UnknownScore,
		MatchID:   "/euroleague/2024/game/1003/Partizan-Crvena-Zvezda",
		DetailURL: srv.URL + "/euroleague/2024/game/1003/Partizan-Crvena-Zvezda",
	}, candidates[0])

	// split on the first dash only
	assert.Equal(t, "Baskonia", candidates[1].Home)
	assert.Equal(t, "Vitoria - Partizan 2024", candidates[1].Away)
}

func TestSearch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	candidates, err := New(srv.URL, client.Options{}).Search(context.Background(), newRequest(t))
	assert.Empty(t, candidates)
	assert.Equal(t, client.KindStatus, client.KindOf(err))
}

func TestSearch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	candidates, err := New(srv.URL, client.Options{Timeout: 20 * time.Millisecond}).Search(context.Background(), newRequest(t))
	assert.Empty(t, candidates)
	assert.Equal(t, client.KindTimeout, client.KindOf(err))
}
