package eurobasket

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

func newRequest(t *testing.T, query string) search.Request {
	t.Helper()
	req, err := search.NewRequest(query, "2024-03-10", "", time.Now())
	require.NoError(t, err)
	return req
}

func newServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSearch_Feed(t *testing.T) {
	srv := newServer(t, map[string]string{
		"/feed/games/2024-03-10.json": `{"games":[
			{"id":5501,"home":{"name":"Falco-Vulcano","score":91},"away":{"name":"Szolnoki Olajbányász","score":84},"competition":"NB I/A"},
			{"id":5502,"home":{"name":"Alba Fehérvár"},"away":{"name":"Kecskemét"}},
			{"id":5503,"home":{"name":"Falco"}}
		]}`,
	})

	candidates, err := New(srv.URL, client.Options{}).Search(context.Background(), newRequest(t, "szolnoki olajbanyasz"))
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	assert.Equal(t, models.MatchCandidate{
		Source:      models.SourceEurobasket,
		Home:        "Falco-Vulcano",
		Away:        "Szolnoki Olajbányász",
		Score:       "91 - 84",
		MatchID:     "5501",
		DetailURL:   srv.URL + "/game/5501",
		Competition: "NB I/A",
	}, candidates[0])
}

func TestSearch_FeedMissingFallsBackToListing(t *testing.T) {
	srv := newServer(t, map[string]string{
		"/games/2024-03-10": `<table>
			<tr><td>18:00</td><td><a href="/game/7001/falco-szolnok">Falco – Szolnok</a></td></tr>
			<tr><td>18:00</td><td><a href="/game.asp?id=7001">Falco – Szolnok</a></td></tr>
			<tr><td>Paks — Falco</td><td><a href="/Basketball/game.asp?Cntry=HUN&id=7002">Box</a></td></tr>
			<tr><td>18:00</td><td>Alba - Falco</td><td><a href="/game/7004">Box score</a></td></tr>
			<tr><td><a href="/team/falco">Falco</a></td></tr>
			<tr><td><a href="/game/7003">Alba - Kecskemét</a></td></tr>
		</table>`,
	})

	candidates, err := New(srv.URL, client.Options{}).Search(context.Background(), newRequest(t, "FALCO"))
	require.NoError(t, err)
	require.Len(t, candidates, 3, "duplicate pairs collapse and the query filters the rest")

	assert.Equal(t, "Falco", candidates[0].Home)
	assert.Equal(t, "Szolnok", candidates[0].Away)
	assert.Equal(t, "7001", candidates[0].MatchID)
	assert.Equal(t, srv.URL+"/game/7001/falco-szolnok", candidates[0].DetailURL)
	assert.Equal(t, models.UnknownScore, candidates[0].Score)

	assert.Equal(t, "Paks", candidates[1].Home)
	assert.Equal(t, "Falco", candidates[1].Away, "the link text stays out of the team names")
	assert.Equal(t, "7002", candidates[1].MatchID)

	assert.Equal(t, "Alba", candidates[2].Home, "the kick-off cell stays out of the team names")
	assert.Equal(t, "Falco", candidates[2].Away)
	assert.Equal(t, "7004", candidates[2].MatchID)
}

func TestSearch_BothUnavailable(t *testing.T) {
	srv := newServer(t, map[string]string{})

	candidates, err := New(srv.URL, client.Options{}).Search(context.Background(), newRequest(t, "Falco"))
	assert.Empty(t, candidates)
	assert.Equal(t, client.KindStatus, client.KindOf(err))
}

func TestGameID(t *testing.T) {
	assert.Equal(t, "123", GameID("/game/123/partizan-zvezda"))
	assert.Equal(t, "456", GameID("/Basketball/game.asp?Cntry=SRB&id=456"))
	assert.Equal(t, "", GameID("/team/partizan"))
}

func TestBoxScore_Feed(t *testing.T) {
	srv := newServer(t, map[string]string{
		"/feed/game/5501.json": `{"home":{"name":"Falco","players":[{"name":"Perl Zoltán","pts":18,"ast":3,"reb":5}]},
			"away":{"name":"Szolnok","players":[{"player":"Váradi Benedek","points":"12"},{"pts":2}]}}`,
	})

	rows, err := New(srv.URL, client.Options{}).BoxScore(context.Background(), models.MatchCandidate{MatchID: "5501"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.StatRow{Team: "Falco", Player: "Perl Zoltán", Points: "18", Assists: "3", Rebounds: "5"}, rows[0])
	assert.Equal(t, models.StatRow{Team: "Szolnok", Player: "Váradi Benedek", Points: "12", Assists: "?", Rebounds: "?"}, rows[1])
}

func TestMatchPageURL(t *testing.T) {
	p := New("http://example.test", client.Options{})
	assert.Equal(t, "http://example.test/x", p.MatchPageURL(models.MatchCandidate{DetailURL: "http://example.test/x", MatchID: "1"}))
	assert.Equal(t, "http://example.test/game/9", p.MatchPageURL(models.MatchCandidate{MatchID: "9"}))
	assert.Equal(t, "", p.MatchPageURL(models.MatchCandidate{}))
}
