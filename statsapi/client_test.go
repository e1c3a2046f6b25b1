package statsapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nermal1/MLB-Pitcher-Market-Value/models"
)

// backend fakes the statistics service and counts requests per path
type backend struct {
	*httptest.Server
	requests atomic.Int64
	lastURL  atomic.Value
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"message":"MLB Pitcher API is Live","pitcher_count":812}`))
	})
	mux.HandleFunc("/pitchers", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"Name":"Tarik Skubal","Team":"DET","WAR":6.3,"ff_avg_speed":96.8},
			{"Name":"Skubal Jr","Team":"DET","WAR":0.1}
		],"total":2,"page":1,"pages":1}`))
	})
	mux.HandleFunc("/archetypes", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["Control Artist","Power Pitcher"]`))
	})
	mux.HandleFunc("/pitchers/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pitchers/Tarik Skubal/similar":
			w.Write([]byte(`[{"Name":"Chris Sale","distance":0.41}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Pitcher not found"}`))
		}
	})
	mux.HandleFunc("/graph-data", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"nodes":[{"id":"Tarik Skubal","lastName":"Skubal","mlbId":669373,"group":"Power Pitcher","val":6.3,"team":"DET","K%":0.31}],"links":[]}`))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	})

	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		b.lastURL.Store(r.URL.String())
		w.Header().Set("Content-Type", "application/json")
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.Close)
	return b
}

func TestListPitchers(t *testing.T) {
	b := newBackend(t)
	c := New(b.URL)

	q := models.DefaultPitcherQuery()
	q.Search = "skubal"
	q.Archetype = "Power Pitcher"
	page, err := c.ListPitchers(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Tarik Skubal", page.Data[0].Name())
	assert.Equal(t, 96.8, page.Data[0].FloatOr("ff_avg_speed", 0))

	last := b.lastURL.Load().(string)
	assert.Contains(t, last, "search=skubal")
	assert.Contains(t, last, "archetype=Power+Pitcher")
	assert.Contains(t, last, "sort_by=WAR")
	assert.Contains(t, last, "limit=50")
}

// TestResponsesAreCached tests that repeated reads do not reach the backend
func TestResponsesAreCached(t *testing.T) {
	b := newBackend(t)
	c := New(b.URL, WithCache(10, time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		a, err := c.Archetypes(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Control Artist", "Power Pitcher"}, a)
	}

	assert.Equal(t, int64(1), b.requests.Load())
	stats := c.CacheStats()
	assert.Equal(t, CacheStats{Size: 1, Hits: 2, Misses: 1}, stats)

	c.PurgeCache()
	_, err := c.Archetypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.requests.Load())
}

func TestCacheDisabled(t *testing.T) {
	b := newBackend(t)
	c := New(b.URL, WithCache(-1, 0))

	for i := 0; i < 2; i++ {
		_, err := c.Archetypes(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int64(2), b.requests.Load())
	assert.Equal(t, CacheStats{}, c.CacheStats())
}

func TestSimilar(t *testing.T) {
	b := newBackend(t)
	c := New(b.URL)

	similar, err := c.Similar(context.Background(), "Tarik Skubal")
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, "Chris Sale", similar[0].Name())

	_, err = c.Similar(context.Background(), "Nobody")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrPitcherNotFound))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestGraph(t *testing.T) {
	b := newBackend(t)
	c := New(b.URL)

	g, err := c.Graph(context.Background(), models.GraphQuery{
		Metrics:      []string{"K%", "Stuff+"},
		Neighbors:    3,
		TargetPlayer: "Tarik Skubal",
	})
	require.NoError(t, err)
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, 669373, g.Nodes[0].MLBID)
	assert.Equal(t, 0.31, g.Nodes[0].Metrics["K%"])
	assert.NotNil(t, g.Links)

	last := b.lastURL.Load().(string)
	assert.Contains(t, last, "metrics=K%25&metrics=Stuff%2B")
	assert.Contains(t, last, "neighbors=3")
	assert.Contains(t, last, "target_player=Tarik+Skubal")
}

// TestFindPitcher tests exact case-insensitive resolution of a search
func TestFindPitcher(t *testing.T) {
	b := newBackend(t)
	c := New(b.URL)
	ctx := context.Background()

	rec, err := c.FindPitcher(ctx, "tarik skubal")
	require.NoError(t, err)
	assert.Equal(t, "DET", rec.String("Team"))

	_, err = c.FindPitcher(ctx, "Skubal")
	assert.True(t, errors.Is(err, models.ErrPitcherNotFound), "partial matches do not resolve")

	_, err = c.FindPitcher(ctx, "  ")
	assert.True(t, errors.Is(err, models.ErrPitcherNotFound))
}

func TestPing(t *testing.T) {
	b := newBackend(t)
	require.NoError(t, New(b.URL+"/").Ping(context.Background()))

	b.Close()
	err := New(b.URL).Ping(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, models.ErrPitcherNotFound))
}

func TestServerError(t *testing.T) {
	b := newBackend(t)
	c := New(b.URL)

	var out interface{}
	err := c.get(context.Background(), "/broken", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API returned status 500: boom")
	assert.False(t, errors.Is(err, models.ErrPitcherNotFound))
	assert.Equal(t, 0, c.CacheStats().Size, "errors are not cached")
}

func TestContextCancelled(t *testing.T) {
	b := newBackend(t)
	c := New(b.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Archetypes(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewDefaults(t *testing.T) {
	c := New("")
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, requestTimeout, c.httpClient.Timeout)

	hc := &http.Client{Timeout: time.Second}
	assert.Same(t, hc, New("", WithHTTPClient(hc)).httpClient)
}
