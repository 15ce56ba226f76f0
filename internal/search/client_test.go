package search

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapgpt/mapgpt-go/internal/config"
	domerrors "github.com/mapgpt/mapgpt-go/internal/errors"
)

func newTestClient(endpoint, key string) *Client {
	return NewClient(config.SearchConfig{
		APIKey:   key,
		Endpoint: endpoint,
		Country:  "ng",
		Language: "en",
		Timeout:  5 * time.Second,
	})
}

func TestSearch_Organic(t *testing.T) {
	var got requestBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"organic":[
			{"title":"MAPOLY resumes","link":"https://a.example","snippet":"Lectures resume","date":"2 days ago"},
			{"title":"Fees","link":"https://b.example"}
		]}`))
	}))
	defer srv.Close()

	results, err := newTestClient(srv.URL, "test-key").Search(context.Background(), Query{Q: "mapoly resumption"})

	require.NoError(t, err)
	assert.Equal(t, requestBody{Q: "mapoly resumption", GL: "ng", HL: "en"}, got)
	require.Len(t, results, 2)
	assert.Equal(t, Result{Title: "MAPOLY resumes", Link: "https://a.example", Snippet: "Lectures resume", Date: "2 days ago"}, results[0])
	assert.Empty(t, results[1].Date)
}

func TestSearch_NewsPrefersNewsList(t *testing.T) {
	var got requestBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"organic":[{"title":"web"}],"news":[{"title":"news","date":"1 hour ago"}]}`))
	}))
	defer srv.Close()

	results, err := newTestClient(srv.URL, "k").Search(context.Background(), Query{Q: "latest", Type: TypeNews, Num: 10})

	require.NoError(t, err)
	assert.Equal(t, "news", got.Type)
	assert.Equal(t, 10, got.Num)
	require.Len(t, results, 1)
	assert.Equal(t, "news", results[0].Title)
}

func TestSearch_FallsBackToOtherList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"news":[{"title":"only news"}]}`))
	}))
	defer srv.Close()

	results, err := newTestClient(srv.URL, "k").Search(context.Background(), Query{Q: "x"})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "only news", results[0].Title)
}

func TestSearch_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	results, err := newTestClient(srv.URL, "k").Search(context.Background(), Query{Q: "x"})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_MissingKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	_, err := newTestClient(srv.URL, "").Search(context.Background(), Query{Q: "x"})

	var cfgErr *domerrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, config.EnvSerperAPIKey, cfgErr.Key)
	assert.False(t, called, "no request may be sent without a key")
}

func TestSearch_UpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Unauthorized."}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, "bad").Search(context.Background(), Query{Q: "x"})

	var upstream *domerrors.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusForbidden, upstream.StatusCode)
	assert.Contains(t, err.Error(), "status 403")
	assert.Contains(t, err.Error(), "Unauthorized.")
}

func TestSearch_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, "k").Search(context.Background(), Query{Q: "x"})

	assert.ErrorIs(t, err, domerrors.ErrUnexpectedResponse)
}

func TestSearch_OversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"organic":[{"title":"`))
		_, _ = w.Write(bytes.Repeat([]byte("a"), maxResponseBody))
		_, _ = w.Write([]byte(`"}]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, "k").Search(context.Background(), Query{Q: "x"})

	assert.ErrorIs(t, err, domerrors.ErrUnexpectedResponse)
}

func TestSearch_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := newTestClient(srv.URL, "k").Search(context.Background(), Query{Q: "x"})

	assert.True(t, domerrors.IsUpstream(err))
}
