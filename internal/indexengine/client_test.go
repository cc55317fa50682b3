package indexengine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchSucceedsOnFirstAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_ = json.NewEncoder(w).Encode(searchResponseBody{
			Hits:      []RawHit{{DocumentID: "doc-1", Score: 1.5}},
			TotalHits: 1,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	res, err := c.Search(context.Background(), "products", "ข้าว", nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalHits)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "doc-1", res.Hits[0].DocumentID)
}

func TestSearchRetriesOn5xxThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(searchResponseBody{TotalHits: 0})
	}))
	defer srv.Close()

	c := New(srv.URL, "", WithMaxRetries(3))
	_, err := c.Search(context.Background(), "products", "ข้าว", nil, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSearchDoesNotRetryOn4xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, "", WithMaxRetries(3))
	_, err := c.Search(context.Background(), "products", "ข้าว", nil, 5*time.Second)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFakeClientReturnsCannedErrorsAndRecordsCalls(t *testing.T) {
	f := NewFakeClient()
	f.Errors["bad"] = assert.AnError
	f.Responses["good"] = EngineSearchResult{TotalHits: 2}

	_, err := f.Search(context.Background(), "idx", "bad", nil, time.Second)
	assert.Error(t, err)
	res, err := f.Search(context.Background(), "idx", "good", nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalHits)
	assert.Equal(t, []string{"bad", "good"}, f.Calls)
}
