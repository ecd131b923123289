package discovery_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/event-ticketing/internal/apperrors"
	"github.com/magabrotheeeer/event-ticketing/internal/discovery"
)

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events.json", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("apikey"))
		assert.Equal(t, "jazz", r.URL.Query().Get("keyword"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"_embedded":{"events":[]}}`))
	}))
	defer srv.Close()

	client := discovery.NewClient(srv.URL, "secret")
	raw, err := client.Search(context.Background(), map[string][]string{"keyword": {"jazz"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"_embedded":{"events":[]}}`, string(raw))
}

func TestClient_Details_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/abc.json", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := discovery.NewClient(srv.URL, "secret")
	_, err := client.Details(context.Background(), "abc")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestClient_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := discovery.NewClient(srv.URL, "secret")
	_, err := client.Search(context.Background(), nil)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}
