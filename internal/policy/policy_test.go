package policy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPolicies(t *testing.T) {
	raw := []RawPolicy{
		{Title: "Refund policy", Body: "30 day refunds."},
		{Title: "Shipping Policy", Body: "Ships worldwide."},
		{Title: "Privacy Policy", Body: "We respect privacy."},
		{Title: "Terms of Service", Body: "Standard terms."},
		{Title: "Unrelated Document", Body: "Ignored."},
	}

	p := MapPolicies(raw, "help@shop.example.com")

	assert.Equal(t, "30 day refunds.", p.Returns)
	assert.Equal(t, "Ships worldwide.", p.Shipping)
	assert.Equal(t, "We respect privacy.", p.Privacy)
	assert.Equal(t, "Standard terms.", p.TermsOfService)
	assert.Equal(t, "help@shop.example.com", p.ContactEmail)
}

func TestMapPolicies_FirstMatchWins(t *testing.T) {
	raw := []RawPolicy{
		{Title: "Return policy", Body: "First returns text."},
		{Title: "Refund policy", Body: "Second returns text."},
	}

	p := MapPolicies(raw, "")
	assert.Equal(t, "First returns text.", p.Returns)
}

func TestMapPolicies_CaseInsensitiveTitles(t *testing.T) {
	raw := []RawPolicy{
		{Title: "SHIPPING & DELIVERY", Body: "Uppercase title."},
	}

	p := MapPolicies(raw, "")
	assert.Equal(t, "Uppercase title.", p.Shipping)
	assert.Empty(t, p.Returns)
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"policies": [
				{"title": "Shipping policy", "body": "Two day shipping."},
				{"title": "Refund policy", "body": "Easy returns."}
			],
			"contactEmail": "support@shop.example.com"
		}`))
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(FetcherConfig{EndpointTemplate: srv.URL + "/%s/policies.json"})

	raw, contact, err := fetcher.Fetch(context.Background(), "shop.example.com")
	require.NoError(t, err)
	require.Len(t, raw, 2)
	assert.Equal(t, "Shipping policy", raw[0].Title)
	assert.Equal(t, "support@shop.example.com", contact)
}

func TestHTTPFetcher_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(FetcherConfig{EndpointTemplate: srv.URL + "/%s"})

	_, _, err := fetcher.Fetch(context.Background(), "shop.example.com")
	assert.Error(t, err)
}

func TestHTTPFetcher_MalformedBodyIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(FetcherConfig{EndpointTemplate: srv.URL + "/%s"})

	_, _, err := fetcher.Fetch(context.Background(), "shop.example.com")
	assert.Error(t, err)
}
