package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/grocerscan/tesco_scraper/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_SendsIdentifyingHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		fmt.Fprint(w, `{"data":{}}`)
	}))
	defer server.Close()

	client := NewAPIClient(config.GetDefaultConfig())
	client.baseURL = server.URL
	desc := NewProductDetailRequest(ProductContext{ProductID: "254656543", Region: "UK"})
	_, err := client.Do(context.Background(), desc, "UK", ProductPayload(desc.Product))
	require.NoError(t, err)

	assert.Equal(t, "ukLiveGroceriesApi", got.Get("x-apikey"))
	assert.Equal(t, "ukLiveWeb", got.Get("x-application"))
	assert.Equal(t, "gi", got.Get("x-request-origin"))
	assert.Equal(t, "UK", got.Get("region"))
	assert.Equal(t, "https://www.tesco.com", got.Get("origin"))
	assert.Contains(t, got.Get("user-agent"), "Chrome/120")
}

func TestAPIClient_ErrorsFieldFailsEvenOn200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":null,"errors":[{"message":"Invalid query","code":"E400"}]}`)
	}))
	defer server.Close()

	client := NewAPIClient(config.GetDefaultConfig())
	client.baseURL = server.URL
	desc := NewProductDetailRequest(ProductContext{ProductID: "254656543", Region: "UK"})
	_, err := client.Do(context.Background(), desc, "UK", ProductPayload(desc.Product))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid query")
}

func TestAPIClient_RetriesTransientStatus(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"data":{}}`)
	}))
	defer server.Close()

	client := NewAPIClient(config.GetDefaultConfig())
	client.baseURL = server.URL
	desc := NewProductDetailRequest(ProductContext{ProductID: "254656543", Region: "UK"})
	_, err := client.Do(context.Background(), desc, "UK", ProductPayload(desc.Product))
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestAPIClient_DoesNotRetryClientErrors(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewAPIClient(config.GetDefaultConfig())
	client.baseURL = server.URL
	desc := NewProductDetailRequest(ProductContext{ProductID: "254656543", Region: "UK"})
	_, err := client.Do(context.Background(), desc, "UK", ProductPayload(desc.Product))
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Contains(t, err.Error(), "bad response status")
}
