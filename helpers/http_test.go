package helpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testClient(t *testing.T) *http.Client {
	t.Helper()
	client, err := NewFetchClient(FetchConfig{Timeout: 5 * time.Second})
	assert.NoError(t, err)
	return client
}

func TestFetchPage(t *testing.T) {
	// Create a test server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check that headers are set
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("Accept-Language"))
		assert.NotEmpty(t, r.Header.Get("referer"))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>Hello, World!</body></html>"))
	}))
	defer server.Close()

	body, err := FetchPage(context.Background(), testClient(t), server.URL, nil)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "Hello, World!")
}

func TestFetchPageCustomHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TestAgent/1.0", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	_, err := FetchPage(context.Background(), testClient(t), server.URL, map[string]string{
		"User-Agent": "TestAgent/1.0",
	})
	assert.NoError(t, err)
}

func TestFetchPageNonUTF8(t *testing.T) {
	// Create a test server that returns a non-UTF8 response
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>Hello, World!</body></html>"))
	}))
	defer server.Close()

	body, err := FetchPage(context.Background(), testClient(t), server.URL, nil)
	assert.NoError(t, err)
	assert.Contains(t, string(body), "Hello, World!")
}

func TestFetchPageError(t *testing.T) {
	// Create a test server that returns an error
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := FetchPage(context.Background(), testClient(t), server.URL, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 500")

	// Test with rate limiting
	serverRateLimited := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer serverRateLimited.Close()

	_, err = FetchPage(context.Background(), testClient(t), serverRateLimited.URL, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestFetchPageTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewFetchClient(FetchConfig{Timeout: 50 * time.Millisecond})
	assert.NoError(t, err)

	_, err = FetchPage(context.Background(), client, server.URL, nil)
	assert.Error(t, err)
}

func TestFetchAllPreservesOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Slow down the first page so completion order differs from input order
		if strings.Contains(r.URL.RawQuery, "o=1") {
			time.Sleep(50 * time.Millisecond)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("page " + r.URL.Query().Get("o")))
	}))
	defer server.Close()

	urls := []string{
		server.URL + "/?o=1",
		server.URL + "/?o=2",
		server.URL + "/?o=3",
	}

	bodies, err := FetchAll(context.Background(), testClient(t), urls, nil)
	assert.NoError(t, err)
	assert.Len(t, bodies, 3)
	assert.Equal(t, "page 1", string(bodies[0]))
	assert.Equal(t, "page 2", string(bodies[1]))
	assert.Equal(t, "page 3", string(bodies[2]))
}

func TestFetchAllFailFast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("o") == "2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	urls := []string{
		server.URL + "/?o=1",
		server.URL + "/?o=2",
	}

	_, err := FetchAll(context.Background(), testClient(t), urls, nil)
	assert.Error(t, err)
	// The failing URL must be named in the error
	assert.Contains(t, err.Error(), "o=2")
}

func TestFetchPageInvalidURL(t *testing.T) {
	_, err := FetchPage(context.Background(), testClient(t), "http://invalid.url.that.does.not.exist", nil)
	assert.Error(t, err)
}

func TestNewFetchClientInvalidProxy(t *testing.T) {
	_, err := NewFetchClient(FetchConfig{Timeout: time.Second, ProxyURL: "://bad"})
	assert.Error(t, err)
}
