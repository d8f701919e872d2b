package googlebooks

import (
	"context"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/mylibrary/internal/cache"
	liberrors "github.com/lepinkainen/mylibrary/internal/errors"
)

const kokoroResponse = `{
	"kind": "books#volumes",
	"totalItems": 1,
	"items": [{
		"id": "Xb8NAQAAMAAJ",
		"volumeInfo": {
			"title": "こころ",
			"subtitle": "改版",
			"authors": ["夏目漱石"],
			"publishedDate": "2004-03",
			"description": "He said \"hi\".",
			"industryIdentifiers": [
				{"type": "ISBN_10", "identifier": "4101010013"},
				{"type": "ISBN_13", "identifier": "9784101010014"}
			],
			"imageLinks": {
				"smallThumbnail": "http://books.google.com/books/content?id=Xb8NAQAAMAAJ&zoom=5",
				"thumbnail": "http://books.google.com/books/content?id=Xb8NAQAAMAAJ&zoom=1"
			},
			"pageCount": 326
		}
	}]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := newIPv4TestServer(t, handler)
	opts = append([]Option{WithBaseURL(server.URL), WithHTTPClient(server.Client())}, opts...)
	return New(opts...)
}

func TestLookupSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/volumes", r.URL.Path)
		require.Equal(t, "9784101010014", r.URL.Query().Get("q"))
		require.Equal(t, "1", r.URL.Query().Get("maxResults"))
		_, _ = w.Write([]byte(kokoroResponse))
	})

	b, err := client.Lookup(context.Background(), "9784101010014")
	require.NoError(t, err)

	assert.Equal(t, "こころ", b.Title)
	assert.Equal(t, "改版", b.Subtitle)
	assert.Equal(t, "夏目漱石", b.Authors)
	assert.Equal(t, "2004-03", b.PublishedDate)
	assert.Equal(t, "326", b.PageCount)
	assert.Equal(t, "9784101010014", b.ISBN13)
	assert.Equal(t, `He said "hi".`, b.Description)
	assert.Equal(t, "https://books.google.com/books/content?id=Xb8NAQAAMAAJ&zoom=1", b.ImageURLString())
	assert.NotEmpty(t, b.ID)
}

func TestLookupFindsISBN13AtAnyPosition(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"id":"v","volumeInfo":{
			"title":"T","publishedDate":"2020","pageCount":10,
			"industryIdentifiers":[
				{"type":"ISBN_13","identifier":"9780000000001"},
				{"type":"OTHER","identifier":"9784101010014"},
				{"type":"ISBN_13","identifier":"9784101010014"}
			]}}]}`))
	})

	b, err := client.Lookup(context.Background(), "9784101010014")
	require.NoError(t, err)
	assert.Equal(t, "9784101010014", b.ISBN13)
	assert.Empty(t, b.Authors)
	assert.Empty(t, b.Subtitle)
	assert.Nil(t, b.ImageURL)
}

func TestLookupMismatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(kokoroResponse))
	})

	b, err := client.Lookup(context.Background(), "9784101010021")
	require.Error(t, err)
	assert.Nil(t, b)
	assert.True(t, liberrors.IsMismatchError(err))
	assert.True(t, liberrors.IsRecoverable(err))
	assert.Contains(t, err.Error(), "9784101010014")
}

func TestLookupMismatchWhenOnlyISBN10Matches(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"id":"v","volumeInfo":{
			"title":"T","publishedDate":"2020","pageCount":10,
			"industryIdentifiers":[{"type":"ISBN_10","identifier":"9784101010014"}]}}]}`))
	})

	_, err := client.Lookup(context.Background(), "9784101010014")
	assert.True(t, liberrors.IsMismatchError(err))
}

func TestLookupNotFound(t *testing.T) {
	tests := map[string]string{
		"items absent": `{"kind":"books#volumes","totalItems":0}`,
		"items empty":  `{"totalItems":0,"items":[]}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			_, err := client.Lookup(context.Background(), "9784101010014")
			require.Error(t, err)
			assert.True(t, liberrors.IsNotFoundError(err))
		})
	}
}

func TestLookupTransportErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{}`, message: "unexpected status 500"},
		{name: "malformed json", status: http.StatusOK, body: `{"items": [`, message: "decoding"},
		{name: "missing title", status: http.StatusOK, body: `{"items":[{"id":"v","volumeInfo":{"publishedDate":"2020","pageCount":1}}]}`, message: "required field title"},
		{name: "missing page count", status: http.StatusOK, body: `{"items":[{"id":"v","volumeInfo":{"title":"T","publishedDate":"2020"}}]}`, message: "required field pageCount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Lookup(context.Background(), "9784101010014")
			require.Error(t, err)
			assert.True(t, liberrors.IsTransportError(err), "got %T", err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLookupRateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Lookup(context.Background(), "9784101010014")
	require.Error(t, err)
	assert.True(t, liberrors.IsTransportError(err))
	assert.True(t, liberrors.IsRateLimitError(err))
	assert.Contains(t, err.Error(), "retry after 30s")
}

func TestLookupNetworkFailure(t *testing.T) {
	server := newIPv4TestServer(t, http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client := New(WithBaseURL(baseURL))
	_, err := client.Lookup(context.Background(), "9784101010014")
	require.Error(t, err)
	assert.True(t, liberrors.IsTransportError(err))
}

func TestLookupConfigurationError(t *testing.T) {
	for _, base := range []string{"://missing-scheme", "http://%zz", "relative/path"} {
		t.Run(base, func(t *testing.T) {
			client := New(WithBaseURL(base))

			_, err := client.Lookup(context.Background(), "9784101010014")
			require.Error(t, err)
			assert.True(t, liberrors.IsConfigurationError(err))
			assert.False(t, liberrors.IsRecoverable(err))
		})
	}
}

func TestLookupSendsAPIKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "secret", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(kokoroResponse))
	}, WithAPIKey("secret"))

	_, err := client.Lookup(context.Background(), "9784101010014")
	require.NoError(t, err)
}

func TestLookupUsesCacheButStillVerifies(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	db, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(kokoroResponse))
	}, WithCache(db))

	first, err := client.Lookup(context.Background(), "9784101010014")
	require.NoError(t, err)
	second, err := client.Lookup(context.Background(), "9784101010014")
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, first.Title, second.Title)
	assert.NotEqual(t, first.ID, second.ID, "each lookup builds a fresh record")

	// a cached envelope for one ISBN is never served for another
	_, err = client.Lookup(context.Background(), "9784101010021")
	assert.True(t, liberrors.IsMismatchError(err))
	assert.Equal(t, int32(2), hits.Load())
}

func TestLookupCachesNotFound(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	db, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"totalItems":0}`))
	}, WithCache(db))

	for i := 0; i < 2; i++ {
		_, err := client.Lookup(context.Background(), "9784101010014")
		assert.True(t, liberrors.IsNotFoundError(err))
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestRedactKey(t *testing.T) {
	assert.Equal(t, "https://x/volumes?key=REDACTED&q=1", redactKey("https://x/volumes?key=abc&q=1"))
	assert.Equal(t, "https://x/volumes?q=1", redactKey("https://x/volumes?q=1"))
}
