package rosette

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransport(retries int) (*transport, *int) {
	tr := newTransport(retries, 10*time.Millisecond, true, "RosetteAPIGo/test", slog.New(slog.DiscardHandler))
	delays := 0
	tr.wait = func(ctx context.Context, d time.Duration) error {
		delays++
		return nil
	}
	return tr, &delays
}

func TestRequestRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("too many requests"))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tr, delays := newTestTransport(5)
	resp, err := tr.post(context.Background(), srv.URL, nil, http.Header{})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, resp.Body["ok"])
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 2, *delays, "expected one delay per rate-limited attempt")
}

func TestRequestExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	tr, delays := newTestTransport(1)
	_, err := tr.get(context.Background(), srv.URL, http.Header{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "429", apiErr.Status)
	assert.Contains(t, apiErr.Message, "slow down")
	assert.Contains(t, apiErr.Message, "(1)", "message should carry the last attempt index")
	assert.Equal(t, 2, *delays)
}

func TestRequestErrorBodyDecoding(t *testing.T) {
	t.Run("json body with message and code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"forbidden key","code":"forbiddenKey"}`))
		}))
		defer srv.Close()

		tr, delays := newTestTransport(5)
		_, err := tr.get(context.Background(), srv.URL, http.Header{})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "forbiddenKey", apiErr.Status)
		assert.Equal(t, "forbidden key", apiErr.Message)
		assert.Equal(t, srv.URL, apiErr.Detail)
		assert.Equal(t, 0, *delays, "non-429 errors are not retried")
	})

	t.Run("json body without code falls back to status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"boom"}`))
		}))
		defer srv.Close()

		tr, _ := newTestTransport(5)
		_, err := tr.get(context.Background(), srv.URL, http.Header{})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "500", apiErr.Status)
		assert.Equal(t, "boom", apiErr.Message)
	})

	t.Run("non-json body used verbatim as message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("<html>bad gateway</html>"))
		}))
		defer srv.Close()

		tr, _ := newTestTransport(5)
		_, err := tr.get(context.Background(), srv.URL, http.Header{})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "502", apiErr.Status)
		assert.Equal(t, "<html>bad gateway</html>", apiErr.Message)
	})
}

func TestRequestConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	tr, delays := newTestTransport(5)
	_, _, _, err := tr.request(context.Background(), http.MethodGet, url, nil, http.Header{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, &APIError{Status: StatusConnectionError}))
	assert.Equal(t, 0, *delays, "connection failures bypass the retry loop")
}

func TestPostInflatesGzipResponse(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte(`{"ok":true}`))
	require.NoError(t, zw.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	tr, _ := newTestTransport(5)
	resp, err := tr.post(context.Background(), srv.URL, map[string]any{"content": "hi"}, http.Header{})
	require.NoError(t, err)

	assert.Equal(t, true, resp.Body["ok"])
	assert.Contains(t, resp.Body, "responseHeaders")
}

func TestPostEncodesBody(t *testing.T) {
	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		buf.ReadFrom(r.Body)
		got = buf.Bytes()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tr, _ := newTestTransport(5)
	_, err := tr.post(context.Background(), srv.URL, map[string]any{"content": "hello"}, http.Header{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"hello"}`, string(got))
}

func TestResponseHeadersFolded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Rosetteapi-Concurrency", "2")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tr, _ := newTestTransport(5)
	resp, err := tr.get(context.Background(), srv.URL, http.Header{})
	require.NoError(t, err)

	headers, ok := resp.Body["responseHeaders"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2", headers["X-Rosetteapi-Concurrency"])
}

func TestGunzipIfNeeded(t *testing.T) {
	t.Run("passes short and plain bodies through", func(t *testing.T) {
		for _, b := range [][]byte{nil, {0x1f}, []byte(`{"a":1}`)} {
			out, err := gunzipIfNeeded(b)
			require.NoError(t, err)
			assert.Equal(t, b, out)
		}
	})

	t.Run("inflates gzip bodies", func(t *testing.T) {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		zw.Write([]byte("payload"))
		require.NoError(t, zw.Close())

		out, err := gunzipIfNeeded(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), out)
	})
}

func TestNullResponseBodyIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))
	defer srv.Close()

	tr, _ := newTestTransport(5)

	_, err := tr.get(context.Background(), srv.URL, http.Header{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a JSON object")

	_, err = tr.post(context.Background(), srv.URL, map[string]any{"content": "hi"}, http.Header{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a JSON object")
}

func TestDecodeBodyNotAnObject(t *testing.T) {
	for _, raw := range []string{`null`, `[1,2]`, `"text"`} {
		_, err := decodeBody([]byte(raw), http.Header{})
		assert.Error(t, err, raw)
	}
}

func TestUserAgentAttached(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tr, _ := newTestTransport(5)
	_, err := tr.get(context.Background(), srv.URL, http.Header{})
	require.NoError(t, err)
	assert.Equal(t, "RosetteAPIGo/test", ua)
}
