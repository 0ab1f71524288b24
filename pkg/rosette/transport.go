package rosette

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// gzipMagic is the three-byte signature a gzip-compressed response body
// starts with.
var gzipMagic = []byte{0x1f, 0x8b, 0x08}

// transport owns the HTTP connection to the service and implements the
// retry-on-429 request loop. A 429 retry drops idle connections so the
// next attempt dials fresh; when connection reuse is disabled every
// request does the same after completing.
type transport struct {
	httpClient *http.Client
	base       *http.Transport
	retries    int
	refresh    time.Duration
	reuse      bool
	userAgent  string
	logger     *slog.Logger
	breaker    *breakerTransport

	// wait blocks between 429 attempts; replaced in tests to observe delays.
	wait func(ctx context.Context, d time.Duration) error
}

func newTransport(retries int, refresh time.Duration, reuse bool, userAgent string, logger *slog.Logger) *transport {
	base := &http.Transport{DisableKeepAlives: !reuse}
	return &transport{
		httpClient: &http.Client{Transport: base},
		base:       base,
		retries:    retries,
		refresh:    refresh,
		reuse:      reuse,
		userAgent:  userAgent,
		logger:     logger,
		wait: func(ctx context.Context, d time.Duration) error {
			select {
			case <-time.After(d):
				return nil
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during retry backoff: %w", ctx.Err())
			}
		},
	}
}

// request performs one HTTP operation against url, retrying rate-limited
// attempts up to retries+1 times. It returns the raw response body, the
// status code and the response headers. Low-level connection failures are
// not retried. With a circuit breaker configured, the whole retrying call
// counts as one unit toward the breaker's failure ratio.
func (t *transport) request(ctx context.Context, method, url string, body []byte, headers http.Header) ([]byte, int, http.Header, error) {
	if t.breaker != nil {
		return t.breaker.execute(ctx, func() ([]byte, int, http.Header, error) {
			return t.doRequest(ctx, method, url, body, headers)
		})
	}
	return t.doRequest(ctx, method, url, body, headers)
}

func (t *transport) doRequest(ctx context.Context, method, url string, body []byte, headers http.Header) ([]byte, int, http.Header, error) {
	reqID := uuid.NewString()

	lastCode := StatusUnknownError
	lastMessage := ""
	for attempt := 0; attempt <= t.retries; attempt++ {
		t.logger.Debug("rosette request", "request_id", reqID, "method", method, "url", url, "attempt", attempt)

		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		if err != nil {
			return nil, 0, nil, fmt.Errorf("failed to create request: %w", err)
		}
		for k, vs := range headers {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		req.Header.Set("User-Agent", t.userAgent)

		resp, err := t.httpClient.Do(req)
		if err != nil {
			// Dial, DNS and malformed-response failures surface
			// immediately; the retry loop is only for throttling.
			return nil, 0, nil, newConnectionError(url)
		}
		rdata, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, 0, nil, newConnectionError(url)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			if !t.reuse {
				t.base.CloseIdleConnections()
			}
			return rdata, resp.StatusCode, resp.Header, nil

		case resp.StatusCode == http.StatusTooManyRequests:
			lastCode = strconv.Itoa(resp.StatusCode)
			lastMessage = fmt.Sprintf("%s (%d)", rdata, attempt)
			t.logger.Debug("rosette rate limited", "request_id", reqID, "attempt", attempt)
			if err := t.wait(ctx, t.refresh); err != nil {
				return nil, 0, nil, err
			}
			// Drop the connection so the next attempt dials fresh.
			t.base.CloseIdleConnections()
			continue

		default:
			code, message := decodeErrorBody(rdata, resp.StatusCode)
			t.logger.Error("rosette request failed", "request_id", reqID, "endpoint", url, "code", code)
			return nil, 0, nil, NewAPIError(code, message, url)
		}
	}

	if !t.reuse {
		t.base.CloseIdleConnections()
	}
	t.logger.Error("rosette retries exhausted", "request_id", reqID, "endpoint", url, "code", lastCode)
	return nil, 0, nil, NewAPIError(lastCode, lastMessage, url)
}

// get performs a retrying GET and parses the JSON response.
func (t *transport) get(ctx context.Context, url string, headers http.Header) (*Response, error) {
	rdata, status, respHeaders, err := t.request(ctx, http.MethodGet, url, nil, headers)
	if err != nil {
		return nil, err
	}
	body, err := decodeBody(rdata, respHeaders)
	if err != nil {
		return nil, err
	}
	return &Response{Body: body, StatusCode: status}, nil
}

// post JSON-encodes data (empty when nil), performs a retrying POST, and
// transparently inflates a gzip-compressed response before parsing it.
func (t *transport) post(ctx context.Context, url string, data map[string]any, headers http.Header) (*Response, error) {
	var encoded []byte
	if data != nil {
		var err error
		encoded, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	rdata, status, respHeaders, err := t.request(ctx, http.MethodPost, url, encoded, headers)
	if err != nil {
		return nil, err
	}
	rdata, err = gunzipIfNeeded(rdata)
	if err != nil {
		return nil, err
	}
	body, err := decodeBody(rdata, respHeaders)
	if err != nil {
		return nil, err
	}
	return &Response{Body: body, StatusCode: status}, nil
}

// sendOnce performs a single non-retrying request, used for multipart
// uploads which must not be replayed.
func (t *transport) sendOnce(req *http.Request) (*Response, error) {
	req.Header.Set("User-Agent", t.userAgent)
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, newConnectionError(req.URL.String())
	}
	defer resp.Body.Close()
	rdata, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newConnectionError(req.URL.String())
	}
	if !t.reuse {
		t.base.CloseIdleConnections()
	}
	body, err := decodeBody(rdata, resp.Header)
	if err != nil {
		return nil, err
	}
	return &Response{Body: body, StatusCode: resp.StatusCode}, nil
}

// gunzipIfNeeded inflates rdata when it starts with the gzip signature.
func gunzipIfNeeded(rdata []byte) ([]byte, error) {
	if len(rdata) <= 3 || !bytes.Equal(rdata[:3], gzipMagic) {
		return rdata, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(rdata))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress response: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress response: %w", err)
	}
	return out, nil
}

// decodeBody parses a JSON object and folds the response headers into it
// under the "responseHeaders" key.
func decodeBody(rdata []byte, headers http.Header) (map[string]any, error) {
	var body map[string]any
	if err := json.Unmarshal(rdata, &body); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	// A JSON null unmarshals into a nil map.
	if body == nil {
		return nil, fmt.Errorf("failed to parse response: not a JSON object")
	}
	body["responseHeaders"] = flattenHeaders(headers)
	return body, nil
}

// decodeErrorBody extracts the server's message and code fields from a
// non-200, non-429 body. A body that is not a JSON object is used verbatim
// as the message, with the HTTP status as the code.
func decodeErrorBody(rdata []byte, status int) (code, message string) {
	code = strconv.Itoa(status)
	message = string(rdata)

	var body map[string]any
	if err := json.Unmarshal(rdata, &body); err != nil {
		return code, message
	}
	if m, ok := body["message"].(string); ok {
		message = m
	}
	if c, ok := body["code"].(string); ok {
		code = c
	}
	return code, message
}

func flattenHeaders(headers http.Header) map[string]any {
	flat := make(map[string]any, len(headers))
	for k := range headers {
		flat[k] = headers.Get(k)
	}
	return flat
}
