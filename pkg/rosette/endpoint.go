package rosette

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
)

// endpointCaller binds one service sub-path (e.g. "entities", "sentiment")
// to the transport. It is stateless across calls; each call derives its
// request shape (JSON or multipart) from the parameters it is given.
type endpointCaller struct {
	serviceURL string
	userKey    string
	subURL     string
	debug      bool
	transport  *transport
}

func (e *endpointCaller) commonHeaders() http.Header {
	headers := http.Header{}
	headers.Set("Accept", "application/json")
	if e.userKey != "" {
		headers.Set("X-RosetteAPI-Key", e.userKey)
		headers.Set("X-RosetteAPI-Binding", bindingName)
		headers.Set("X-RosetteAPI-Binding-Version", bindingVersion)
	}
	if e.debug {
		headers.Set("X-RosetteAPI-Devel", "true")
	}
	return headers
}

// finishResult turns a Response into the call result: a 200 yields the
// parsed body, anything else becomes an APIError carrying the endpoint and
// the message the server supplied.
func (e *endpointCaller) finishResult(r *Response, operation string) (map[string]any, error) {
	if r.StatusCode == http.StatusOK {
		return r.Body, nil
	}
	msg, ok := r.Body["message"].(string)
	if !ok {
		msg, _ = r.Body["code"].(string)
	}
	complaintURL := "top level info"
	if e.subURL != "" {
		complaintURL = operation + " " + e.subURL
	}
	return nil, NewAPIError(strconv.Itoa(r.StatusCode), complaintURL+": failed to communicate with Rosette", msg)
}

// info issues a GET against the server's info endpoint.
func (e *endpointCaller) info(ctx context.Context) (map[string]any, error) {
	r, err := e.transport.get(ctx, e.serviceURL+"info", e.commonHeaders())
	if err != nil {
		return nil, err
	}
	return e.finishResult(r, "info")
}

// ping issues a GET against the server-wide ping endpoint.
func (e *endpointCaller) ping(ctx context.Context) (map[string]any, error) {
	r, err := e.transport.get(ctx, e.serviceURL+"ping", e.commonHeaders())
	if err != nil {
		return nil, err
	}
	return e.finishResult(r, "ping")
}

// call invokes the bound endpoint with the given parameters. A plain
// string is wrapped into a DocumentParameters content field for document
// endpoints; the name endpoints reject it.
func (e *endpointCaller) call(ctx context.Context, parameters any) (map[string]any, error) {
	params, ok := parameters.(Params)
	if !ok {
		text, isString := parameters.(string)
		if !isString {
			return nil, NewAPIError(StatusIncompatible, fmt.Sprintf("unsupported parameter type %T", parameters), e.subURL)
		}
		if e.subURL == "name-similarity" || e.subURL == "name-translation" {
			return nil, NewAPIError(StatusIncompatible, "text-only input only works for document endpoints", e.subURL)
		}
		doc := NewDocumentParameters()
		doc.LoadDocumentString(text)
		params = doc
	}

	serialized, err := params.Serialize()
	if err != nil {
		return nil, err
	}

	url := e.serviceURL + e.subURL
	headers := e.commonHeaders()

	if useMultipart, fileName := params.multipart(); useMultipart {
		r, err := e.callMultipart(ctx, url, serialized, fileName, headers)
		if err != nil {
			return nil, err
		}
		return e.finishResult(r, "operate")
	}

	headers.Set("Accept-Encoding", "gzip")
	headers.Set("Content-Type", "application/json")
	r, err := e.transport.post(ctx, url, serialized, headers)
	if err != nil {
		return nil, err
	}
	return e.finishResult(r, "operate")
}

// callMultipart uploads file-loaded content as a two-part request: the raw
// bytes under the file's basename and a JSON part holding only the
// language field. Multipart uploads are sent once, outside the retry loop.
func (e *endpointCaller) callMultipart(ctx context.Context, url string, serialized map[string]any, fileName string, headers http.Header) (*Response, error) {
	content, err := contentBytes(serialized["content"])
	if err != nil {
		return nil, err
	}
	options := map[string]any{}
	if lang, ok := serialized["language"]; ok {
		options["language"] = lang
	}
	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request options: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreatePart(partHeader("content", fileName, "text/plain"))
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}

	part, err = w.CreatePart(partHeader("request", "request_options", "application/json"))
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}
	if _, err := part.Write(optionsJSON); err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return e.transport.sendOnce(req)
}

func contentBytes(v any) ([]byte, error) {
	switch c := v.(type) {
	case []byte:
		return c, nil
	case string:
		return []byte(c), nil
	default:
		return nil, NewAPIError(StatusBadArgument, "document content is not text", fmt.Sprintf("%T", v))
	}
}

func partHeader(field, fileName, contentType string) textproto.MIMEHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, fileName))
	h.Set("Content-Type", contentType)
	return h
}
