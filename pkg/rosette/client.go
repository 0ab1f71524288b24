package rosette

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

const (
	bindingName    = "go"
	bindingVersion = "1.1"

	// DefaultServiceURL is the public Rosette API endpoint.
	DefaultServiceURL = "https://api.rosette.com/rest/v1/"
	// DefaultRetries is the default number of retries after the first
	// rate-limited attempt.
	DefaultRetries = 5
	// DefaultRefreshDuration is the default delay between rate-limited attempts.
	DefaultRefreshDuration = 500 * time.Millisecond
)

// Client is a representation of a Rosette server. Each analysis method
// builds an endpoint caller bound to the corresponding sub-path, invokes
// it with the supplied parameters, and returns the server's JSON result as
// a plain map.
//
// A Client is configured once at construction and holds a reusable
// connection; it is not safe for concurrent use without external
// synchronization, since a rate-limited retry re-establishes the
// connection in place.
type Client struct {
	userKey    string
	serviceURL string
	retries    int
	refresh    time.Duration
	reuse      bool
	debug      bool
	logger     *slog.Logger
	breaker    *BreakerConfig

	transport *transport
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithUserKey sets the authentication key sent as X-RosetteAPI-Key.
// The public Rosette server requires one.
func WithUserKey(key string) Option {
	return func(c *Client) { c.userKey = key }
}

// WithServiceURL points the client at an alternate service endpoint.
func WithServiceURL(url string) Option {
	return func(c *Client) { c.serviceURL = url }
}

// WithRetries sets the number of retries after the first attempt of a
// rate-limited request, so a request is tried retries+1 times in total.
// Values below 1 are raised to 1, giving at least two attempts.
func WithRetries(retries int) Option {
	return func(c *Client) { c.retries = retries }
}

// WithRefreshDuration sets the delay between rate-limited attempts.
// Negative values are raised to 0.
func WithRefreshDuration(d time.Duration) Option {
	return func(c *Client) { c.refresh = d }
}

// WithoutConnectionReuse makes the client open a fresh connection per
// request instead of keeping one alive.
func WithoutConnectionReuse() Option {
	return func(c *Client) { c.reuse = false }
}

// WithDebug toggles the X-RosetteAPI-Devel header on all requests.
func WithDebug(debug bool) Option {
	return func(c *Client) { c.debug = debug }
}

// WithLogger sets the structured logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a Client with the given options applied over the
// defaults. The service URL is normalized to end with a slash.
func NewClient(opts ...Option) *Client {
	c := &Client{
		serviceURL: DefaultServiceURL,
		retries:    DefaultRetries,
		refresh:    DefaultRefreshDuration,
		reuse:      true,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if !strings.HasSuffix(c.serviceURL, "/") {
		c.serviceURL += "/"
	}
	if c.retries < 1 {
		c.retries = 1
	}
	if c.refresh < 0 {
		c.refresh = 0
	}

	c.transport = newTransport(c.retries, c.refresh, c.reuse, "RosetteAPIGo/"+bindingVersion, c.logger)
	if c.breaker != nil {
		c.transport.breaker = newBreaker(*c.breaker, c.logger)
	}
	c.logger.Debug("rosette client initialized", "service_url", c.serviceURL)
	return c
}

func (c *Client) endpoint(subURL string) *endpointCaller {
	return &endpointCaller{
		serviceURL: c.serviceURL,
		userKey:    c.userKey,
		subURL:     subURL,
		debug:      c.debug,
		transport:  c.transport,
	}
}

// Ping checks that the server is reachable and responsive.
func (c *Client) Ping(ctx context.Context) (map[string]any, error) {
	return c.endpoint("").ping(ctx)
}

// Info returns the server's version and other identifying data.
func (c *Client) Info(ctx context.Context) (map[string]any, error) {
	return c.endpoint("").info(ctx)
}

// Language identifies the language of the input. Parameters may be a
// *DocumentParameters or a plain string.
func (c *Client) Language(ctx context.Context, parameters any) (map[string]any, error) {
	return c.endpoint("language").call(ctx, parameters)
}

// Sentences breaks the input into sentences.
func (c *Client) Sentences(ctx context.Context, parameters any) (map[string]any, error) {
	return c.endpoint("sentences").call(ctx, parameters)
}

// Tokens breaks the input into tokens.
func (c *Client) Tokens(ctx context.Context, parameters any) (map[string]any, error) {
	return c.endpoint("tokens").call(ctx, parameters)
}

// Morphology returns the requested facet of the morphological analysis of
// the input.
func (c *Client) Morphology(ctx context.Context, parameters any, facet MorphologyFacet) (map[string]any, error) {
	if err := facet.Validate(); err != nil {
		return nil, err
	}
	return c.endpoint("morphology/" + string(facet)).call(ctx, parameters)
}

// Entities extracts named entities from the input. When resolveEntities is
// true the entities are additionally resolved to linked knowledge-base
// entries.
func (c *Client) Entities(ctx context.Context, parameters any, resolveEntities bool) (map[string]any, error) {
	if resolveEntities {
		return c.endpoint("entities/linked").call(ctx, parameters)
	}
	return c.endpoint("entities").call(ctx, parameters)
}

// Categories identifies the category of the input.
func (c *Client) Categories(ctx context.Context, parameters any) (map[string]any, error) {
	return c.endpoint("categories").call(ctx, parameters)
}

// Sentiment identifies the sentiment of the input.
func (c *Client) Sentiment(ctx context.Context, parameters any) (map[string]any, error) {
	return c.endpoint("sentiment").call(ctx, parameters)
}

// Relationships extracts relationships between entities in the input.
// Parameters may be a *DocumentParameters, *RelationshipsParameters or a
// plain string.
func (c *Client) Relationships(ctx context.Context, parameters any) (map[string]any, error) {
	return c.endpoint("relationships").call(ctx, parameters)
}

// NameTranslation translates a name between languages and scripts.
func (c *Client) NameTranslation(ctx context.Context, parameters *NameTranslationParameters) (map[string]any, error) {
	return c.endpoint("name-translation").call(ctx, parameters)
}

// TranslatedName performs name translation.
//
// Deprecated: use NameTranslation.
func (c *Client) TranslatedName(ctx context.Context, parameters *NameTranslationParameters) (map[string]any, error) {
	return c.NameTranslation(ctx, parameters)
}

// NameSimilarity scores the similarity of two names.
func (c *Client) NameSimilarity(ctx context.Context, parameters *NameSimilarityParameters) (map[string]any, error) {
	return c.endpoint("name-similarity").call(ctx, parameters)
}

// MatchedName performs name similarity scoring.
//
// Deprecated: use NameSimilarity.
func (c *Client) MatchedName(ctx context.Context, parameters *NameSimilarityParameters) (map[string]any, error) {
	return c.NameSimilarity(ctx, parameters)
}
