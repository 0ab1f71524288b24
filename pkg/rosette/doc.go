// Package rosette is a Go client binding for the Rosette text-analytics
// web service. All linguistic analysis happens server-side; this package
// builds the HTTP requests, handles authentication, retries rate-limited
// calls, inflates gzip-compressed responses, and returns the server's JSON
// results as plain maps.
//
// # Capabilities
//
// One Client method per analysis endpoint:
//   - Language: language identification
//   - Sentences, Tokens: text segmentation
//   - Morphology: morphological analysis with a selectable output facet
//   - Entities: entity extraction, optionally resolved to linked entries
//   - Categories, Sentiment: document classification
//   - Relationships: relationship extraction
//   - NameTranslation, NameSimilarity: name analysis
//
// # Usage
//
//	client := rosette.NewClient(rosette.WithUserKey(key))
//
//	params := rosette.NewDocumentParameters()
//	params.LoadDocumentString("By the time she arrived, the party was over.")
//
//	result, err := client.Sentiment(ctx, params)
//
// Document endpoints also accept a plain string, which is wrapped into a
// content parameter automatically.
//
// # Error Handling
//
// Every failure, local or remote, is reported as an *APIError carrying a
// status code (symbolic for local errors, numeric for server errors), a
// message, and the raw offending value. Rate limiting (HTTP 429) is the
// only condition retried automatically.
package rosette
