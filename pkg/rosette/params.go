package rosette

import (
	"fmt"
	"os"
	"path/filepath"
)

// Params is the serialization contract shared by every parameter container.
// Serialize validates the container first and then returns a map holding
// only the keys that were actually set.
type Params interface {
	Serialize() (map[string]any, error)

	// multipart reports whether the container was loaded from a file and
	// returns the name to use for the uploaded part.
	multipart() (bool, string)
}

// paramSet is the common key-checked mapping underneath every container.
// The recognized key set is fixed at construction; setting or reading any
// other key fails with a badKey APIError.
type paramSet struct {
	keys   map[string]any
	verify func(*paramSet) error
}

func newParamSet(repertoire ...string) paramSet {
	keys := make(map[string]any, len(repertoire))
	for _, k := range repertoire {
		keys[k] = nil
	}
	return paramSet{keys: keys}
}

// Set assigns a value to a recognized key.
func (p *paramSet) Set(key string, val any) error {
	if _, ok := p.keys[key]; !ok {
		return newBadKeyError(key)
	}
	p.keys[key] = val
	return nil
}

// Get returns the value of a recognized key, or nil if the key is unset.
func (p *paramSet) Get(key string) (any, error) {
	v, ok := p.keys[key]
	if !ok {
		return nil, newBadKeyError(key)
	}
	return v, nil
}

func (p *paramSet) isSet(key string) bool {
	return p.keys[key] != nil
}

func (p *paramSet) serialize() (map[string]any, error) {
	if p.verify != nil {
		if err := p.verify(p); err != nil {
			return nil, err
		}
	}
	out := make(map[string]any)
	for k, v := range p.keys {
		if v != nil {
			out[k] = v
		}
	}
	return out, nil
}

// DocumentParameters carries the input for all document-style endpoints
// (language, sentences, tokens, morphology, entities, categories,
// sentiment). Exactly one of the "content" and "contentUri" keys must be
// set before serialization. Content may also be loaded through
// LoadDocumentString or LoadDocumentFile; loading from a file switches the
// request to multipart upload using the file's basename.
type DocumentParameters struct {
	paramSet

	fileName     string
	useMultipart bool
}

// NewDocumentParameters creates an empty DocumentParameters container.
func NewDocumentParameters() *DocumentParameters {
	d := &DocumentParameters{paramSet: newParamSet("content", "contentUri", "language", "genre")}
	d.verify = verifyDocument
	return d
}

func verifyDocument(p *paramSet) error {
	content, uri := p.isSet("content"), p.isSet("contentUri")
	switch {
	case !content && !uri:
		return NewAPIError(StatusBadArgument, "must supply one of content or contentUri", "bad arguments")
	case content && uri:
		return NewAPIError(StatusBadArgument, "cannot supply both content and contentUri", "bad arguments")
	}
	return nil
}

// Serialize implements Params.
func (d *DocumentParameters) Serialize() (map[string]any, error) {
	return d.serialize()
}

func (d *DocumentParameters) multipart() (bool, string) {
	return d.useMultipart, filepath.Base(d.fileName)
}

// LoadDocumentString loads a string into the container's content field.
func (d *DocumentParameters) LoadDocumentString(s string) {
	d.keys["content"] = s
}

// LoadDocumentBytes loads raw bytes into the container's content field.
func (d *DocumentParameters) LoadDocumentBytes(b []byte) {
	d.keys["content"] = b
}

// LoadDocumentFile reads a file into the content field and switches the
// container to multipart mode. The server receives the raw bytes under the
// file's basename and determines the conversion itself.
func (d *DocumentParameters) LoadDocumentFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load document file: %w", err)
	}
	d.useMultipart = true
	d.fileName = path
	d.LoadDocumentBytes(b)
	return nil
}

// RelationshipsParameters is a DocumentParameters variant for the
// relationships endpoint, adding the endpoint-specific "options" key.
type RelationshipsParameters struct {
	DocumentParameters
}

// NewRelationshipsParameters creates an empty RelationshipsParameters container.
func NewRelationshipsParameters() *RelationshipsParameters {
	r := &RelationshipsParameters{}
	r.paramSet = newParamSet("content", "contentUri", "language", "options", "genre")
	r.verify = verifyDocument
	return r
}

// NameTranslationParameters carries the input for the name-translation
// endpoint. The "name" and "targetLanguage" keys are required; entityType,
// sourceLanguageOfOrigin, sourceLanguageOfUse, sourceScript, targetScript,
// targetScheme and genre are optional. Scripts are ISO 15924 codes and
// languages ISO 639 codes.
type NameTranslationParameters struct {
	paramSet
}

// NewNameTranslationParameters creates an empty NameTranslationParameters container.
func NewNameTranslationParameters() *NameTranslationParameters {
	n := &NameTranslationParameters{paramSet: newParamSet(
		"name",
		"targetLanguage",
		"entityType",
		"sourceLanguageOfOrigin",
		"sourceLanguageOfUse",
		"sourceScript",
		"targetScript",
		"targetScheme",
		"genre",
	)}
	n.verify = requireKeys("name", "targetLanguage")
	return n
}

// Serialize implements Params.
func (n *NameTranslationParameters) Serialize() (map[string]any, error) {
	return n.serialize()
}

func (n *NameTranslationParameters) multipart() (bool, string) { return false, "" }

// NameSimilarityParameters carries the two names to be scored by the
// name-similarity endpoint. Both "name1" and "name2" are required; each is
// a name object with a required "text" field and optional "language",
// "script" and "entityType" fields.
type NameSimilarityParameters struct {
	paramSet
}

// NewNameSimilarityParameters creates an empty NameSimilarityParameters container.
func NewNameSimilarityParameters() *NameSimilarityParameters {
	n := &NameSimilarityParameters{paramSet: newParamSet("name1", "name2")}
	n.verify = requireKeys("name1", "name2")
	return n
}

// Serialize implements Params.
func (n *NameSimilarityParameters) Serialize() (map[string]any, error) {
	return n.serialize()
}

func (n *NameSimilarityParameters) multipart() (bool, string) { return false, "" }

func requireKeys(required ...string) func(*paramSet) error {
	return func(p *paramSet) error {
		for _, k := range required {
			if !p.isSet(k) {
				return NewAPIError(StatusMissingParameter, "required parameter not supplied", fmt.Sprintf("%q", k))
			}
		}
		return nil
	}
}
