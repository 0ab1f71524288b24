package rosette

import (
	"fmt"
	"slices"
	"strings"
)

// MorphologyFacet selects which slice of the morphological analysis the
// morphology endpoint returns.
type MorphologyFacet string

const (
	// MorphologyLemmas returns the lemmas of the input tokens.
	MorphologyLemmas MorphologyFacet = "lemmas"
	// MorphologyPartsOfSpeech returns part-of-speech tags.
	MorphologyPartsOfSpeech MorphologyFacet = "parts-of-speech"
	// MorphologyCompoundComponents returns compound word components.
	MorphologyCompoundComponents MorphologyFacet = "compound-components"
	// MorphologyHanReadings returns Han readings of the input tokens.
	MorphologyHanReadings MorphologyFacet = "han-readings"
	// MorphologyComplete returns the complete morphological analysis.
	MorphologyComplete MorphologyFacet = "complete"
)

var morphologyFacets = []MorphologyFacet{
	MorphologyLemmas,
	MorphologyPartsOfSpeech,
	MorphologyCompoundComponents,
	MorphologyHanReadings,
	MorphologyComplete,
}

// Validate checks the facet against the enumerated set of valid values.
func (f MorphologyFacet) Validate() error {
	if slices.Contains(morphologyFacets, f) {
		return nil
	}
	valid := make([]string, len(morphologyFacets))
	for i, v := range morphologyFacets {
		valid[i] = string(v)
	}
	return NewAPIError(
		StatusUnknownVariable,
		fmt.Sprintf("the value supplied for facet is not one of %s", strings.Join(valid, ", ")),
		fmt.Sprintf("%q", string(f)),
	)
}
