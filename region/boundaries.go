package region

import (
	_ "embed"
	"fmt"
)

//go:embed boundaries.geojson
var defaultBoundaries []byte

// DefaultIndex returns an index over the built-in neighborhood boundary set.
func DefaultIndex() *Index {
	idx, err := FromGeoJSON(defaultBoundaries)
	if err != nil {
		panic(fmt.Sprintf("region: embedded boundary set is invalid: %v", err))
	}
	return idx
}
