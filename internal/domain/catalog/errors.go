package catalog

import "errors"

// ErrInvalidCatalog reports a catalog that cannot be used for scoring.
var ErrInvalidCatalog = errors.New("invalid catalog")
