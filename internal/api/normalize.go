package api

import (
	"bytes"
	"encoding/json"

	"storefront/internal/types"
)

// Product list responses come in more than one shape depending on the server
// version: a bare JSON array, a paginated envelope {"content": [...]}, or
// something else entirely (an empty body, a string). Every shape is mapped to
// a []types.Product here so nothing downstream has to care.

// pageEnvelope is the paginated list shape.
type pageEnvelope struct {
	Content       json.RawMessage `json:"content"`
	TotalElements int             `json:"totalElements"`
	TotalPages    int             `json:"totalPages"`
	Number        int             `json:"number"`
}

// NormalizeProductList maps a product list body to a slice. Arrays and
// envelopes are decoded; any other shape yields an empty, non-nil slice.
// An array whose elements are not products is a decode error.
func NormalizeProductList(body []byte) ([]types.Product, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []types.Product{}, nil
	}

	switch trimmed[0] {
	case '[':
		return decodeProductArray(trimmed)
	case '{':
		var env pageEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return []types.Product{}, nil
		}
		content := bytes.TrimSpace(env.Content)
		if len(content) == 0 || content[0] != '[' {
			return []types.Product{}, nil
		}
		return decodeProductArray(content)
	default:
		return []types.Product{}, nil
	}
}

// NormalizeSearchResults maps a search body to a slice. Only bare arrays are
// accepted; anything else yields an empty slice.
func NormalizeSearchResults(body []byte) ([]types.Product, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []types.Product{}, nil
	}
	return decodeProductArray(trimmed)
}

func decodeProductArray(data []byte) ([]types.Product, error) {
	var products []types.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []types.Product{}
	}
	return products, nil
}
