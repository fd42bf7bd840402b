package scroll

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// A PageDecoder converts one raw response body into a Page. The
// default JSON decoder below suits the standard search and scroll
// endpoints; supply your own via WithDecoder to handle a custom
// response envelope.
type PageDecoder[T any] interface {
	DecodePage(body []byte) (*Page[T], error)
}

// errMalformed marks a body that is not JSON at all, so the engine can
// fall back to reporting the HTTP status instead.
var errMalformed = errors.New("malformed response body")

type jsonPageDecoder[T any] struct{}

func (jsonPageDecoder[T]) DecodePage(body []byte) (*Page[T], error) {
	if !gjson.ValidBytes(body) {
		return nil, errMalformed
	}
	root := gjson.ParseBytes(body)

	// An error field wins over anything else in the response; no hits
	// are ever produced from an error-bearing page.
	if errField := root.Get("error"); errField.Exists() {
		return &Page[T]{Err: &APIError{Message: errorMessage(errField)}}, nil
	}

	page := &Page[T]{ScrollID: root.Get("_scroll_id").String()}
	for _, h := range root.Get("hits.hits").Array() {
		id := h.Get("_id")
		if !id.Exists() {
			return nil, fmt.Errorf("hit missing _id field: %s", h.Raw)
		}

		hit := Hit[T]{ID: id.String()}

		// Only a numeric _version yields a version; absent or any
		// other representation leaves it nil.
		if v := h.Get("_version"); v.Type == gjson.Number {
			version := v.Int()
			hit.Version = &version
		}

		if src := h.Get("_source"); src.Exists() {
			if err := json.Unmarshal([]byte(src.Raw), &hit.Source); err != nil {
				return nil, fmt.Errorf("decode source of hit %q: %w", hit.ID, err)
			}
		}

		page.Hits = append(page.Hits, hit)
	}

	return page, nil
}

// errorMessage extracts something readable from the error field, which
// is a bare string on old clusters and a structured object with a
// "reason" on newer ones.
func errorMessage(errField gjson.Result) string {
	if errField.Type == gjson.String {
		return errField.String()
	}
	if reason := errField.Get("reason"); reason.Exists() {
		return reason.String()
	}
	return errField.Raw
}
