// Package scroll streams documents out of an Elasticsearch index via
// the scroll API. A [Scroller] owns the scroll cursor for its lifetime:
// it fetches one page at a time, only when the records already in hand
// have been consumed, and hands out one decoded hit per call to Next.
package scroll

// Hit is one emitted record: the document identifier, its source
// decoded into the target type, and the document version when the
// response carried a numeric one.
type Hit[T any] struct {
	ID      string
	Source  T
	Version *int64
}

// Page is one decoded scroll response: either an application-level
// error reported by the cluster, or a cursor plus the page's hits in
// response order. A nil Err with zero hits means the result set is
// exhausted.
type Page[T any] struct {
	ScrollID string
	Hits     []Hit[T]
	Err      *APIError
}

// APIError is an error Elasticsearch reported inside an otherwise
// well-formed response body, independent of the HTTP status code.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return "elasticsearch: " + e.Message
}

// Settings describes the search a Scroller runs. It is read once at
// construction and never again; the continuation requests carry only
// the scroll cursor, never these parameters.
type Settings struct {
	// Index to search, e.g. "shakespeare". May name several indices
	// separated by commas.
	Index string

	// KeepAlive is how long the cluster should keep the scroll context
	// alive between fetches, e.g. "1m". Defaults to DefaultKeepAlive.
	KeepAlive string

	// PageSize, when non-zero, is sent as the "size" of each page.
	PageSize int

	// SourceFields, when non-empty, restricts the returned _source to
	// the named fields.
	SourceFields []string

	// Params holds extra top-level entries for the initial search
	// body, keyed by field name, each value a raw JSON fragment. The
	// query itself goes here, e.g.
	// Params["query"] = `{"match_all":{}}`.
	Params map[string]string
}
