package scroll

import (
	"bytes"
	"encoding/json"
	"net/url"
	"path"

	"github.com/lunehart/esstream/pkg/client"
)

const DefaultKeepAlive = "1m"

// searchRequest builds the request that opens the scroll: the query
// and auxiliary parameters from Settings, no cursor.
func searchRequest(s Settings) client.Request {
	body := make(map[string]json.RawMessage, len(s.Params)+2)
	for k, v := range s.Params {
		body[k] = json.RawMessage(v)
	}
	if s.PageSize > 0 {
		body["size"], _ = json.Marshal(s.PageSize)
	}
	if len(s.SourceFields) > 0 {
		body["_source"], _ = json.Marshal(s.SourceFields)
	}
	// Map marshalling sorts keys, so the body is deterministic.
	qb, _ := json.Marshal(body)

	values := make(url.Values, 1)
	values.Set("scroll", s.KeepAlive)

	return client.Request{
		Method: "POST",
		Path:   "/" + path.Join(s.Index, "_search"),
		Values: values,
		Body:   bytes.NewReader(qb),
	}
}

// scrollRequest builds a continuation request carrying only the
// cursor. The cluster retains the query context server-side, keyed by
// the scroll id.
func scrollRequest(keepAlive, scrollID string) client.Request {
	qb, _ := json.Marshal(map[string]string{
		"scroll":    keepAlive,
		"scroll_id": scrollID,
	})

	return client.Request{
		Method: "POST",
		Path:   "/_search/scroll",
		Body:   bytes.NewReader(qb),
	}
}

// clearRequest builds the best-effort release of every scroll id the
// stream created. Scroll contexts consume cluster memory and should
// always be culled after usage.
func clearRequest(scrollIDs []string) client.Request {
	qb, _ := json.Marshal(map[string][]string{
		"scroll_id": scrollIDs,
	})

	return client.Request{
		Method: "DELETE",
		Path:   "/_search/scroll",
		Body:   bytes.NewReader(qb),
	}
}
