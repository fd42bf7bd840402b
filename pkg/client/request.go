package client

import (
	"io"
	"net/url"
)

// Request describes one outbound call to the search cluster. It only
// captures the two logical shapes the library issues - an initial
// search and a cursor continuation - plus the odd housekeeping call,
// so it is deliberately much smaller than a full *http.Request.
type Request struct {
	Method string
	Path   string
	Values url.Values
	Body   io.Reader
}

func (r Request) URL() string {
	url := r.Path

	if queryString := r.Values.Encode(); queryString != "" {
		url += "?" + queryString
	}

	return url
}
