package scroll_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/lunehart/esstream/pkg/client"
	"github.com/lunehart/esstream/pkg/scroll"
)

// Runs the whole stack against a fake cluster: real client, real
// requests, scripted scroll responses.
func TestScrollOverHTTP(t *testing.T) {
	x := require.New(t)

	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fetches++

		switch fetches {
		case 1:
			if r.URL.Path != "/books/_search" {
				http.Error(w, "wrong path: "+r.URL.Path, http.StatusBadRequest)
				return
			}
			if r.URL.Query().Get("scroll") == "" {
				http.Error(w, "missing scroll param", http.StatusBadRequest)
				return
			}
			if !gjson.GetBytes(body, "query").Exists() {
				http.Error(w, "missing query", http.StatusBadRequest)
				return
			}
			w.Write([]byte(`{"_scroll_id":"c1","hits":{"hits":[{"_id":"1","_source":{"x":1}}]}}`))
		case 2:
			if r.URL.Path != "/_search/scroll" {
				http.Error(w, "wrong path: "+r.URL.Path, http.StatusBadRequest)
				return
			}
			if gjson.GetBytes(body, "scroll_id").String() != "c1" {
				http.Error(w, "wrong cursor", http.StatusBadRequest)
				return
			}
			w.Write([]byte(`{"_scroll_id":"c2","hits":{"hits":[]}}`))
		default:
			http.Error(w, "too many fetches", http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	kc := client.New(srv.URL)
	s := scroll.New[json.RawMessage](context.Background(), kc, scroll.Settings{
		Index:  "books",
		Params: map[string]string{"query": `{"match_all":{}}`},
	})

	h, err := s.Next()
	x.NoError(err)
	x.Equal("1", h.ID)
	x.JSONEq(`{"x":1}`, string(h.Source))
	x.Nil(h.Version)

	_, err = s.Next()
	x.ErrorIs(err, io.EOF)
	x.Equal(2, fetches)
}
