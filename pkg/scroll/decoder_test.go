package scroll

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodePageExtractsCursorAndHits(t *testing.T) {
	x := require.New(t)

	body := `{
		"_scroll_id": "abc",
		"hits": {"hits": [
			{"_id": "1", "_version": 5, "_source": {"name": "first"}},
			{"_id": "2", "_source": {"name": "second"}}
		]}
	}`

	type named struct {
		Name string `json:"name"`
	}

	page, err := jsonPageDecoder[named]{}.DecodePage([]byte(body))
	x.NoError(err)
	x.Nil(page.Err)
	x.Equal("abc", page.ScrollID)
	x.Len(page.Hits, 2)

	x.Equal("1", page.Hits[0].ID)
	x.Equal("first", page.Hits[0].Source.Name)
	x.NotNil(page.Hits[0].Version)
	x.Equal(int64(5), *page.Hits[0].Version)

	x.Equal("2", page.Hits[1].ID)
	x.Nil(page.Hits[1].Version)
}

func TestDecodePageNonNumericVersion(t *testing.T) {
	x := require.New(t)

	body := `{"_scroll_id":"abc","hits":{"hits":[{"_id":"1","_version":"5","_source":{}}]}}`

	page, err := jsonPageDecoder[map[string]any]{}.DecodePage([]byte(body))
	x.NoError(err)
	x.Nil(page.Hits[0].Version)
}

func TestDecodePageErrorField(t *testing.T) {
	for name, tc := range map[string]struct {
		body string
		msg  string
	}{
		"structured": {
			body: `{"error":{"type":"illegal_argument_exception","reason":"no such index"},"status":404}`,
			msg:  "no such index",
		},
		"bare string": {
			body: `{"error":"IndexMissingException[[books] missing]","status":404}`,
			msg:  "IndexMissingException[[books] missing]",
		},
	} {
		t.Run(name, func(t *testing.T) {
			x := require.New(t)

			page, err := jsonPageDecoder[map[string]any]{}.DecodePage([]byte(tc.body))
			x.NoError(err)
			x.NotNil(page.Err)
			x.Equal(tc.msg, page.Err.Message)
			x.Empty(page.Hits)
		})
	}
}

func TestDecodePageErrorWinsOverHits(t *testing.T) {
	x := require.New(t)

	body := `{"error":{"reason":"partial failure"},"_scroll_id":"abc","hits":{"hits":[{"_id":"1","_source":{}}]}}`

	page, err := jsonPageDecoder[map[string]any]{}.DecodePage([]byte(body))
	x.NoError(err)
	x.NotNil(page.Err)
	x.Empty(page.Hits)
	x.Empty(page.ScrollID)
}

func TestDecodePageMissingID(t *testing.T) {
	x := require.New(t)

	body := `{"_scroll_id":"abc","hits":{"hits":[{"_source":{}}]}}`

	_, err := jsonPageDecoder[map[string]any]{}.DecodePage([]byte(body))
	x.Error(err)
	x.Contains(err.Error(), "missing _id")
}

func TestDecodePageNotJSON(t *testing.T) {
	x := require.New(t)

	_, err := jsonPageDecoder[map[string]any]{}.DecodePage([]byte("<html></html>"))
	x.ErrorIs(err, errMalformed)
}

func TestDecodePageSourceMismatch(t *testing.T) {
	x := require.New(t)

	type strict struct {
		X int `json:"x"`
	}
	body := `{"_scroll_id":"abc","hits":{"hits":[{"_id":"1","_source":{"x":"nope"}}]}}`

	_, err := jsonPageDecoder[strict]{}.DecodePage([]byte(body))
	x.Error(err)
	x.Contains(err.Error(), `hit "1"`)
}
