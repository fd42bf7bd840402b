package scroll

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/rs/zerolog"

	"github.com/lunehart/esstream/pkg/client"
	"github.com/lunehart/esstream/pkg/stream"
)

var _ stream.Stream[Hit[struct{}]] = (*Scroller[struct{}])(nil)
var _ io.Closer = (*Scroller[struct{}])(nil)

type state int

const (
	stateNotStarted state = iota
	stateScrolling
	stateExhausted
	stateFailed
)

// Scroller pages through a result set and hands out one hit per call
// to Next. It is the sole owner of the scroll cursor: at most one
// fetch is ever in flight, a new page is requested only once every hit
// of the previous page has been consumed, and hits are emitted in
// exactly the order the cluster returned them.
//
// Next returns io.EOF once the result set is exhausted. Any transport
// failure, cluster-reported error or undecodable hit fails the stream
// permanently; Next keeps returning the same error and no further
// requests are made. Retrying is the caller's business, with a fresh
// Scroller.
type Scroller[T any] struct {
	kc       client.Interface
	settings Settings
	decoder  PageDecoder[T]
	log      zerolog.Logger
	ctx      context.Context

	mu       sync.Mutex
	state    state
	buf      deque.Deque[Hit[T]]
	scrollID string
	seen     map[string]struct{}
	err      error
	closed   bool
}

type Option[T any] func(s *Scroller[T])

// WithDecoder replaces the default JSON page decoder.
func WithDecoder[T any](d PageDecoder[T]) Option[T] {
	return func(s *Scroller[T]) {
		s.decoder = d
	}
}

func WithLogger[T any](log zerolog.Logger) Option[T] {
	return func(s *Scroller[T]) {
		s.log = log
	}
}

// New creates a Scroller for the given search. The context covers the
// whole life of the stream: cancelling it stops the scroll, including
// while a fetch is in flight. No request is made until the first call
// to Next.
func New[T any](ctx context.Context, kc client.Interface, settings Settings, opts ...Option[T]) *Scroller[T] {
	if settings.KeepAlive == "" {
		settings.KeepAlive = DefaultKeepAlive
	}

	s := &Scroller[T]{
		kc:       kc,
		settings: settings,
		decoder:  jsonPageDecoder[T]{},
		log:      zerolog.Nop(),
		ctx:      ctx,
		seen:     make(map[string]struct{}),
	}
	for _, o := range opts {
		o(s)
	}

	return s
}

// NewUntyped creates a Scroller that decodes each source into a
// generic map, for callers that have no schema for the documents.
func NewUntyped(ctx context.Context, kc client.Interface, settings Settings, opts ...Option[map[string]any]) *Scroller[map[string]any] {
	return New(ctx, kc, settings, opts...)
}

// Next returns the next hit. The buffered page is drained in order
// before any network work happens; when it runs dry, the next call
// fetches the following page. Safe for use from multiple goroutines,
// though hits are handed out one per caller.
func (s *Scroller[T]) Next() (Hit[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero Hit[T]
	if s.buf.Len() > 0 {
		return s.buf.PopFront(), nil
	}

	switch {
	case s.closed:
		return zero, io.EOF
	case s.state == stateExhausted:
		return zero, io.EOF
	case s.state == stateFailed:
		return zero, s.err
	}

	if err := s.ctx.Err(); err != nil {
		return zero, s.fail(err)
	}

	// Buffer is empty and the stream is live: fetch the next page.
	// The lock is held across the fetch, which is what makes the
	// single-flight guarantee hold for any interleaving of callers.
	var req client.Request
	if s.state == stateNotStarted {
		req = searchRequest(s.settings)
	} else {
		req = scrollRequest(s.settings.KeepAlive, s.scrollID)
	}

	page, err := s.fetch(req)
	if err != nil {
		return zero, s.fail(err)
	}
	if page.Err != nil {
		return zero, s.fail(page.Err)
	}

	if page.ScrollID != "" {
		s.scrollID = page.ScrollID
		s.seen[page.ScrollID] = struct{}{}
	}

	if len(page.Hits) == 0 {
		s.state = stateExhausted
		s.log.Debug().Int("pages", len(s.seen)).Msg("scroll exhausted")
		return zero, io.EOF
	}
	if s.scrollID == "" {
		return zero, s.fail(fmt.Errorf("response carries hits but no _scroll_id, cannot continue"))
	}

	s.state = stateScrolling
	for _, h := range page.Hits {
		s.buf.PushBack(h)
	}

	return s.buf.PopFront(), nil
}

// fetch runs one request/response cycle and decodes the body into a
// Page. The body is parsed even on a non-2xx status, since the cluster
// reports its errors in the body; the status only matters when the
// body is not JSON at all.
func (s *Scroller[T]) fetch(req client.Request) (*Page[T], error) {
	resp, err := s.kc.RoundTrip(s.ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	page, err := s.decoder.DecodePage(body)
	if err != nil {
		if err == errMalformed && (resp.StatusCode < 200 || resp.StatusCode > 226) {
			return nil, fmt.Errorf("invalid response code %d for request url %q: %s", resp.StatusCode, req.URL(), body)
		}
		return nil, err
	}

	return page, nil
}

// fail moves the stream to its terminal failed state. Any hits still
// buffered are dropped; the consumer sees exactly one failure and no
// records after it.
func (s *Scroller[T]) fail(err error) error {
	s.state = stateFailed
	s.err = err
	s.buf.Clear()
	s.log.Warn().Err(err).Msg("scroll failed")
	return err
}

// ScrollID returns the current scroll cursor, or "" before the first
// page has arrived.
func (s *Scroller[T]) ScrollID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.scrollID
}

// Close releases every scroll context this stream created on the
// cluster, best effort. The cluster would time them out on its own
// eventually, but they hold memory until then. Subsequent calls to
// Next return io.EOF; Close itself is idempotent.
func (s *Scroller[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.buf.Clear()

	if len(s.seen) == 0 {
		return nil
	}
	ids := make([]string, 0, len(s.seen))
	for id := range s.seen {
		ids = append(ids, id)
	}

	// The stream's own context may already be cancelled; the cleanup
	// call should still go out.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := s.kc.Do(ctx, clearRequest(ids))
	if err != nil {
		s.log.Warn().Err(err).Msg("clear scroll")
		return err
	}
	resp.Body.Close()

	return nil
}
