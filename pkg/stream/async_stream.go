package stream

import (
	"errors"
	"io"
	"sync"
)

// Async acts as a wrapper for any Stream and allows records to be
// consumed from it asynchronously over a channel.
//
// Most streams are synchronous by their nature, because the underlying
// source needs to be read sequentially, however once pulled its common
// that records can be processed independently.
type Async[T any] struct {
	stream Stream[T]
	result chan T
	done   chan struct{}
	once   sync.Once

	lock sync.RWMutex
	err  error
}

func NewAsync[T any](stream Stream[T]) *Async[T] {
	as := &Async[T]{
		stream: stream,
		result: make(chan T),
		done:   make(chan struct{}),
	}

	go as.run()

	return as
}

func (as *Async[T]) Stopped() bool {
	select {
	case <-as.done:
		return true
	default:
		return false
	}
}

// run pulls from the stream in a loop and sends down the result
// channel. The result channel is only ever closed here, so a pending
// send can never race a close.
func (as *Async[T]) run() {
	defer close(as.result)
	defer as.release()

	for {
		result, err := as.stream.Next()
		if err != nil {
			// EOF is the stream's normal end, not a failure.
			if !errors.Is(err, io.EOF) {
				as.lock.Lock()
				as.err = err
				as.lock.Unlock()
			}
			return
		}

		select {
		case as.result <- result:
		case <-as.done:
			return
		}
	}
}

// Stop halts the pull loop. No further records are delivered after it
// returns, though the result channel may hold one in-flight record.
func (as *Async[T]) Stop() {
	as.once.Do(func() {
		close(as.done)
	})
	as.release()
}

// release closes the underlying stream, if it can be closed, so any
// remote resources are freed on termination of either kind.
func (as *Async[T]) release() {
	if closer, ok := as.stream.(io.Closer); ok {
		closer.Close()
	}
}

// ResultChan returns the channel records are delivered on. It is
// closed when the stream ends for any reason; check Err afterwards to
// distinguish exhaustion from failure.
func (as *Async[T]) ResultChan() <-chan T {
	return as.result
}

func (as *Async[T]) Err() error {
	as.lock.RLock()
	defer as.lock.RUnlock()

	return as.err
}
