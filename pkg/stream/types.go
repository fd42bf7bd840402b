// Package stream implements a set of generic interfaces and classes
// designed to allow streams of atomic records to be pipelined, much
// like one might do with an [io.Reader]
package stream

// A Stream is able to provide a source of atomic data values on
// demand: each call to Next is one unit of demand, and a Stream never
// produces values that have not been asked for.
//
// The source of a Stream's data is implementation specific - an
// example may be paging through a remote search engine's result set.
//
// Next blocks until the next value is available and returns it.
// Returns [io.EOF] once the source is exhausted, or the error that
// terminated the stream; either is terminal and repeated calls keep
// returning it.
type Stream[T any] interface {
	Next() (T, error)
}
