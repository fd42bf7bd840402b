package token

// Provider is a generic interface for a service that provides the API
// key for the client to authenticate with
type Provider interface {

	// Retrieves the current key at the time - this may return a fixed
	// or cached value, or it may go and do some work to acquire the
	// latest valid key.
	Token() string
}
