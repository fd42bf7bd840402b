package token

// Static is a Provider wrapper for a fixed API key
type Static struct {
	token string
}

func NewStatic(token string) *Static {
	return &Static{token: token}
}

func (t *Static) Token() string {
	return t.token
}
