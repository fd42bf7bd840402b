package token_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lunehart/esstream/pkg/token"
)

func TestStatic(t *testing.T) {
	x := require.New(t)

	x.Equal("abc123", token.NewStatic("abc123").Token())
}

func TestFileReadsAndTrims(t *testing.T) {
	x := require.New(t)

	path := filepath.Join(t.TempDir(), "api-key")
	x.NoError(os.WriteFile(path, []byte("abc123\n"), 0o600))

	tp, err := token.NewFile(path)
	x.NoError(err)
	x.Equal("abc123", tp.Token())
}

func TestFileMissing(t *testing.T) {
	x := require.New(t)

	_, err := token.NewFile(filepath.Join(t.TempDir(), "nope"))
	x.Error(err)
}

func TestFileFollowsRotation(t *testing.T) {
	x := require.New(t)

	path := filepath.Join(t.TempDir(), "api-key")
	x.NoError(os.WriteFile(path, []byte("old"), 0o600))

	tp, err := token.NewFile(path)
	x.NoError(err)
	x.Equal("old", tp.Token())

	x.NoError(os.WriteFile(path, []byte("new\n"), 0o600))
	x.Eventually(func() bool {
		return tp.Token() == "new"
	}, 2*time.Second, 10*time.Millisecond)
}
