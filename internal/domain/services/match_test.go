package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/hotserve/internal/domain/entities"
)

func TestCompileSpecMalformedGlob(t *testing.T) {
	_, err := CompileSpec([]string{"["}, nil, t.TempDir())
	require.Error(t, err)

	var cfgErr *entities.ConfigError
	assert.True(t, errors.As(err, &cfgErr), "expected a ConfigError, got %T", err)
	assert.Equal(t, "include", cfgErr.Field)
}

func TestPathSpecExcludeWins(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "src", "vendor"), 0o750))

	spec, err := CompileSpec([]string{"src"}, []string{"src/vendor"}, base)
	require.NoError(t, err)

	assert.True(t, spec.Matches(filepath.Join(base, "src", "app.txt")))
	assert.False(t, spec.Matches(filepath.Join(base, "src", "vendor", "lib.txt")))
	assert.False(t, spec.Matches(filepath.Join(base, "src", "vendor", "deep", "nested.txt")))
}

func TestPathSpecDirectoryRootIsSegmentAware(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "src"), 0o750))

	spec, err := CompileSpec([]string{"src"}, nil, base)
	require.NoError(t, err)

	assert.True(t, spec.Matches(filepath.Join(base, "src", "a.go")))
	assert.True(t, spec.Matches(filepath.Join(base, "src")), "the root itself matches")
	assert.False(t, spec.Matches(filepath.Join(base, "srcfoo", "a.go")), "no partial-segment match")
}

func TestPathSpecLiteralFile(t *testing.T) {
	base := t.TempDir()
	envFile := filepath.Join(base, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("A=1"), 0o600))

	spec, err := CompileSpec([]string{".env"}, nil, base)
	require.NoError(t, err)

	assert.True(t, spec.Matches(envFile))
	assert.False(t, spec.Matches(filepath.Join(base, ".env.local")))
}

func TestPathSpecEmptyIncludeMatchesEverything(t *testing.T) {
	base := t.TempDir()

	spec, err := CompileSpec(nil, []string{"skip"}, base)
	require.NoError(t, err)

	assert.True(t, spec.Matches(filepath.Join(base, "anything", "at", "all.txt")))
	assert.False(t, spec.Matches(filepath.Join(base, "skip", "me.txt")))
}

func TestPathSpecRelativeGlob(t *testing.T) {
	base := t.TempDir()

	spec, err := CompileSpec([]string{"*.css"}, nil, base)
	require.NoError(t, err)

	assert.True(t, spec.Matches(filepath.Join(base, "style.css")))
	// A bare * crosses path separators, same as shell fnmatch.
	assert.True(t, spec.Matches(filepath.Join(base, "sub", "style.css")))
	assert.False(t, spec.Matches(filepath.Join(base, "style.scss")))
}

func TestPathSpecAbsoluteGlob(t *testing.T) {
	base := t.TempDir()

	spec, err := CompileSpec([]string{filepath.Join(base, "assets", "*.js")}, nil, base)
	require.NoError(t, err)

	assert.True(t, spec.Matches(filepath.Join(base, "assets", "app.js")))
	assert.False(t, spec.Matches(filepath.Join(base, "other", "app.js")))
}

func TestPathSpecGlobExclude(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "web"), 0o750))

	spec, err := CompileSpec([]string{"web"}, []string{"*.min.js"}, base)
	require.NoError(t, err)

	assert.True(t, spec.Matches(filepath.Join(base, "web", "app.js")))
	assert.False(t, spec.Matches(filepath.Join(base, "web", "app.min.js")))
}

func TestPathSpecMissingDirHint(t *testing.T) {
	base := t.TempDir()

	// "dist" does not exist; no extension means directory hint.
	spec, err := CompileSpec([]string{"dist"}, nil, base)
	require.NoError(t, err)

	assert.True(t, spec.Matches(filepath.Join(base, "dist", "bundle.js")))
	assert.False(t, spec.Matches(filepath.Join(base, "distance.js")))
}

func TestPathSpecWatchRoots(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "src"), 0o750))

	spec, err := CompileSpec([]string{"src", "src", "missing"}, nil, base)
	require.NoError(t, err)

	roots := spec.WatchRoots()
	assert.Contains(t, roots, filepath.Join(base, "src"))
	// The missing entry falls back to its nearest existing ancestor.
	assert.Contains(t, roots, base)
	assert.Len(t, roots, 2, "roots are deduplicated")
}

func TestPathSpecMatchIsPure(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "src"), 0o750))

	spec, err := CompileSpec([]string{"src"}, []string{"src/gen"}, base)
	require.NoError(t, err)

	path := filepath.Join(base, "src", "main.go")
	first := spec.Matches(path)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, spec.Matches(path))
	}
}
