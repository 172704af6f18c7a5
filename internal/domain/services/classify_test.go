package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/hotserve/internal/domain/entities"
)

// newTestClassifier builds a classifier rooted in a temp dir with a
// typical layout: reload covers everything except vendor, assets live in
// static/, and .env forces a restart.
func newTestClassifier(t *testing.T, refresh bool) (*Classifier, string) {
	t.Helper()
	base := t.TempDir()

	reload, err := CompileSpec([]string{"."}, []string{"vendor"}, base)
	require.NoError(t, err)

	asset, err := CompileSpec([]string{"static"}, nil, base)
	require.NoError(t, err)

	c := NewClassifier(reload, asset, []string{".env"}, []string{".go"}, refresh, base)
	return c, base
}

func TestClassifierPrecedence(t *testing.T) {
	c, base := newTestClassifier(t, true)

	tests := []struct {
		name     string
		path     string
		expected Classification
	}{
		{"forced file is code", filepath.Join(base, ".env"), ClassCode},
		{"source suffix is code", filepath.Join(base, "main.go"), ClassCode},
		{"asset dir is asset", filepath.Join(base, "static", "style.css"), ClassAsset},
		{"reload dir is code", filepath.Join(base, "docs", "notes.txt"), ClassCode},
		{"excluded is ignored", filepath.Join(base, "vendor", "dep.txt"), ClassIgnored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.Classify(tt.path))
		})
	}
}

func TestClassifierSourceSuffixBeatsAssetSpec(t *testing.T) {
	base := t.TempDir()

	reload, err := CompileSpec([]string{"."}, nil, base)
	require.NoError(t, err)

	// webui is an asset include with no excludes; a .go file inside it
	// must still classify as code.
	asset, err := CompileSpec([]string{"webui"}, nil, base)
	require.NoError(t, err)

	c := NewClassifier(reload, asset, nil, []string{".go"}, true, base)

	assert.Equal(t, ClassCode, c.Classify(filepath.Join(base, "webui", "app.go")))
	assert.Equal(t, ClassAsset, c.Classify(filepath.Join(base, "webui", "app.css")))
}

func TestClassifierForcedFileBeatsEverything(t *testing.T) {
	c, base := newTestClassifier(t, true)

	env := filepath.Join(base, ".env")
	assert.True(t, c.IsForced(env))
	assert.Equal(t, ClassCode, c.Classify(env))
	assert.False(t, c.IsForced(filepath.Join(base, "main.go")))
}

func TestClassifierRefreshDisabled(t *testing.T) {
	c, base := newTestClassifier(t, false)

	// With refresh off the asset spec is never consulted; static files
	// fall through to the reload spec.
	assert.Equal(t, ClassCode, c.Classify(filepath.Join(base, "static", "style.css")))
}

func TestClassifyBatchCodeWins(t *testing.T) {
	c, base := newTestClassifier(t, true)

	batch := entities.NewChangeBatch()
	batch.Add(entities.ChangeEvent{Path: filepath.Join(base, "static", "style.css"), Kind: entities.Modified})
	batch.Add(entities.ChangeEvent{Path: filepath.Join(base, "main.go"), Kind: entities.Modified})

	class, forced := c.ClassifyBatch(batch)
	assert.Equal(t, ClassCode, class)
	assert.False(t, forced)
}

func TestClassifyBatchAssetOnly(t *testing.T) {
	c, base := newTestClassifier(t, true)

	batch := entities.NewChangeBatch()
	batch.Add(entities.ChangeEvent{Path: filepath.Join(base, "static", "a.css"), Kind: entities.Modified})
	batch.Add(entities.ChangeEvent{Path: filepath.Join(base, "static", "b.svg"), Kind: entities.Created})

	class, forced := c.ClassifyBatch(batch)
	assert.Equal(t, ClassAsset, class)
	assert.False(t, forced)
}

func TestClassifyBatchFullyIgnored(t *testing.T) {
	c, base := newTestClassifier(t, true)

	batch := entities.NewChangeBatch()
	batch.Add(entities.ChangeEvent{Path: filepath.Join(base, "vendor", "dep.txt"), Kind: entities.Modified})

	class, forced := c.ClassifyBatch(batch)
	assert.Equal(t, ClassIgnored, class)
	assert.False(t, forced)
}

func TestClassifyBatchForcedFlag(t *testing.T) {
	c, base := newTestClassifier(t, true)

	batch := entities.NewChangeBatch()
	batch.Add(entities.ChangeEvent{Path: filepath.Join(base, ".env"), Kind: entities.Modified})

	class, forced := c.ClassifyBatch(batch)
	assert.Equal(t, ClassCode, class)
	assert.True(t, forced)
}

func TestClassifyIsPure(t *testing.T) {
	c, base := newTestClassifier(t, true)

	path := filepath.Join(base, "static", "style.css")
	first := c.Classify(path)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify(path))
	}
}
