package services

import (
	"path/filepath"
	"strings"

	"github.com/fredcamaral/hotserve/internal/domain/entities"
)

// Classification is the action category of a change
type Classification int

const (
	// ClassIgnored means the change produces no action
	ClassIgnored Classification = iota
	// ClassAsset means the change only needs a client refresh
	ClassAsset
	// ClassCode means the change needs a server restart
	ClassCode
)

// String returns the string representation of Classification
func (c Classification) String() string {
	switch c {
	case ClassIgnored:
		return "ignored"
	case ClassAsset:
		return "asset"
	case ClassCode:
		return "code"
	default:
		return "unknown"
	}
}

// Classifier maps change events to an action category. Precedence, highest
// first: forced-restart file, source-code suffix, asset spec (when refresh
// is enabled), reload spec. Classification is a pure function of the
// compiled specs; it never fails at runtime.
type Classifier struct {
	reload   *PathSpec
	asset    *PathSpec
	forced   map[string]struct{}
	codeExts map[string]struct{}
	refresh  bool
	baseDir  string
}

// NewClassifier creates a classifier from compiled specs. The asset spec
// is only consulted when refresh is true.
func NewClassifier(reload, asset *PathSpec, forcedFiles, codeExtensions []string, refresh bool, baseDir string) *Classifier {
	c := &Classifier{
		reload:   reload,
		asset:    asset,
		forced:   make(map[string]struct{}, len(forcedFiles)),
		codeExts: make(map[string]struct{}, len(codeExtensions)),
		refresh:  refresh,
		baseDir:  baseDir,
	}

	for _, f := range forcedFiles {
		c.forced[c.resolve(f)] = struct{}{}
	}
	for _, ext := range codeExtensions {
		c.codeExts[strings.ToLower(ext)] = struct{}{}
	}

	return c
}

// Classify maps a single path to its action category
func (c *Classifier) Classify(path string) Classification {
	resolved := c.resolve(path)

	if _, ok := c.forced[resolved]; ok {
		return ClassCode
	}

	if _, ok := c.codeExts[strings.ToLower(filepath.Ext(resolved))]; ok {
		return ClassCode
	}

	if c.refresh && c.asset != nil && c.asset.Matches(resolved) {
		return ClassAsset
	}

	if c.reload.Matches(resolved) {
		return ClassCode
	}

	return ClassIgnored
}

// IsForced reports whether the path is a forced-restart file
func (c *Classifier) IsForced(path string) bool {
	_, ok := c.forced[c.resolve(path)]
	return ok
}

// ForcedFiles returns the resolved forced-restart paths
func (c *Classifier) ForcedFiles() []string {
	out := make([]string, 0, len(c.forced))
	for f := range c.forced {
		out = append(out, f)
	}
	return out
}

// ClassifyBatch folds a batch into one category: code wins over asset,
// asset wins over ignored. One ambiguous change invalidates cheap-refresh
// optimism. Forced is true when any event hit a forced-restart file.
func (c *Classifier) ClassifyBatch(batch *entities.ChangeBatch) (class Classification, forced bool) {
	for _, ev := range batch.Events() {
		if c.IsForced(ev.Path) {
			forced = true
		}
		if got := c.Classify(ev.Path); got > class {
			class = got
		}
	}
	return class, forced
}

func (c *Classifier) resolve(path string) string {
	path = expandUser(path)
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.baseDir, path)
	}
	return filepath.Clean(path)
}
