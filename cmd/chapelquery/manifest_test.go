package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadManifest(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "manifest.yaml")
	require.NoError(os.WriteFile(manifestPath, []byte(`
revisions:
  - files:
      - path: A.chpl
        text: "module A { var x = 1; }"
    parse: [A.chpl]
  - prepareToGC: true
    files:
      - path: A.chpl
        text: "module A { var x = 2; }"
    parse: [A.chpl]
`), 0o644))

	m, err := LoadManifest(manifestPath)
	require.NoError(err)
	require.Len(m.Revisions, 2)
	assert.False(m.Revisions[0].PrepareToGC)
	assert.True(m.Revisions[1].PrepareToGC)
	assert.Equal("A.chpl", m.Revisions[0].Files[0].Path)
	assert.Equal([]string{"A.chpl"}, m.Revisions[0].Parse)
}

func TestFileSpecResolveLiteral(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	require := require.New(t)

	fs := FileSpec{Path: "A.chpl", Text: "module A {}"}
	resolved, err := fs.Resolve(t.TempDir())
	require.NoError(err)
	require.Len(resolved, 1)
	assert.Equal("A.chpl", resolved[0].Path)
	assert.Equal("module A {}", resolved[0].Text)
}

func TestFileSpecResolveGlob(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	require.NoError(os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(os.WriteFile(filepath.Join(dir, "src", "A.chpl"), []byte("module A {}"), 0o644))
	require.NoError(os.WriteFile(filepath.Join(dir, "src", "B.chpl"), []byte("module B {}"), 0o644))

	fs := FileSpec{Glob: "src/**/*.chpl"}
	resolved, err := fs.Resolve(dir)
	require.NoError(err)
	require.Len(resolved, 2)

	byPath := map[string]string{}
	for _, r := range resolved {
		byPath[r.Path] = r.Text
	}
	assert.Equal("module A {}", byPath["src/A.chpl"])
	assert.Equal("module B {}", byPath["src/B.chpl"])
}
