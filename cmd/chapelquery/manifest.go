package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Manifest describes a sequence of revisions to feed into a
// progdb.Context. It is the configuration format cmd/chapelquery reads;
// there is nothing else to configure, since the engine itself takes no
// options.
type Manifest struct {
	Revisions []RevisionSpec `yaml:"revisions"`
}

// RevisionSpec is one entry in the manifest: the file and module-path
// inputs to set before advancing, whether to request a GC on the
// subsequent advance, and which files to run the Parse query on afterward.
type RevisionSpec struct {
	Files       []FileSpec       `yaml:"files"`
	ModulePaths []ModulePathSpec `yaml:"modulePaths"`
	Parse       []string         `yaml:"parse"`
	PrepareToGC bool             `yaml:"prepareToGC"`
}

// FileSpec sets one file's text. Exactly one of Text or Glob must be set:
// Text gives the literal contents of Path; Glob expands to every file
// matching the pattern (relative to the manifest's directory), read from
// disk, each installed under its matched path.
type FileSpec struct {
	Path string `yaml:"path"`
	Text string `yaml:"text"`
	Glob string `yaml:"glob"`
}

// ModulePathSpec records which file defines a module, for
// Context.SetFilePathForModuleName.
type ModulePathSpec struct {
	Module string `yaml:"module"`
	Path   string `yaml:"path"`
}

// LoadManifest parses the YAML manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

// resolvedFile is one (path, text) pair ready to hand to SetFileText,
// after a FileSpec's Glob (if any) has been expanded against baseDir.
type resolvedFile struct {
	Path string
	Text string
}

// Resolve expands fs against baseDir, the directory the manifest file
// lives in: a literal Text entry passes through unchanged, while a Glob
// entry is matched with doublestar and each hit is read from disk, with
// its matched path (relative to baseDir) used as the file's key.
func (fs FileSpec) Resolve(baseDir string) ([]resolvedFile, error) {
	if fs.Glob == "" {
		return []resolvedFile{{Path: fs.Path, Text: fs.Text}}, nil
	}

	matches, err := doublestar.Glob(os.DirFS(baseDir), fs.Glob)
	if err != nil {
		return nil, fmt.Errorf("invalid glob %q: %w", fs.Glob, err)
	}

	resolved := make([]resolvedFile, 0, len(matches))
	for _, m := range matches {
		text, err := os.ReadFile(filepath.Join(baseDir, m))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", m, err)
		}
		resolved = append(resolved, resolvedFile{Path: m, Text: string(text)})
	}
	return resolved, nil
}
