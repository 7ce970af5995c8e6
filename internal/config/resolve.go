package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/securegit/securegit/internal/logger"
	"gopkg.in/yaml.v3"
)

// LocalNames are the repo-local config file names, in search order.
var LocalNames = []string{"securegit.json", "securegit.yml", "securegit.yaml"}

// GlobalNames are the user-global config file names under $HOME, in search order.
var GlobalNames = []string{".securegit.json", ".securegit.yml", ".securegit.yaml"}

var log = logger.WithName("config")

// Resolution is an effective configuration and where it came from.
type Resolution struct {
	Config Config
	Source string // empty when built-in defaults are used
	Report MergeReport
}

// Candidates returns the config paths to probe for a repository: the
// working tree root first, then the git directory (where the hook installer
// places its copy), then the user's home directory.
func Candidates(root, gitDir string) []string {
	var out []string
	if root != "" {
		for _, n := range LocalNames {
			out = append(out, filepath.Join(root, n))
		}
	}
	if gitDir != "" {
		out = append(out, filepath.Join(gitDir, "securegit.json"))
	}
	if home, err := homedir.Dir(); err == nil && home != "" {
		for _, n := range GlobalNames {
			out = append(out, filepath.Join(home, n))
		}
	}
	return out
}

// Resolve probes candidates in order; the first existing file overrides the
// built-in defaults. No existing file is not an error.
func Resolve(candidates []string) (Resolution, error) {
	for _, p := range candidates {
		st, err := os.Stat(p)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.V(1).InfoS("Skipping config candidate", "path", p, "error", err)
			}
			continue
		}
		if st.IsDir() {
			continue
		}
		return LoadFile(p)
	}
	log.V(1).InfoS("No config file found, using defaults", "candidates", len(candidates))
	return Resolution{Config: Default()}, nil
}

// LoadFile merges the document at path into the defaults. Any failure to read
// or decode the file is a *ParseError.
func LoadFile(path string) (Resolution, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return Resolution{}, &ParseError{Path: path, Err: err}
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return Resolution{}, &ParseError{Path: p, Err: err}
	}
	res, err := Parse(b)
	if err != nil {
		return Resolution{}, &ParseError{Path: p, Err: err}
	}
	res.Source = p
	log.V(1).InfoS("Loaded config", "path", p, "replaced", res.Report.Replaced,
		"excluded", res.Report.Excluded, "expanded", res.Report.Expanded, "ignored", res.Report.Ignored)
	return res, nil
}

// Parse decodes an override document (JSON or YAML) and merges it into the
// built-in defaults.
func Parse(data []byte) (Resolution, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Resolution{}, err
	}
	// empty, whitespace-only and null documents decode to a nil map
	if doc == nil {
		return Resolution{}, errors.New("top level must be a mapping")
	}
	def := Default()
	merged, rep := Merge(def.Document(), doc)

	var node yaml.Node
	if err := node.Encode(merged); err != nil {
		return Resolution{}, fmt.Errorf("encode merged config: %w", err)
	}
	var fc fileConfig
	if err := node.Decode(&fc); err != nil {
		return Resolution{}, err
	}
	return Resolution{Config: fc.resolve(def), Report: rep}, nil
}
