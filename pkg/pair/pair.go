// Package pair finds netlist / timing-annex file pairs that share a base name.
package pair

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// File extensions that make up a pair. Matching is case-sensitive.
const (
	NetlistExt = ".v"
	AnnexExt   = ".sdf"
)

// ErrNotDirectory is returned when the scanned path is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Pair is a netlist and annex file sharing one base name.
type Pair struct {
	Base        string
	NetlistPath string
	AnnexPath   string
}

// NetlistName returns the netlist file name, e.g. "adder.v".
func (p Pair) NetlistName() string { return p.Base + NetlistExt }

// AnnexName returns the annex file name, e.g. "adder.sdf".
func (p Pair) AnnexName() string { return p.Base + AnnexExt }

type options struct {
	exclude *ignore.GitIgnore
}

// Option configures Locate.
type Option func(*options)

// WithExclude drops files whose names match any of the gitignore-style
// patterns before pairing.
func WithExclude(patterns ...string) Option {
	return func(o *options) {
		if len(patterns) == 0 {
			return
		}
		o.exclude = ignore.CompileIgnoreLines(patterns...)
	}
}

// Locate returns every base name in dir that has both a netlist and an annex
// file directly inside dir, sorted by base name. Subdirectories are not
// visited.
func Locate(dir string, opts ...Option) ([]Pair, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("pair: %s: %w", dir, ErrNotDirectory)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("pair: %s: %w", dir, ErrNotDirectory)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("pair: list %s: %w", dir, err)
	}

	netlists := make(map[string]struct{})
	annexes := make(map[string]struct{})
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if o.exclude != nil && o.exclude.MatchesPath(name) {
			continue
		}
		switch {
		case strings.HasSuffix(name, NetlistExt):
			netlists[stem(name)] = struct{}{}
		case strings.HasSuffix(name, AnnexExt):
			annexes[stem(name)] = struct{}{}
		}
	}

	var pairs []Pair
	for base := range netlists {
		if _, ok := annexes[base]; !ok {
			continue
		}
		pairs = append(pairs, Pair{
			Base:        base,
			NetlistPath: filepath.Join(dir, base+NetlistExt),
			AnnexPath:   filepath.Join(dir, base+AnnexExt),
		})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Base < pairs[j].Base
	})
	return pairs, nil
}

// BaseNames returns only the base names found by Locate.
func BaseNames(dir string, opts ...Option) ([]string, error) {
	pairs, err := Locate(dir, opts...)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(pairs))
	for i, p := range pairs {
		names[i] = p.Base
	}
	return names, nil
}

// stem strips the last extension from name.
func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
