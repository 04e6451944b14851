package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// FileEntry is one component definition in a catalog file.
type FileEntry struct {
	Label    string   `yaml:"label" validate:"required,max=64"`
	Patterns []string `yaml:"patterns" validate:"required,min=1,dive,required"`
}

// File is the on-disk catalog format:
//
//	components:
//	  - label: Flip-Flop
//	    patterns: ['\bDFF\b', '\bFDRE\b']
//	delay_pattern: triple
type File struct {
	Components   []FileEntry `yaml:"components" validate:"required,min=1,dive"`
	DelayPattern string      `yaml:"delay_pattern,omitempty"`
}

// Load reads a catalog file and compiles it.
func Load(path string) (*Catalog, *DelayPattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	c, p, err := Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return c, p, nil
}

// Decode parses and validates a YAML catalog. The returned delay pattern is
// nil when the file does not name one.
func Decode(r io.Reader) (*Catalog, *DelayPattern, error) {
	var file File
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, ErrEmptyCatalog
		}
		return nil, nil, fmt.Errorf("decode: %w", err)
	}
	if err := validate.Struct(&file); err != nil {
		return nil, nil, formatValidationError(err)
	}

	entries := make([]Entry, 0, len(file.Components))
	for _, fe := range file.Components {
		entries = append(entries, Entry{Label: fe.Label, Patterns: fe.Patterns})
	}
	c, err := New(entries...)
	if err != nil {
		return nil, nil, err
	}

	var p *DelayPattern
	if file.DelayPattern != "" {
		p, err = LookupDelayPattern(file.DelayPattern)
		if err != nil {
			return nil, nil, err
		}
	}
	return c, p, nil
}

// Export converts c back into its file form.
func Export(c *Catalog, p *DelayPattern) *File {
	file := &File{}
	for _, label := range c.Labels() {
		file.Components = append(file.Components, FileEntry{
			Label:    label,
			Patterns: c.Patterns(label),
		})
	}
	if p != nil {
		file.DelayPattern = p.Name
		if p.Name == "custom" {
			file.DelayPattern = p.String()
		}
	}
	return file
}

// Encode writes c as YAML.
func Encode(w io.Writer, c *Catalog, p *DelayPattern) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Export(c, p)); err != nil {
		return err
	}
	return enc.Close()
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid catalog: %s", strings.Join(msgs, "; "))
}
