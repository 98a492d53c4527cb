package changelog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

// DefaultHeader is the top-level heading new changelogs start with.
const DefaultHeader = "# Changelog"

// Document is a changelog held as lines. Joining Lines with "\n" reproduces
// the file byte for byte.
type Document struct {
	Lines []string
	// Created is true when the file did not exist and the document was started fresh.
	Created bool
}

// Parse splits content into a Document.
func Parse(content string) *Document {
	return &Document{Lines: strings.Split(content, "\n")}
}

// New returns a document holding only the header line.
func New(header string) *Document {
	return &Document{Lines: []string{header}, Created: true}
}

// String joins the lines back into file content.
func (d *Document) String() string {
	return strings.Join(d.Lines, "\n")
}

// Load reads the changelog at path. When the file does not exist and
// createMissing is set, a document holding just header is returned instead.
func Load(path, header string, createMissing bool) (*Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && createMissing {
		return New(header), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading changelog %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// Save writes the document to path atomically, keeping the existing file mode.
// A symlinked changelog stays a symlink; its target is replaced.
func (d *Document) Save(path string) error {
	target := path
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		target = resolved
	}
	perm := os.FileMode(0o644)
	if st, err := os.Stat(target); err == nil {
		perm = st.Mode().Perm()
	}
	if err := renameio.WriteFile(target, []byte(d.String()), perm); err != nil {
		return fmt.Errorf("writing changelog %s: %w", path, err)
	}
	return nil
}
