// Package tablefile reads and writes replacement tables as CSV.
//
// The file starts with the header row "TextoOriginal,TextoReemplazo" followed
// by one pattern,replacement row per pair.
//
// CSV readers turn CRLF inside quoted fields into LF, so Write stores multi-line
// fields with LF endings and a saved table reads back exactly as it was written.
package tablefile

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"

	"clipreplace/internal/replace"
)

const (
	HeaderPattern     = "TextoOriginal"
	HeaderReplacement = "TextoReemplazo"
)

// FileError wraps any failure to save or load a table file.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Save writes pairs to path. Rows with both fields empty are skipped.
func Save(path string, pairs []replace.Pair) error {
	if path == "" {
		return errors.WithStack(&FileError{Op: "save", Path: path, Err: errors.New("empty path")})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WithStack(&FileError{Op: "save", Path: path, Err: err})
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(&FileError{Op: "save", Path: path, Err: err})
	}

	if err := Write(f, pairs); err != nil {
		f.Close()
		return errors.WithStack(&FileError{Op: "save", Path: path, Err: err})
	}

	if err := f.Close(); err != nil {
		return errors.WithStack(&FileError{Op: "save", Path: path, Err: err})
	}

	return nil
}

// Load reads at most capacity pairs from path.
func Load(path string, capacity int) ([]replace.Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(&FileError{Op: "load", Path: path, Err: err})
	}
	defer f.Close()

	pairs, err := Read(f, capacity)
	if err != nil {
		return nil, errors.WithStack(&FileError{Op: "load", Path: path, Err: err})
	}

	return pairs, nil
}

// Write encodes pairs as CSV, header first. CRLF line endings inside fields
// are written as LF.
func Write(w io.Writer, pairs []replace.Pair) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{HeaderPattern, HeaderReplacement}); err != nil {
		return errors.Errorf("writing header: %w", err)
	}

	for _, p := range pairs {
		if p.Blank() {
			continue
		}
		if err := cw.Write([]string{normalizeNewlines(p.Pattern), normalizeNewlines(p.Replacement)}); err != nil {
			return errors.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Errorf("flushing csv: %w", err)
	}
	return nil
}

// Read decodes CSV pairs. The header row is optional. Missing columns read
// as empty strings, extra columns are ignored, and rows past capacity are
// dropped. A capacity <= 0 means replace.DefaultCapacity.
func Read(r io.Reader, capacity int) ([]replace.Pair, error) {
	if capacity <= 0 {
		capacity = replace.DefaultCapacity
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var pairs []replace.Pair
	first := true
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Errorf("parsing csv: %w", err)
		}

		if first {
			first = false
			if len(record) > 0 {
				record[0] = strings.TrimPrefix(record[0], "\ufeff")
			}
			if isHeader(record) {
				continue
			}
		}

		if len(pairs) >= capacity {
			continue
		}

		var p replace.Pair
		if len(record) > 0 {
			p.Pattern = record[0]
		}
		if len(record) > 1 {
			p.Replacement = record[1]
		}
		pairs = append(pairs, p)
	}

	return pairs, nil
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func isHeader(record []string) bool {
	return len(record) >= 1 && record[0] == HeaderPattern &&
		(len(record) == 1 || record[1] == HeaderReplacement)
}
