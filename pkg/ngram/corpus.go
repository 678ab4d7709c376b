package ngram

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"
)

// DefaultCorpusExt is the file extension LoadCorpus uses when given an empty one.
const DefaultCorpusExt = ".txt"

// ErrDecode is matched by every DecodeError.
var ErrDecode = errors.New("corpus file is not valid UTF-8 text")

// DecodeError reports a corpus file whose contents could not be decoded.
type DecodeError struct {
	Name string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not decode corpus file '%s': %v", e.Name, ErrDecode)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// LoadCorpus reads every file in dir whose name ends in ext and returns their
// contents concatenated, each followed by a single space. Subdirectories are
// not visited. A missing directory returns an error matching fs.ErrNotExist;
// a directory without matching files returns an empty string.
func LoadCorpus(dir, ext string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", &fs.PathError{Op: "readdir", Path: dir, Err: errors.New("not a directory")}
	}
	return LoadCorpusFS(os.DirFS(dir), ext)
}

// LoadCorpusFS is LoadCorpus over an fs.FS rooted at the corpus directory.
// Files are read in the order fs.ReadDir returns them, which is sorted by name.
func LoadCorpusFS(fsys fs.FS, ext string) (string, error) {
	if ext == "" {
		ext = DefaultCorpusExt
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return "", fmt.Errorf("could not list corpus directory: %w", err)
	}

	var sb strings.Builder
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		data, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return "", fmt.Errorf("could not read corpus file '%s': %w", entry.Name(), err)
		}
		if !utf8.Valid(data) {
			return "", &DecodeError{Name: entry.Name()}
		}
		sb.Write(data)
		sb.WriteByte(' ')
	}
	return sb.String(), nil
}
