// Package textfile reads documents from local files and standard input.
package textfile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"textdigest/internal/domain/entity"
	"textdigest/internal/infra/htmltext"
	"textdigest/internal/usecase/digest"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// MaxFileSize bounds the size of a single input.
const MaxFileSize = 32 << 20

// Source is a digest.TextSource producing one document from a file, or from
// standard input when the path is "-". Files ending in .html or .htm are
// flattened to text.
type Source struct {
	name  string
	path  string
	stdin io.Reader
	now   func() time.Time
}

var _ digest.TextSource = (*Source)(nil)

// NewSource creates a source for path. An empty name defaults to the path, or
// "stdin" for standard input.
func NewSource(name, path string) *Source {
	if name == "" {
		name = path
		if path == Stdin {
			name = "stdin"
		}
	}
	return &Source{name: name, path: path, stdin: os.Stdin, now: time.Now}
}

// NewReaderSource creates a source reading r in place of standard input.
func NewReaderSource(name string, r io.Reader) *Source {
	s := NewSource(name, Stdin)
	s.stdin = r
	return s
}

// Name implements digest.TextSource.
func (s *Source) Name() string { return s.name }

// Kind implements digest.TextSource.
func (s *Source) Kind() entity.SourceKind { return entity.SourceKindFile }

// Documents implements digest.TextSource.
func (s *Source) Documents(ctx context.Context) ([]entity.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		data []byte
		err  error
	)
	if s.path == Stdin {
		data, err = readLimited(s.stdin)
	} else {
		data, err = readFile(s.path)
	}
	if err != nil {
		return nil, err
	}

	text := string(data)
	switch filepath.Ext(s.path) {
	case ".html", ".htm":
		text = htmltext.ToText(text)
	}

	return []entity.Document{{
		Title:      s.name,
		Origin:     s.path,
		Text:       text,
		ReceivedAt: s.now(),
	}}, nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	return readLimited(f)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("input larger than %d bytes", MaxFileSize)
	}
	return data, nil
}
