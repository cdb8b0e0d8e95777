package file

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/ports"
)

// Default file extensions appended to names that have none.
const (
	ScriptExt = ".txt"
	ImageExt  = ".png"
)

// ErrInvalidName is returned for empty names and relative names that leave the base directory.
var ErrInvalidName = errors.New("invalid name")

var (
	_ ports.ScriptStore = (*ScriptStore)(nil)
	_ ports.ImageStore  = (*ImageStore)(nil)
)

// Option configures a file store.
type Option func(*dir)

// WithAbsolutePaths lets callers name files anywhere on disk with absolute paths.
// Relative names always stay under the base directory.
func WithAbsolutePaths() Option {
	return func(d *dir) {
		d.absolute = true
	}
}

// ScriptStore keeps each script as a UTF-8 text file, one command per line.
type ScriptStore struct {
	dir dir
}

// NewScriptStore creates a script store rooted at basePath.
// If basePath is empty, it defaults to "turtle-data/scripts".
func NewScriptStore(basePath string, opts ...Option) *ScriptStore {
	return &ScriptStore{dir: newDir(basePath, "scripts", ScriptExt, domain.ErrScriptNotFound, opts)}
}

func (s *ScriptStore) Save(ctx context.Context, name string, lines []string) error {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	return s.dir.write(name, buf.Bytes())
}

func (s *ScriptStore) Load(ctx context.Context, name string) ([]string, error) {
	data, err := s.dir.read(name)
	if err != nil {
		return nil, err
	}

	// Lines have no length limit; a saved script must always load back.
	var lines []string
	r := bufio.NewReader(bytes.NewReader(data))
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			lines = append(lines, strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"))
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read script %q: %w", name, err)
		}
	}
}

func (s *ScriptStore) Delete(ctx context.Context, name string) error {
	return s.dir.remove(name)
}

func (s *ScriptStore) List(ctx context.Context) ([]string, error) {
	return s.dir.list()
}

// ImageStore keeps each image as a PNG file.
type ImageStore struct {
	dir dir
}

// NewImageStore creates an image store rooted at basePath.
// If basePath is empty, it defaults to "turtle-data/images".
func NewImageStore(basePath string, opts ...Option) *ImageStore {
	return &ImageStore{dir: newDir(basePath, "images", ImageExt, domain.ErrImageNotFound, opts)}
}

func (s *ImageStore) Save(ctx context.Context, name string, data []byte) error {
	return s.dir.write(name, data)
}

func (s *ImageStore) Load(ctx context.Context, name string) ([]byte, error) {
	return s.dir.read(name)
}

func (s *ImageStore) Delete(ctx context.Context, name string) error {
	return s.dir.remove(name)
}

func (s *ImageStore) List(ctx context.Context) ([]string, error) {
	return s.dir.list()
}

type dir struct {
	base     string
	ext      string
	notFound error
	absolute bool
}

func newDir(base, sub, ext string, notFound error, opts []Option) dir {
	if base == "" {
		base = filepath.Join("turtle-data", sub)
	}
	d := dir{base: base, ext: ext, notFound: notFound}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// path resolves a name to a file path, appending the default extension when missing.
func (d *dir) path(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if filepath.Ext(name) == "" {
		name += d.ext
	}
	if filepath.IsAbs(name) {
		if !d.absolute {
			return "", fmt.Errorf("%w: %q is absolute", ErrInvalidName, name)
		}
		return filepath.Clean(name), nil
	}
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: %q leaves the store directory", ErrInvalidName, name)
	}
	return filepath.Join(d.base, name), nil
}

// write stores data atomically: temp file in the same directory, fsync, rename.
func (d *dir) write(name string, data []byte) error {
	dest, err := d.path(name)
	if err != nil {
		return err
	}
	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("failed to ensure directory: %w", err)
	}

	tmp, err := os.CreateTemp(parent, ".tmp-"+filepath.Base(dest)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Windows cannot rename onto an existing file.
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("failed to remove existing file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (d *dir) read(name string) ([]byte, error) {
	p, err := d.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, d.notFound
		}
		return nil, fmt.Errorf("failed to read %q: %w", p, err)
	}
	return data, nil
}

func (d *dir) remove(name string) error {
	p, err := d.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %q: %w", p, err)
	}
	return nil
}

// list returns the names (without the default extension) of every file under base.
func (d *dir) list() ([]string, error) {
	var names []string
	err := filepath.WalkDir(d.base, func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() || strings.HasPrefix(e.Name(), ".tmp-") || filepath.Ext(p) != d.ext {
			return nil
		}
		rel, err := filepath.Rel(d.base, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(strings.TrimSuffix(rel, d.ext)))
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list %q: %w", d.base, err)
	}
	sort.Strings(names)
	return names, nil
}
