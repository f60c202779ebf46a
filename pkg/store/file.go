package store

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/haplonet/pkg/document"
	"github.com/matzehuels/haplonet/pkg/errors"
	"github.com/matzehuels/haplonet/pkg/observability"
)

const fileBackend = "file"

// FileStore keeps each document in <dir>/<id>.json.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, d *document.Document) (err error) {
	start := time.Now()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	defer func() {
		observability.Store().OnSave(ctx, fileBackend, d.ID, len(d.Nodes), time.Since(start), err)
	}()
	path, err := s.path(d.ID)
	if err != nil {
		return err
	}
	return document.Save(d, path)
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context, id string) (d *document.Document, err error) {
	start := time.Now()
	defer func() {
		observability.Store().OnLoad(ctx, fileBackend, id, time.Since(start), err)
	}()
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	d, err = document.Load(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.New(errors.ErrCodeNotFound, "scene %s not found", id)
	}
	return d, err
}

// List implements Store.
func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var out []Summary
	for _, e := range entries {
		id, ok := strings.CutSuffix(e.Name(), ".json")
		if !ok || e.IsDir() {
			continue
		}
		d, err := document.Load(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		if d.ID == "" {
			d.ID = id
		}
		out = append(out, summarize(d))
	}
	sortSummaries(out)
	return out, nil
}

// Delete implements Store.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return errors.New(errors.ErrCodeNotFound, "scene %s not found", id)
	}
	return err
}

// Close does nothing.
func (s *FileStore) Close(context.Context) error { return nil }

func (s *FileStore) path(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid scene id %q", id)
	}
	return filepath.Join(s.dir, id+".json"), nil
}

func sortSummaries(s []Summary) {
	slices.SortStableFunc(s, func(a, b Summary) int {
		if c := b.Modified.Compare(a.Modified); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

var _ Store = (*FileStore)(nil)
