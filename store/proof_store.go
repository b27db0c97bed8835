package store

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// UploadsURLPrefix is the path under which stored proof images are served.
const UploadsURLPrefix = "/uploads/"

// ProofStore keeps decoded proof images as files, one per task.
// Task records only hold the returned reference, never the image bytes.
type ProofStore struct {
	fs  afero.Fs
	dir string
}

// NewProofStore returns a store writing into dir on fsys.
func NewProofStore(fsys afero.Fs, dir string) *ProofStore {
	if dir == "" {
		dir = "uploads"
	}
	return &ProofStore{fs: fsys, dir: dir}
}

// Dir returns the directory images are written to.
func (p *ProofStore) Dir() string {
	return p.dir
}

// Save writes data as <taskID>.<ext> and returns its URL reference.
// A previous image for the same task with the same extension is replaced.
func (p *ProofStore) Save(taskID, ext string, data []byte) (string, error) {
	staged, err := p.Stage(taskID, ext, data)
	if err != nil {
		return "", err
	}
	if err := staged.Commit(); err != nil {
		return "", err
	}
	return staged.Ref(), nil
}

// StagedProof is an image written under a temporary name. Commit moves it
// over <taskID>.<ext>; Discard drops it and leaves the current image alone.
type StagedProof struct {
	p    *ProofStore
	tmp  string
	name string
}

// Stage writes data next to its final name without touching the current image.
func (p *ProofStore) Stage(taskID, ext string, data []byte) (*StagedProof, error) {
	if taskID == "" {
		return nil, errors.New("proof image needs a task id")
	}
	if err := p.fs.MkdirAll(p.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory %s: %w", p.dir, err)
	}

	name := safeName(taskID) + "." + strings.TrimPrefix(ext, ".")
	f, err := afero.TempFile(p.fs, p.dir, "."+name+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create proof image %s: %w", name, err)
	}
	tmp := f.Name()
	_, werr := f.Write(data)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = p.fs.Chmod(tmp, 0o644)
	}
	if werr != nil {
		_ = p.fs.Remove(tmp)
		return nil, fmt.Errorf("write proof image %s: %w", name, werr)
	}
	return &StagedProof{p: p, tmp: tmp, name: name}, nil
}

// Ref is the reference the image has once committed.
func (s *StagedProof) Ref() string {
	return UploadsURLPrefix + s.name
}

// Commit moves the image to its final name, replacing any previous one.
func (s *StagedProof) Commit() error {
	if err := s.p.fs.Rename(s.tmp, path.Join(s.p.dir, s.name)); err != nil {
		_ = s.p.fs.Remove(s.tmp)
		return fmt.Errorf("write proof image %s: %w", s.name, err)
	}
	return nil
}

// Discard removes the staged file.
func (s *StagedProof) Discard() {
	_ = s.p.fs.Remove(s.tmp)
}

// Remove deletes the file behind ref. References that are not local uploads
// and files that are already gone are ignored.
func (p *ProofStore) Remove(ref string) error {
	if !strings.HasPrefix(ref, UploadsURLPrefix) {
		return nil
	}
	name := path.Base(strings.TrimPrefix(ref, UploadsURLPrefix))
	if name == "." || name == "/" || name == "" {
		return nil
	}
	err := p.fs.Remove(path.Join(p.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove proof image %s: %w", name, err)
	}
	return nil
}

// Open opens a stored image by file name.
func (p *ProofStore) Open(name string) (afero.File, error) {
	return p.fs.Open(path.Join(p.dir, path.Base(name)))
}

// HTTPFileSystem exposes the stored images for http.FileServer.
// Directories and staged files are reported as missing, so the uploads
// directory is never listed.
func (p *ProofStore) HTTPFileSystem() http.FileSystem {
	return imagesOnlyFS{afero.NewHttpFs(afero.NewBasePathFs(p.fs, p.dir))}
}

type imagesOnlyFS struct {
	fs http.FileSystem
}

func (f imagesOnlyFS) Open(name string) (http.File, error) {
	if strings.HasPrefix(path.Base(name), ".") {
		return nil, fs.ErrNotExist
	}
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

// safeName keeps ids usable as file names.
func safeName(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
