// Package episodefile stores one JSON document per episode in a directory.
// Files are never overwritten: an existing file means the episode was already
// handled by that stage.
package episodefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"

	"ghostal/pkg/domain"
)

const (
	extension = ".json"
	lockName  = ".ghostal.lock"
)

var (
	ErrEpisodeExists = errors.New("episode file already exists")
	ErrEmptyName     = errors.New("episode has neither title nor url")
	ErrLocked        = errors.New("directory is locked by another ghostal run")
)

// invalidNameChars are stripped from titles before they become file names.
const invalidNameChars = `<>:"/\|?*`

// SanitizeName removes characters that are invalid in file names and trims spaces.
func SanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidNameChars, r) {
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(name)
}

// FileName derives the file name for an episode from its title, or from its url
// ("?ep=12" -> "episode_12") when the title is absent.
func FileName(meta domain.EpisodeMeta) (string, error) {
	base := domain.Deref(meta.Title)
	if strings.TrimSpace(base) == "" {
		base = strings.ReplaceAll(meta.URL, "?ep=", "episode_")
	}

	base = SanitizeName(base)
	if base == "" {
		return "", ErrEmptyName
	}
	return base + extension, nil
}

// Dir is a directory of episode files.
type Dir struct {
	root string
}

// NewDir returns a Dir rooted at path. The directory is created lazily on first write.
func NewDir(path string) *Dir {
	return &Dir{root: path}
}

// Root returns the directory path.
func (d *Dir) Root() string {
	return d.root
}

// Path joins name onto the directory.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.root, name)
}

// Exists reports whether name is already present.
func (d *Dir) Exists(name string) bool {
	_, err := os.Stat(d.Path(name))
	return err == nil
}

// Save writes v as indented JSON to name. It returns ErrEpisodeExists, without
// touching the file, when name is already present.
func (d *Dir) Save(name string, v any) error {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", d.root, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(d.Path(name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrEpisodeExists
		}
		return fmt.Errorf("create %s: %w", name, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}

// List returns the names of all episode files, sorted.
func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", d.root, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), extension) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// KnownURLs returns the url field of every readable file in the directory.
// A missing directory yields an empty set.
func (d *Dir) KnownURLs() (map[string]bool, error) {
	known := make(map[string]bool)

	names, err := d.List()
	if errors.Is(err, fs.ErrNotExist) {
		return known, nil
	}
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		var meta domain.EpisodeMeta
		if err := readJSON(d.Path(name), &meta); err != nil {
			continue // unreadable files are reported by the stage that reads them
		}
		if meta.URL != "" {
			known[meta.URL] = true
		}
	}
	return known, nil
}

// Lock takes an exclusive advisory lock on the directory so two runs cannot
// write into it at once. The returned func releases it.
func (d *Dir) Lock() (func() error, error) {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", d.root, err)
	}

	lock := flock.New(d.Path(lockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, d.root)
	}
	return lock.Unlock, nil
}

// ReadEpisode decodes a raw (scraped) episode file.
func ReadEpisode(path string) (*domain.Episode, error) {
	var ep domain.Episode
	if err := readJSON(path, &ep); err != nil {
		return nil, err
	}
	return &ep, nil
}

// ReadProcessed decodes a preprocessed episode file.
func ReadProcessed(path string) (*domain.ProcessedEpisode, error) {
	var ep domain.ProcessedEpisode
	if err := readJSON(path, &ep); err != nil {
		return nil, err
	}
	return &ep, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
