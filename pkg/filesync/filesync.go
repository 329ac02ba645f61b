// Package filesync tracks which local course files have already been pushed
// to Canvas. A directory opts files in through upload_list.json; the hidden
// .canvas-sync.json manifest remembers the content hash of each upload so
// unchanged files are skipped.
package filesync

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	UploadListName = "upload_list.json"
	manifestName   = ".canvas-sync.json"
)

// Entry records one uploaded file.
type Entry struct {
	Hash   string `json:"hash"`
	FileID int    `json:"file_id,omitempty"`
}

// Manifest maps file name to its last-uploaded state within one directory.
type Manifest map[string]Entry

func manifestPath(dir string) string {
	return filepath.Join(dir, manifestName)
}

func LoadManifest(dir string) (Manifest, error) {
	b, err := os.ReadFile(manifestPath(dir))
	if os.IsNotExist(err) {
		return Manifest{}, nil
	}
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("bad manifest %s: %w", manifestPath(dir), err)
	}
	return m, nil
}

func (m Manifest) Save(dir string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(manifestPath(dir), b, 0o644)
}

// Changed reports whether name's content differs from its manifest entry.
func (m Manifest) Changed(name, hash string) bool {
	old, ok := m[name]
	return !ok || old.Hash != hash
}

// HashFile md5-hashes a file's content, matching the manifest format.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// LoadUploadList reads the directory's opt-in file list.
func LoadUploadList(dir string) ([]string, error) {
	b, err := os.ReadFile(filepath.Join(dir, UploadListName))
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return nil, fmt.Errorf("%s must be a JSON list of file names: %w", UploadListName, err)
	}
	return names, nil
}

// Track appends path's base name to its directory's upload list if absent.
// It reports whether the list changed.
func Track(path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, fmt.Errorf("%s is a directory", abs)
	}

	dir := filepath.Dir(abs)
	name := filepath.Base(abs)

	names, err := LoadUploadList(dir)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return false, nil
		}
	}
	names = append(names, name)

	b, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return false, err
	}
	return true, os.WriteFile(filepath.Join(dir, UploadListName), b, 0o644)
}
