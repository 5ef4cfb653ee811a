package credstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// File persists credentials as JSON on disk, for CLI-style clients that
// outlive a process.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Get() (Credentials, bool) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return Credentials{}, false
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, false
	}
	if creds.Token == "" {
		return Credentials{}, false
	}
	return creds, true
}

func (f *File) Set(creds Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}

func (f *File) Clear() error {
	err := os.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
