package collection

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	// ConfigFile holds collection level settings in the collection root.
	ConfigFile = ".reqfile.json"
	// RootTitle is the title of the root node.
	RootTitle = "root"
)

// Settings is the content of a collection's ConfigFile.
type Settings struct {
	CollectionName string `json:"collectionName"`
}

// Tree is a scanned collection.
type Tree struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Root *Node  `json:"root"`
}

// Load reads the collection settings in root. A missing ConfigFile yields
// the folder base name as collection name.
func Load(fs afero.Fs, root string) (*Settings, error) {
	s := &Settings{CollectionName: filepath.Base(root)}

	data, err := afero.ReadFile(fs, filepath.Join(root, ConfigFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read collection config: %w", err)
	}

	var decoded Settings
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse collection config: %w", err)
	}
	if decoded.CollectionName != "" {
		s.CollectionName = decoded.CollectionName
	}
	return s, nil
}

// FindRoot walks up from dir to the nearest folder holding a ConfigFile.
// It returns dir itself when no such folder exists.
func FindRoot(fs afero.Fs, dir string) string {
	dir = filepath.Clean(dir)
	for cur := dir; ; {
		if ok, _ := afero.Exists(fs, filepath.Join(cur, ConfigFile)); ok {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir
		}
		cur = parent
	}
}
