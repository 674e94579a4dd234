package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"readtrack/internal/modules/hook/domain"
	hookout "readtrack/internal/modules/hook/port/out"
)

// FileManifestStore reads <vault>/plugins/hooks.json. Relative binary paths
// resolve against the vault root.
type FileManifestStore struct {
	vaultPath string
	path      string
}

func NewFileManifestStore(vaultPath string) hookout.ManifestStore {
	return &FileManifestStore{vaultPath: vaultPath, path: filepath.Join(vaultPath, "plugins", "hooks.json")}
}

func (s *FileManifestStore) Load(_ context.Context) ([]domain.Manifest, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open hook manifests: %w", err)
	}
	defer func() { _ = f.Close() }()

	var manifests []domain.Manifest
	decoder := json.NewDecoder(f)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&manifests); err != nil {
		return nil, fmt.Errorf("decode hook manifests: %w", err)
	}
	for i := range manifests {
		if manifests[i].Binary != "" && !filepath.IsAbs(manifests[i].Binary) {
			manifests[i].Binary = filepath.Clean(filepath.Join(s.vaultPath, manifests[i].Binary))
		}
	}
	return manifests, nil
}
