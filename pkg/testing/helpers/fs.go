// Desktop App
// Copyright (c) 2026 The Desktop App Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Desktop App.
//
// Desktop App is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Desktop App is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Desktop App.  If not, see <http://www.gnu.org/licenses/>.

package helpers

import (
	"encoding/json"
	"fmt"
	"path"

	"github.com/spf13/afero"
)

// FSHelper builds fake Python installations on an afero filesystem. Paths
// are POSIX style; Windows style paths are stored as single names, which
// is enough for code that only joins and stats them.
type FSHelper struct {
	Fs afero.Fs
}

// NewMemoryFS creates a new in-memory filesystem for testing
func NewMemoryFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewMemMapFs(),
	}
}

// CreatePackage creates an importable package in siteDir and returns the
// origin of its __init__.py.
func (h *FSHelper) CreatePackage(siteDir, name string) (string, error) {
	origin := path.Join(siteDir, name, "__init__.py")
	if err := h.WriteFile(origin, nil); err != nil {
		return "", err
	}
	return origin, nil
}

// CreateLauncher creates an empty entry point script.
func (h *FSHelper) CreateLauncher(p string) error {
	return h.WriteFile(p, nil)
}

// CreateCondaPrefix marks prefix as a conda environment.
func (h *FSHelper) CreateCondaPrefix(prefix string) error {
	if err := h.Fs.MkdirAll(path.Join(prefix, "conda-meta"), 0o755); err != nil {
		return fmt.Errorf("failed to create conda-meta in %s: %w", prefix, err)
	}
	return nil
}

// CreatePackageFile writes desktop-app.json into a package directory.
func (h *FSHelper) CreatePackageFile(pkgDir string, cfg map[string]any) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal package file to JSON: %w", err)
	}
	return h.WriteFile(path.Join(pkgDir, "desktop-app.json"), data)
}

// CreateDirectoryStructure creates a tree of directories and files. String
// and []byte values are file contents, maps are directories and nil is an
// empty directory.
func (h *FSHelper) CreateDirectoryStructure(structure map[string]any) error {
	return h.createStructureRecursive("", structure)
}

func (h *FSHelper) createStructureRecursive(basePath string, structure map[string]any) error {
	for name, content := range structure {
		fullPath := path.Join(basePath, name)

		switch v := content.(type) {
		case string:
			if err := h.WriteFile(fullPath, []byte(v)); err != nil {
				return err
			}
		case []byte:
			if err := h.WriteFile(fullPath, v); err != nil {
				return err
			}
		case map[string]any:
			if err := h.Fs.MkdirAll(fullPath, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", fullPath, err)
			}
			if err := h.createStructureRecursive(fullPath, v); err != nil {
				return err
			}
		case nil:
			if err := h.Fs.MkdirAll(fullPath, 0o755); err != nil {
				return fmt.Errorf("failed to create empty directory %s: %w", fullPath, err)
			}
		default:
			return fmt.Errorf("unsupported entry %s of type %T", fullPath, content)
		}
	}
	return nil
}

// FileExists checks if a file exists
func (h *FSHelper) FileExists(p string) bool {
	exists, err := afero.Exists(h.Fs, p)
	if err != nil {
		return false
	}
	return exists
}

// ReadFile reads a file and returns its content
func (h *FSHelper) ReadFile(p string) ([]byte, error) {
	data, err := afero.ReadFile(h.Fs, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", p, err)
	}
	return data, nil
}

// WriteFile writes content to a file, creating its directory.
func (h *FSHelper) WriteFile(p string, content []byte) error {
	if err := h.Fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for file %s: %w", p, err)
	}
	if err := afero.WriteFile(h.Fs, p, content, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", p, err)
	}
	return nil
}

// ListFiles lists the names in a directory
func (h *FSHelper) ListFiles(p string) ([]string, error) {
	files, err := afero.ReadDir(h.Fs, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", p, err)
	}

	fileNames := make([]string, len(files))
	for i, file := range files {
		fileNames[i] = file.Name()
	}

	return fileNames, nil
}
