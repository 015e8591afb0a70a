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

package python

import (
	"errors"
	"testing"

	"github.com/desktop-app/desktop-app/internal/ospath"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noLookPath(string) (string, error) {
	return "", errors.New("not found")
}

func TestLocate_Override(t *testing.T) {
	t.Parallel()

	p, err := Locate(LocateOptions{Override: "/opt/python/bin/python3.12", Fs: afero.NewMemMapFs()})

	require.NoError(t, err)
	assert.Equal(t, "/opt/python/bin/python3.12", p)
}

func TestLocate_NextToLauncher(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/env/bin/python3", []byte{}, 0o755))

	p, err := Locate(LocateOptions{
		Fs:       fs,
		ExeDir:   "/env/bin",
		Flavor:   ospath.POSIX,
		LookPath: noLookPath,
	})

	require.NoError(t, err)
	assert.Equal(t, "/env/bin/python3", p)
}

func TestLocate_WindowsPrefersWindowedForGUILauncher(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, `C:\Env\Scripts\python.exe`, []byte{}, 0o755))
	require.NoError(t, afero.WriteFile(fs, `C:\Env\Scripts\pythonw.exe`, []byte{}, 0o755))

	opts := LocateOptions{
		Fs:       fs,
		ExeDir:   `C:\Env\Scripts`,
		Flavor:   ospath.Windows,
		LookPath: noLookPath,
	}

	p, err := Locate(opts)
	require.NoError(t, err)
	assert.Equal(t, `C:\Env\Scripts\python.exe`, p)

	opts.Windowed = true
	p, err = Locate(opts)
	require.NoError(t, err)
	assert.Equal(t, `C:\Env\Scripts\pythonw.exe`, p)
}

func TestLocate_CondaWindowsLayoutUsesParentDir(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, `C:\Miniconda\envs\lab\python.exe`, []byte{}, 0o755))

	p, err := Locate(LocateOptions{
		Fs:       fs,
		ExeDir:   `C:\Miniconda\envs\lab\Scripts`,
		Flavor:   ospath.Windows,
		LookPath: noLookPath,
	})

	require.NoError(t, err)
	assert.Equal(t, `C:\Miniconda\envs\lab\python.exe`, p)
}

func TestLocate_FallsBackToPath(t *testing.T) {
	t.Parallel()

	p, err := Locate(LocateOptions{
		Fs:     afero.NewMemMapFs(),
		ExeDir: "/somewhere/bin",
		Flavor: ospath.POSIX,
		LookPath: func(name string) (string, error) {
			if name == "python" {
				return "/usr/bin/python", nil
			}
			return "", errors.New("not found")
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/python", p)
}

func TestLocate_NotFound(t *testing.T) {
	t.Parallel()

	_, err := Locate(LocateOptions{Fs: afero.NewMemMapFs(), Flavor: ospath.POSIX, LookPath: noLookPath})

	require.ErrorIs(t, err, ErrInterpreterNotFound)
}
