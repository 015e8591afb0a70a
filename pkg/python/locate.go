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
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/desktop-app/desktop-app/internal/ospath"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ErrInterpreterNotFound is returned when no interpreter could be located.
var ErrInterpreterNotFound = errors.New("python interpreter not found")

// LocateOptions controls interpreter discovery.
type LocateOptions struct {
	Fs       afero.Fs
	LookPath func(string) (string, error)
	// Override is an explicit interpreter path, used as-is when set.
	Override string
	// ExeDir is the directory of the running launcher. Interpreters living
	// next to it (or one level up, for conda's Windows layout) belong to the
	// same environment and are preferred.
	ExeDir string
	Flavor ospath.Flavor
	// Windowed prefers the windowless interpreter variant on Windows.
	Windowed bool
}

func candidateNames(opts LocateOptions) []string {
	if opts.Flavor.IsWindows() {
		if opts.Windowed {
			return []string{"pythonw.exe", "python.exe"}
		}
		return []string{"python.exe", "pythonw.exe"}
	}
	return []string{"python3", "python"}
}

// Locate picks the interpreter the launcher should relaunch into.
func Locate(opts LocateOptions) (string, error) {
	if opts.Override != "" {
		return opts.Override, nil
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.LookPath == nil {
		opts.LookPath = exec.LookPath
	}

	names := candidateNames(opts)
	if opts.ExeDir != "" {
		dirs := []string{opts.ExeDir, opts.Flavor.Dir(opts.ExeDir)}
		for _, dir := range dirs {
			for _, name := range names {
				p := opts.Flavor.Join(dir, name)
				info, err := opts.Fs.Stat(p)
				if err == nil && !info.IsDir() {
					log.Debug().Str("python", p).Msg("found interpreter next to launcher")
					return p, nil
				}
			}
		}
	}

	for _, name := range names {
		if p, err := opts.LookPath(name); err == nil {
			log.Debug().Str("python", p).Msg("found interpreter on PATH")
			return p, nil
		}
	}
	return "", fmt.Errorf("%w (searched %v)", ErrInterpreterNotFound, names)
}

// LauncherDir is the directory the running program was invoked from. It is
// taken from argv0 without resolving symlinks, so a launcher linked into an
// environment's scripts directory finds that environment's interpreter. A
// bare name is searched on PATH; executable is the fallback when argv0
// cannot be placed.
func LauncherDir(
	argv0 string,
	lookPath func(string) (string, error),
	executable func() (string, error),
) string {
	p := argv0
	if p != "" && filepath.Base(p) == p {
		if lookPath == nil {
			lookPath = exec.LookPath
		}
		found, err := lookPath(p)
		if err != nil {
			log.Debug().Err(err).Str("argv0", argv0).Msg("launcher not found on PATH")
			p = ""
		} else {
			p = found
		}
	}
	if p != "" {
		abs, err := filepath.Abs(p)
		if err == nil {
			return filepath.Dir(abs)
		}
		log.Debug().Err(err).Str("argv0", argv0).Msg("failed to make launcher path absolute")
	}

	if executable == nil {
		return ""
	}
	exe, err := executable()
	if err != nil {
		log.Warn().Err(err).Msg("failed to get executable path")
		return ""
	}
	return filepath.Dir(exe)
}
