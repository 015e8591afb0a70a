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

// Package windows creates Start menu shortcuts and tags processes and
// shortcuts with an AppUserModelID.
package windows

import (
	"fmt"

	"github.com/desktop-app/desktop-app/internal/ospath"
	"github.com/desktop-app/desktop-app/pkg/platforms"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const shortcutExt = ".lnk"

// shell is the set of Windows shell calls the platform needs. The real
// implementation only exists in Windows builds.
type shell interface {
	ProgramsDir() (string, error)
	CreateShortcut(s platforms.Shortcut) error
	ReadShortcut(path string) (platforms.Shortcut, error)
	SetAppUserModelID(appID string) error
	NotifyAssocChanged() error
}

type Platform struct {
	fs    afero.Fs
	shell shell
}

func NewPlatform(fs afero.Fs) *Platform {
	return &Platform{fs: fs, shell: comShell{}}
}

func (*Platform) ID() string {
	return platforms.PlatformIDWindows
}

// ShortcutDir is the user's Start menu Programs folder, with a subfolder
// per organisation.
func (p *Platform) ShortcutDir(orgName string) (string, error) {
	dir, err := p.shell.ProgramsDir()
	if err != nil {
		return "", fmt.Errorf("failed to find start menu: %w", err)
	}
	return ospath.Windows.Join(dir, orgName), nil
}

func (*Platform) ShortcutName(_, displayName string) string {
	return displayName + shortcutExt
}

func (p *Platform) WriteShortcut(s platforms.Shortcut, overwrite bool) error {
	exists, err := afero.Exists(p.fs, s.Path)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", s.Path, err)
	}
	if exists {
		if !overwrite {
			return fmt.Errorf("%w: %s", platforms.ErrFileExists, s.Path)
		}
		// WScript.Shell would load and update the old link in place
		if err := p.fs.Remove(s.Path); err != nil {
			return fmt.Errorf("failed to replace %s: %w", s.Path, err)
		}
	}

	if err := p.fs.MkdirAll(ospath.Windows.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create shortcut directory: %w", err)
	}
	if err := p.shell.CreateShortcut(s); err != nil {
		return fmt.Errorf("failed to create shortcut %s: %w", s.Path, err)
	}
	log.Debug().Str("path", s.Path).Str("appid", s.AppID).Msg("created shortcut")
	return nil
}

func (p *Platform) ReadShortcut(path string) (platforms.Shortcut, error) {
	s, err := p.shell.ReadShortcut(path)
	if err != nil {
		return platforms.Shortcut{}, fmt.Errorf("failed to read shortcut %s: %w", path, err)
	}
	return s, nil
}

func (p *Platform) SetProcessIdentity(appID string) error {
	if err := p.shell.SetAppUserModelID(appID); err != nil {
		return fmt.Errorf("failed to set AppUserModelID: %w", err)
	}
	return nil
}

// RefreshShellCache tells Explorer file associations and icons changed,
// so new shortcuts show their icons straight away.
func (p *Platform) RefreshShellCache() error {
	return p.shell.NotifyAssocChanged()
}
