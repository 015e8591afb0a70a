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

// Package linux writes freedesktop.org menu entries.
package linux

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/desktop-app/desktop-app/pkg/helpers/command"
	"github.com/desktop-app/desktop-app/pkg/platforms"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

const (
	desktopSection  = "Desktop Entry"
	desktopExt      = ".desktop"
	applicationsDir = "applications"
)

var (
	desktopEscaper = strings.NewReplacer(
		`\`, `\\`,
		" ", `\s`,
		"\n", `\n`,
		"\t", `\t`,
	)
	desktopUnescaper = strings.NewReplacer(
		`\\`, `\`,
		`\s`, " ",
		`\n`, "\n",
		`\t`, "\t",
	)
)

// Escape encodes a path for the Exec and Icon keys of a desktop entry.
func Escape(s string) string {
	return desktopEscaper.Replace(s)
}

func Unescape(s string) string {
	return desktopUnescaper.Replace(s)
}

type Platform struct {
	fs       afero.Fs
	exec     command.Executor
	dataHome string
}

// NewPlatform returns the Linux shell integration. An empty dataHome means
// $XDG_DATA_HOME.
func NewPlatform(fs afero.Fs, exec command.Executor, dataHome string) *Platform {
	if dataHome == "" {
		dataHome = xdg.DataHome
	}
	return &Platform{fs: fs, exec: exec, dataHome: dataHome}
}

func (*Platform) ID() string {
	return platforms.PlatformIDLinux
}

// ShortcutDir is the user applications directory. Desktop entries have no
// folders, so the org name is not used.
func (p *Platform) ShortcutDir(string) (string, error) {
	return filepath.Join(p.dataHome, applicationsDir), nil
}

func (*Platform) ShortcutName(appID, _ string) string {
	return appID + desktopExt
}

func desktopEntry(s platforms.Shortcut) string {
	exec := Escape(s.Target)
	if s.Arguments != "" {
		exec += " " + s.Arguments
	}
	var b strings.Builder
	b.WriteString("[" + desktopSection + "]\n")
	b.WriteString("Name=" + s.DisplayName + "\n")
	b.WriteString("Exec=" + exec + "\n")
	if s.Icon != "" {
		b.WriteString("Icon=" + Escape(s.Icon) + "\n")
	}
	if s.WorkingDirectory != "" {
		b.WriteString("Path=" + s.WorkingDirectory + "\n")
	}
	b.WriteString("Type=Application\n")
	return b.String()
}

func (p *Platform) WriteShortcut(s platforms.Shortcut, overwrite bool) error {
	if !overwrite {
		exists, err := afero.Exists(p.fs, s.Path)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", s.Path, err)
		}
		if exists {
			return fmt.Errorf("%w: %s", platforms.ErrFileExists, s.Path)
		}
	}

	if err := p.fs.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create applications directory: %w", err)
	}
	if err := afero.WriteFile(p.fs, s.Path, []byte(desktopEntry(s)), 0o644); err != nil {
		return fmt.Errorf("failed to write desktop entry: %w", err)
	}
	log.Debug().Str("path", s.Path).Str("target", s.Target).Msg("wrote desktop entry")
	return nil
}

func (p *Platform) ReadShortcut(path string) (platforms.Shortcut, error) {
	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return platforms.Shortcut{}, fmt.Errorf("failed to read desktop entry: %w", err)
	}

	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment: true,
		IgnoreContinuation:  true,
	}, data)
	if err != nil {
		return platforms.Shortcut{}, fmt.Errorf("failed to parse desktop entry: %w", err)
	}
	sec, err := f.GetSection(desktopSection)
	if err != nil {
		return platforms.Shortcut{}, fmt.Errorf("%s: %w", path, err)
	}

	return platforms.Shortcut{
		Path:             path,
		Target:           Unescape(sec.Key("Exec").String()),
		Icon:             Unescape(sec.Key("Icon").String()),
		WorkingDirectory: sec.Key("Path").String(),
		DisplayName:      sec.Key("Name").String(),
		AppID:            strings.TrimSuffix(filepath.Base(path), desktopExt),
	}, nil
}

// RefreshShellCache rebuilds the MIME cache of the applications
// directory. Most desktops watch the directory anyway, so failures are
// only logged.
func (p *Platform) RefreshShellCache() error {
	dir, err := p.ShortcutDir("")
	if err != nil {
		return err
	}
	if _, err := p.fs.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.exec.Run(ctx, "update-desktop-database", dir); err != nil {
		log.Debug().Err(err).Msg("update-desktop-database failed")
	}
	return nil
}

// SetProcessIdentity renames the running process to the appid, which is
// what task managers and some window managers show.
func (*Platform) SetProcessIdentity(appID string) error {
	return setProcessName(appID)
}
