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

// Package mac is a placeholder platform. Shortcuts are not supported on
// macOS, so every shell operation fails with ErrNotSupported.
package mac

import (
	"github.com/desktop-app/desktop-app/pkg/platforms"
)

type Platform struct{}

func NewPlatform() *Platform {
	return &Platform{}
}

func (*Platform) ID() string {
	return platforms.PlatformIDMac
}

func (*Platform) ShortcutDir(string) (string, error) {
	return "", platforms.ErrNotSupported
}

func (*Platform) ShortcutName(appID, _ string) string {
	return appID
}

func (*Platform) WriteShortcut(platforms.Shortcut, bool) error {
	return platforms.ErrNotSupported
}

func (*Platform) ReadShortcut(string) (platforms.Shortcut, error) {
	return platforms.Shortcut{}, platforms.ErrNotSupported
}

// SetProcessIdentity is a no-op, the Dock groups windows by bundle.
func (*Platform) SetProcessIdentity(string) error {
	return nil
}

func (*Platform) RefreshShellCache() error {
	return nil
}
