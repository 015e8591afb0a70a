//go:build !windows

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

package windows

import "github.com/desktop-app/desktop-app/pkg/platforms"

type comShell struct{}

func (comShell) ProgramsDir() (string, error) {
	return "", platforms.ErrWrongPlatform
}

func (comShell) CreateShortcut(platforms.Shortcut) error {
	return platforms.ErrWrongPlatform
}

func (comShell) ReadShortcut(string) (platforms.Shortcut, error) {
	return platforms.Shortcut{}, platforms.ErrWrongPlatform
}

func (comShell) SetAppUserModelID(string) error {
	return platforms.ErrWrongPlatform
}

func (comShell) NotifyAssocChanged() error {
	return platforms.ErrWrongPlatform
}
