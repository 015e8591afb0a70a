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

package platforms

import (
	"errors"
)

var (
	ErrNotSupported = errors.New("operation not supported on this platform")
	// ErrWrongPlatform is returned when an OS specific call is made on a
	// different OS.
	ErrWrongPlatform = errors.New("operation is specific to another platform")
	ErrFileExists    = errors.New("file already exists")
)

const (
	PlatformIDLinux   = "linux"
	PlatformIDMac     = "mac"
	PlatformIDWindows = "windows"
)

// Shortcut describes a menu entry that launches an application.
type Shortcut struct {
	// Path is the shortcut file itself.
	Path string
	// Target is the executable the shortcut runs.
	Target           string
	Arguments        string
	WorkingDirectory string
	Icon             string
	DisplayName      string
	AppID            string
}

// Platform is how the installer and launcher talk to the desktop shell of
// the running OS.
type Platform interface {
	// ID returns the unique ID of this platform.
	ID() string
	// ShortcutDir returns the directory menu entries are installed into.
	// The org name is used as a subfolder where the shell supports it.
	ShortcutDir(orgName string) (string, error)
	// ShortcutName returns the file name of the menu entry for an app.
	ShortcutName(appID, displayName string) string
	// WriteShortcut creates s.Path. When overwrite is false an existing
	// file is an ErrFileExists error.
	WriteShortcut(s Shortcut, overwrite bool) error
	// ReadShortcut reads back a shortcut previously written to path.
	ReadShortcut(path string) (Shortcut, error)
	// SetProcessIdentity tags the running process with an app identity so
	// the shell groups its windows with the shortcut.
	SetProcessIdentity(appID string) error
	// RefreshShellCache asks the shell to pick up changed menu entries.
	RefreshShellCache() error
}
