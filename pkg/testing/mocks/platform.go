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

package mocks

import (
	"fmt"

	"github.com/desktop-app/desktop-app/pkg/platforms"
	"github.com/stretchr/testify/mock"
)

// MockPlatform is a mock implementation of the Platform interface using testify/mock
type MockPlatform struct {
	mock.Mock
	written []platforms.Shortcut // Track written shortcuts for verification
}

// NewMockPlatform returns a platform mock with permissive defaults.
func NewMockPlatform(id string) *MockPlatform {
	m := &MockPlatform{}
	m.On("ID").Return(id).Maybe()
	m.On("ShortcutName", mock.Anything, mock.Anything).Return(
		func(appID, _ string) string { return appID + ".desktop" },
	).Maybe()
	m.On("RefreshShellCache").Return(nil).Maybe()
	m.On("SetProcessIdentity", mock.Anything).Return(nil).Maybe()
	return m
}

// ID returns the unique ID of this platform
func (m *MockPlatform) ID() string {
	args := m.Called()
	return args.String(0)
}

// ShortcutDir returns the directory menu entries are installed into
func (m *MockPlatform) ShortcutDir(orgName string) (string, error) {
	args := m.Called(orgName)
	if err := args.Error(1); err != nil {
		return "", fmt.Errorf("mock platform shortcut dir failed: %w", err)
	}
	return args.String(0), nil
}

// ShortcutName returns the file name of the menu entry for an app
func (m *MockPlatform) ShortcutName(appID, displayName string) string {
	args := m.Called(appID, displayName)
	if fn, ok := args.Get(0).(func(string, string) string); ok {
		return fn(appID, displayName)
	}
	return args.String(0)
}

// WriteShortcut records the shortcut and returns the configured error
func (m *MockPlatform) WriteShortcut(s platforms.Shortcut, overwrite bool) error {
	args := m.Called(s, overwrite)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock platform write shortcut failed: %w", err)
	}
	m.written = append(m.written, s)
	return nil
}

// ReadShortcut reads back a shortcut previously written to path
func (m *MockPlatform) ReadShortcut(path string) (platforms.Shortcut, error) {
	args := m.Called(path)
	if err := args.Error(1); err != nil {
		return platforms.Shortcut{}, fmt.Errorf("mock platform read shortcut failed: %w", err)
	}
	if s, ok := args.Get(0).(platforms.Shortcut); ok {
		return s, nil
	}
	return platforms.Shortcut{}, nil
}

// SetProcessIdentity tags the running process with an app identity
func (m *MockPlatform) SetProcessIdentity(appID string) error {
	args := m.Called(appID)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock platform set process identity failed: %w", err)
	}
	return nil
}

// RefreshShellCache asks the shell to pick up changed menu entries
func (m *MockPlatform) RefreshShellCache() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock platform refresh shell cache failed: %w", err)
	}
	return nil
}

// GetWrittenShortcuts returns all shortcuts successfully written
func (m *MockPlatform) GetWrittenShortcuts() []platforms.Shortcut {
	return m.written
}
