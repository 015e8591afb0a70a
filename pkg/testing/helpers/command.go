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
	"github.com/desktop-app/desktop-app/pkg/testing/mocks"
	"github.com/stretchr/testify/mock"
)

// NewMockCommandExecutor creates a MockCommandExecutor that succeeds by default.
// All Run(), Output() and Call() calls will return success unless explicitly overridden with On().
//
// This provides sensible defaults for tests where command execution details don't matter.
// Override specific commands in tests that need to verify exact behavior:
//
//	cmd := helpers.NewMockCommandExecutor()
//	// Clear defaults first
//	cmd.ExpectedCalls = nil
//	// Set specific expectations (note: args is []string not variadic in mock)
//	cmd.On("Run", mock.Anything, "update-desktop-database", []string{"/data/applications"}).Return(nil)
//	cmd.On("Output", mock.Anything, "/env/bin/python3", mock.Anything).Return(probe, nil)
func NewMockCommandExecutor() *mocks.MockCommandExecutor {
	cmd := &mocks.MockCommandExecutor{}
	// Match any command with any arguments - all succeed by default
	cmd.On("Run", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil).Maybe()
	cmd.On("Output", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return([]byte{}, nil).Maybe()
	cmd.On("Call", mock.Anything, mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(0, nil).Maybe()
	return cmd
}
