//go:build windows

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

package command

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// configureConsole applies CREATE_NO_WINDOW so a console interpreter does
// not flash a window when started on behalf of a windowless app.
func configureConsole(cmd *exec.Cmd, opts CallOptions) {
	if opts.HideConsole {
		cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: windows.CREATE_NO_WINDOW}
	}
}

func exitCode(exitErr *exec.ExitError) int {
	return exitErr.ExitCode()
}
