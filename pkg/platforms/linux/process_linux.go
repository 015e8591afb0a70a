//go:build linux

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

package linux

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

func setProcessName(name string) error {
	// the kernel keeps 15 bytes plus the terminator
	if len(name) > 15 {
		name = name[:15]
	}
	b, err := unix.BytePtrFromString(name)
	if err != nil {
		return fmt.Errorf("invalid process name %q: %w", name, err)
	}
	if err := unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(b)), 0, 0, 0); err != nil {
		return fmt.Errorf("failed to set process name: %w", err)
	}
	return nil
}
