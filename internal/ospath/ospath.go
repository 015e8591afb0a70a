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

// Package ospath manipulates paths using the conventions of a chosen OS
// family rather than the host's, so Windows layouts can be computed (and
// tested) on any machine.
package ospath

import (
	"path"
	"runtime"
	"strings"
)

// Flavor selects the path conventions of an OS family.
type Flavor struct {
	windows bool
}

var (
	Windows = Flavor{windows: true}
	POSIX   = Flavor{}
)

// For returns the flavor for a GOOS value.
func For(goos string) Flavor {
	if goos == "windows" {
		return Windows
	}
	return POSIX
}

// Host returns the flavor of the running OS.
func Host() Flavor {
	return For(runtime.GOOS)
}

func (f Flavor) IsWindows() bool {
	return f.windows
}

func (f Flavor) Separator() string {
	if f.windows {
		return `\`
	}
	return "/"
}

// ListSeparator is the separator used in PATH-like variables.
func (f Flavor) ListSeparator() string {
	if f.windows {
		return ";"
	}
	return ":"
}

func (f Flavor) toSlash(p string) string {
	if f.windows {
		return strings.ReplaceAll(p, `\`, "/")
	}
	return p
}

func (f Flavor) fromSlash(p string) string {
	if f.windows {
		return strings.ReplaceAll(p, "/", `\`)
	}
	return p
}

// splitUNC separates the extra leading slash of a Windows UNC path, which
// path.Clean and path.Join would fold into a single root.
func (f Flavor) splitUNC(s string) (string, string) {
	if f.windows && strings.HasPrefix(s, "//") && !strings.HasPrefix(s, "///") {
		return "/", s[1:]
	}
	return "", s
}

func (f Flavor) Clean(p string) string {
	if p == "" {
		return ""
	}
	root, rest := f.splitUNC(f.toSlash(p))
	return f.fromSlash(root + path.Clean(rest))
}

// Join joins non-empty elements with the flavor's separator.
func (f Flavor) Join(elem ...string) string {
	parts := make([]string, 0, len(elem))
	for _, e := range elem {
		if e != "" {
			parts = append(parts, f.toSlash(e))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	root, first := f.splitUNC(parts[0])
	parts[0] = first
	return f.fromSlash(root + path.Join(parts...))
}

func (f Flavor) Base(p string) string {
	if p == "" {
		return "."
	}
	return path.Base(f.toSlash(p))
}

func (f Flavor) Dir(p string) string {
	root, rest := f.splitUNC(f.toSlash(p))
	return f.fromSlash(root + path.Dir(rest))
}

func (f Flavor) IsAbs(p string) bool {
	if !f.windows {
		return strings.HasPrefix(p, "/")
	}
	s := f.toSlash(p)
	if strings.HasPrefix(s, "//") {
		return true
	}
	return len(s) >= 3 && s[1] == ':' && s[2] == '/' && isDriveLetter(s[0])
}

func isDriveLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// NormCase folds a path the way the OS compares them: on Windows the path
// is lowercased and uses backslashes, elsewhere it is only cleaned.
func (f Flavor) NormCase(p string) string {
	if p == "" {
		return ""
	}
	c := f.Clean(p)
	if f.windows {
		return strings.ToLower(c)
	}
	return c
}

// Equal reports whether two paths name the same location under the
// flavor's case rules.
func (f Flavor) Equal(a, b string) bool {
	return f.NormCase(a) == f.NormCase(b)
}

// HasPrefix reports whether p is root or lies below it, respecting
// separator boundaries.
func (f Flavor) HasPrefix(p, root string) bool {
	np := f.NormCase(p)
	nr := f.NormCase(root)
	if nr == "" {
		return false
	}
	if np == nr {
		return true
	}
	sep := f.Separator()
	if !strings.HasSuffix(nr, sep) {
		nr += sep
	}
	return strings.HasPrefix(np, nr)
}
