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

package environment

import (
	"strings"

	"github.com/desktop-app/desktop-app/internal/ospath"
)

type variable struct {
	name  string
	value string
}

// Environ is an ordered environment block. On Windows variable names are
// compared case-insensitively, so "Path" and "PATH" are the same variable.
type Environ struct {
	vars []variable
	fold bool
}

// NewEnviron parses a KEY=VALUE list such as os.Environ().
func NewEnviron(list []string, flavor ospath.Flavor) *Environ {
	e := &Environ{fold: flavor.IsWindows()}
	for _, kv := range list {
		// Windows keeps per-drive cwd entries like "=C:=C:\dir"; the name
		// may start with '=' so search from the second byte.
		i := -1
		if len(kv) > 1 {
			i = strings.Index(kv[1:], "=")
		}
		if i < 0 {
			continue
		}
		e.Set(kv[:i+1], kv[i+2:])
	}
	return e
}

func (e *Environ) index(name string) int {
	for i, v := range e.vars {
		if v.name == name || (e.fold && strings.EqualFold(v.name, name)) {
			return i
		}
	}
	return -1
}

// Get returns the value of a variable and whether it is set.
func (e *Environ) Get(name string) (string, bool) {
	if i := e.index(name); i >= 0 {
		return e.vars[i].value, true
	}
	return "", false
}

// Value returns the value of a variable, or "" when unset.
func (e *Environ) Value(name string) string {
	v, _ := e.Get(name)
	return v
}

// Set replaces a variable in place, keeping the existing spelling of its
// name, or appends it.
func (e *Environ) Set(name, value string) {
	if i := e.index(name); i >= 0 {
		e.vars[i].value = value
		return
	}
	e.vars = append(e.vars, variable{name: name, value: value})
}

func (e *Environ) Unset(name string) {
	if i := e.index(name); i >= 0 {
		e.vars = append(e.vars[:i], e.vars[i+1:]...)
	}
}

// Clone returns an independent copy.
func (e *Environ) Clone() *Environ {
	c := &Environ{fold: e.fold, vars: make([]variable, len(e.vars))}
	copy(c.vars, e.vars)
	return c
}

// List renders the block as KEY=VALUE strings for exec.Cmd.Env.
func (e *Environ) List() []string {
	out := make([]string, 0, len(e.vars))
	for _, v := range e.vars {
		out = append(out, v.name+"="+v.value)
	}
	return out
}
