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
	"slices"
	"strings"

	"github.com/desktop-app/desktop-app/internal/ospath"
)

// Patch is the delta that makes an environment block look as though an
// environment had been activated. Set holds final values rather than
// edits, so applying a patch twice is the same as applying it once.
type Patch struct {
	Set   map[string]string
	Unset []string
}

// Apply writes the patch into env. A nil patch leaves env untouched.
func (p *Patch) Apply(env *Environ) {
	if p == nil {
		return
	}
	for _, name := range p.Unset {
		env.Unset(name)
	}
	keys := make([]string, 0, len(p.Set))
	for k := range p.Set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		env.Set(k, p.Set[k])
	}
}

// condaPathDirs are the directories conda's activation scripts put on PATH.
func condaPathDirs(prefix string, flavor ospath.Flavor) []string {
	if flavor.IsWindows() {
		return []string{
			prefix,
			flavor.Join(prefix, "Library", "mingw-w64", "bin"),
			flavor.Join(prefix, "Library", "usr", "bin"),
			flavor.Join(prefix, "Library", "bin"),
			flavor.Join(prefix, "Scripts"),
		}
	}
	return []string{flavor.Join(prefix, "bin")}
}

func venvPathDir(prefix string, flavor ospath.Flavor) string {
	if flavor.IsWindows() {
		return flavor.Join(prefix, "Scripts")
	}
	return flavor.Join(prefix, "bin")
}

func prependPath(ambient *Environ, dirs []string, flavor ospath.Flavor) string {
	parts := slices.Clone(dirs)
	if cur := ambient.Value(EnvPath); cur != "" {
		parts = append(parts, cur)
	}
	return strings.Join(parts, flavor.ListSeparator())
}

// BuildPatch returns the variables needed to activate env for a child
// process, or nil when ambient already reflects env.
func BuildPatch(env Environment, ambient *Environ, flavor ospath.Flavor) *Patch {
	switch env.Type {
	case Conda:
		name, hasName := ambient.Get(EnvCondaDefault)
		prefix, hasPrefix := ambient.Get(EnvCondaPrefix)
		if hasName && hasPrefix && name == env.Name && flavor.Equal(prefix, env.Prefix) {
			return nil
		}
		return &Patch{Set: map[string]string{
			EnvCondaDefault: env.Name,
			EnvCondaPrefix:  env.Prefix,
			EnvPath:         prependPath(ambient, condaPathDirs(env.Prefix, flavor), flavor),
		}}
	case VirtualEnv:
		if active, ok := ambient.Get(EnvVirtualEnv); ok && flavor.Equal(active, env.Prefix) {
			return nil
		}
		return &Patch{
			Set: map[string]string{
				EnvVirtualEnv: env.Prefix,
				EnvPath:       prependPath(ambient, []string{venvPathDir(env.Prefix, flavor)}, flavor),
			},
			Unset: []string{EnvPythonHome},
		}
	default:
		return nil
	}
}

// Patches builds the conda and venv patches for the detected environment
// against ambient.
func (r *Resolver) Patches(ambient *Environ) (conda, venv *Patch, err error) {
	if err := r.detect(); err != nil {
		return nil, nil, err
	}
	if r.conda != nil {
		conda = BuildPatch(*r.conda, ambient, r.flavor)
	}
	if r.venv != nil {
		venv = BuildPatch(*r.venv, ambient, r.flavor)
	}
	return conda, venv, nil
}
