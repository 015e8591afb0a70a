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

// Package environment detects whether an interpreter belongs to a conda
// environment or a virtual environment, and computes the variables a child
// process needs to see that environment as activated.
package environment

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/desktop-app/desktop-app/internal/ospath"
	"github.com/desktop-app/desktop-app/pkg/python"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	EnvCondaDefault = "CONDA_DEFAULT_ENV"
	EnvCondaPrefix  = "CONDA_PREFIX"
	EnvVirtualEnv   = "VIRTUAL_ENV"
	EnvPythonHome   = "PYTHONHOME"
	EnvPath         = "PATH"

	condaMetaDir = "conda-meta"
	condaBinDir  = "condabin"
	// CondaBaseName is the name of the root conda environment.
	CondaBaseName = "base"
)

type Type int

const (
	None Type = iota
	Conda
	VirtualEnv
)

func (t Type) String() string {
	switch t {
	case Conda:
		return "conda"
	case VirtualEnv:
		return "venv"
	default:
		return "none"
	}
}

// Environment is the kind of environment an interpreter runs in. Name is
// only set for conda environments.
type Environment struct {
	Name   string
	Prefix string
	Type   Type
}

func isDir(fs afero.Fs, p string) (bool, error) {
	info, err := fs.Stat(p)
	if err == nil {
		return info.IsDir(), nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to inspect %s: %w", p, err)
}

// DetectConda reports whether the interpreter's prefix is a conda
// environment. Filesystem errors other than not-exist are returned.
func DetectConda(fs afero.Fs, interp *python.Interpreter, flavor ospath.Flavor) (Environment, bool, error) {
	prefix := interp.Prefix
	ok, err := isDir(fs, flavor.Join(prefix, condaMetaDir))
	if err != nil || !ok {
		return Environment{}, false, err
	}
	base, err := isDir(fs, flavor.Join(prefix, condaBinDir))
	if err != nil {
		return Environment{}, false, err
	}
	name := flavor.Base(prefix)
	if base {
		name = CondaBaseName
	}
	return Environment{Type: Conda, Name: name, Prefix: prefix}, true, nil
}

// DetectVenv reports whether the interpreter runs inside a virtual
// environment: legacy virtualenv exposes a real prefix, venv and
// virtualenv >= 20 make the base prefix differ from the prefix.
func DetectVenv(interp *python.Interpreter) (Environment, bool) {
	if interp.HasRealPrefix || interp.BasePrefix != interp.Prefix {
		return Environment{Type: VirtualEnv, Prefix: interp.Prefix}, true
	}
	return Environment{}, false
}

// Detect classifies the interpreter, checking conda first.
func Detect(fs afero.Fs, interp *python.Interpreter, flavor ospath.Flavor) (Environment, error) {
	env, ok, err := DetectConda(fs, interp, flavor)
	if err != nil {
		return Environment{}, err
	}
	if ok {
		return env, nil
	}
	if env, ok := DetectVenv(interp); ok {
		return env, nil
	}
	return Environment{Type: None}, nil
}

// ShortName returns a name that tells this environment apart from others,
// or false for the default environments (conda base, a venv named "venv"
// or ".venv") and when not in an environment at all.
func ShortName(env Environment, flavor ospath.Flavor) (string, bool) {
	switch env.Type {
	case Conda:
		if env.Name == CondaBaseName {
			return "", false
		}
		return env.Name, true
	case VirtualEnv:
		name := strings.TrimLeft(flavor.Base(env.Prefix), ".")
		if name == "venv" || name == "" {
			return "", false
		}
		return name, true
	default:
		return "", false
	}
}

// Resolver memoises detection for the lifetime of the process. It is not
// safe for concurrent use.
type Resolver struct {
	fs       afero.Fs
	interp   *python.Interpreter
	conda    *Environment
	venv     *Environment
	flavor   ospath.Flavor
	detected bool
}

func NewResolver(fs afero.Fs, interp *python.Interpreter, flavor ospath.Flavor) *Resolver {
	return &Resolver{fs: fs, interp: interp, flavor: flavor}
}

func (r *Resolver) detect() error {
	if r.detected {
		return nil
	}
	conda, ok, err := DetectConda(r.fs, r.interp, r.flavor)
	if err != nil {
		return err
	}
	if ok {
		r.conda = &conda
	}
	if venv, ok := DetectVenv(r.interp); ok {
		r.venv = &venv
	}
	r.detected = true
	log.Debug().
		Bool("conda", r.conda != nil).
		Bool("venv", r.venv != nil).
		Str("prefix", r.interp.Prefix).
		Msg("detected python environment")
	return nil
}

// Conda returns the conda environment, if the interpreter is in one.
func (r *Resolver) Conda() (Environment, bool, error) {
	if err := r.detect(); err != nil {
		return Environment{}, false, err
	}
	if r.conda == nil {
		return Environment{}, false, nil
	}
	return *r.conda, true, nil
}

// Venv returns the virtual environment, if the interpreter is in one.
func (r *Resolver) Venv() (Environment, bool, error) {
	if err := r.detect(); err != nil {
		return Environment{}, false, err
	}
	if r.venv == nil {
		return Environment{}, false, nil
	}
	return *r.venv, true, nil
}

// Environment returns the single classification, conda taking precedence.
func (r *Resolver) Environment() (Environment, error) {
	if err := r.detect(); err != nil {
		return Environment{}, err
	}
	switch {
	case r.conda != nil:
		return *r.conda, nil
	case r.venv != nil:
		return *r.venv, nil
	default:
		return Environment{Type: None}, nil
	}
}

// ShortName is ShortName of the detected environment.
func (r *Resolver) ShortName() (string, bool, error) {
	env, err := r.Environment()
	if err != nil {
		return "", false, err
	}
	name, ok := ShortName(env, r.flavor)
	return name, ok, nil
}

// Prefix is the interpreter's installation prefix.
func (r *Resolver) Prefix() string {
	return r.interp.Prefix
}

// Flavor is the path flavor the resolver was built with.
func (r *Resolver) Flavor() ospath.Flavor {
	return r.flavor
}
