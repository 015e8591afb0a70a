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

// Package python discovers a Python interpreter and takes a snapshot of the
// parts of its runtime state that installation topology depends on: its
// prefixes, site directories, scripts directories and import resolution.
package python

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/desktop-app/desktop-app/pkg/helpers/command"
	"github.com/rs/zerolog/log"
)

//go:embed probe.py
var probeScript string

// Interpreter is a snapshot of an interpreter's sys, site and sysconfig
// values.
type Interpreter struct {
	Executable     string
	BaseExecutable string
	Prefix         string
	BasePrefix     string
	// RealPrefix is only meaningful when HasRealPrefix is set, which legacy
	// virtualenv (< 20) does.
	RealPrefix    string
	HasRealPrefix bool
	SitePackages  []string
	UserSite      string
	Scripts       string
	UserScripts   string
	// LocalScripts is the scripts directory of the distro "posix_local"
	// scheme, empty when the interpreter has no such scheme.
	LocalScripts string
	Version      string
}

// ModuleSpec is the result of resolving a top-level import name.
type ModuleSpec struct {
	Name      string
	Origin    string
	Found     bool
	IsPackage bool
}

type probeSpec struct {
	Name      string `json:"name"`
	Origin    string `json:"origin"`
	Found     bool   `json:"found"`
	IsPackage bool   `json:"is_package"`
}

type probeResult struct {
	RealPrefix     *string     `json:"real_prefix"`
	Executable     string      `json:"executable"`
	BaseExecutable string      `json:"base_executable"`
	Prefix         string      `json:"prefix"`
	BasePrefix     string      `json:"base_prefix"`
	UserSite       string      `json:"user_site"`
	Scripts        string      `json:"scripts"`
	UserScripts    string      `json:"user_scripts"`
	LocalScripts   string      `json:"local_scripts"`
	Version        string      `json:"version"`
	SitePackages   []string    `json:"site_packages"`
	Specs          []probeSpec `json:"specs"`
}

// ParseProbe decodes the JSON document printed by the probe script.
func ParseProbe(data []byte) (*Interpreter, []ModuleSpec, error) {
	var res probeResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, nil, fmt.Errorf("failed to decode interpreter probe: %w", err)
	}
	if res.Prefix == "" {
		return nil, nil, errors.New("interpreter probe returned no prefix")
	}

	interp := &Interpreter{
		Executable:     res.Executable,
		BaseExecutable: res.BaseExecutable,
		Prefix:         res.Prefix,
		BasePrefix:     res.BasePrefix,
		SitePackages:   res.SitePackages,
		UserSite:       res.UserSite,
		Scripts:        res.Scripts,
		UserScripts:    res.UserScripts,
		LocalScripts:   res.LocalScripts,
		Version:        res.Version,
	}
	if res.RealPrefix != nil {
		interp.RealPrefix = *res.RealPrefix
		interp.HasRealPrefix = true
	}

	specs := make([]ModuleSpec, 0, len(res.Specs))
	for _, s := range res.Specs {
		specs = append(specs, ModuleSpec(s))
	}
	return interp, specs, nil
}

// Inspector runs the probe through an interpreter and memoises the results
// for the lifetime of the process. It is not safe for concurrent use.
type Inspector struct {
	exec   command.Executor
	interp *Interpreter
	specs  map[string]ModuleSpec
	python string
}

func NewInspector(exec command.Executor, python string) *Inspector {
	return &Inspector{
		exec:   exec,
		python: python,
		specs:  make(map[string]ModuleSpec),
	}
}

// Python returns the path of the interpreter being inspected.
func (i *Inspector) Python() string {
	return i.python
}

// Preload resolves several top-level names with a single probe run.
func (i *Inspector) Preload(ctx context.Context, names ...string) error {
	var missing []string
	for _, name := range names {
		if _, ok := i.specs[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 && i.interp != nil {
		return nil
	}
	return i.probe(ctx, missing)
}

// Interpreter returns the interpreter snapshot, probing on first use.
func (i *Inspector) Interpreter(ctx context.Context) (*Interpreter, error) {
	if i.interp == nil {
		if err := i.probe(ctx, nil); err != nil {
			return nil, err
		}
	}
	return i.interp, nil
}

// FindSpec resolves a top-level import name in the interpreter.
func (i *Inspector) FindSpec(ctx context.Context, name string) (ModuleSpec, error) {
	if spec, ok := i.specs[name]; ok {
		return spec, nil
	}
	if err := i.probe(ctx, []string{name}); err != nil {
		return ModuleSpec{}, err
	}
	return i.specs[name], nil
}

func (i *Inspector) probe(ctx context.Context, names []string) error {
	args := append([]string{"-c", probeScript}, names...)
	log.Debug().Str("python", i.python).Strs("modules", names).Msg("probing interpreter")

	out, err := i.exec.Output(ctx, i.python, args...)
	if err != nil {
		return fmt.Errorf("failed to probe interpreter %s: %w", i.python, err)
	}
	interp, specs, err := ParseProbe(out)
	if err != nil {
		return fmt.Errorf("interpreter %s: %w", i.python, err)
	}

	i.interp = interp
	for _, s := range specs {
		i.specs[s.Name] = s
	}
	// names the probe did not echo back are recorded as not found so they
	// are not probed again
	for _, name := range names {
		if _, ok := i.specs[name]; !ok {
			i.specs[name] = ModuleSpec{Name: name}
		}
	}
	return nil
}
