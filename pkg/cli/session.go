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

package cli

import (
	"context"

	"github.com/desktop-app/desktop-app/internal/ospath"
	"github.com/desktop-app/desktop-app/pkg/apps"
	"github.com/desktop-app/desktop-app/pkg/environment"
	"github.com/desktop-app/desktop-app/pkg/helpers/command"
	"github.com/desktop-app/desktop-app/pkg/locator"
	"github.com/desktop-app/desktop-app/pkg/platforms"
	"github.com/desktop-app/desktop-app/pkg/python"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type SessionOptions struct {
	Fs       afero.Fs
	Exec     command.Executor
	Platform platforms.Platform
	// LookPath overrides exec.LookPath when searching for the interpreter.
	LookPath func(string) (string, error)
	// Python is an explicit interpreter, searched for when empty.
	Python string
	// ExeDir is the directory of the running executable.
	ExeDir string
	// Modules are resolved up front with a single interpreter probe.
	Modules  []string
	Flavor   ospath.Flavor
	Windowed bool
}

// Session is everything known about one interpreter, shared by the
// commands run against it.
type Session struct {
	Inspector   *python.Inspector
	Interpreter *python.Interpreter
	Environment *environment.Resolver
	Locator     *locator.Locator
	Registry    *apps.Registry
}

// NewSession locates and probes the interpreter, then builds the resolvers
// on top of its snapshot.
//
//nolint:gocritic // options struct passed by value
func NewSession(ctx context.Context, opts SessionOptions) (*Session, error) {
	py, err := python.Locate(python.LocateOptions{
		Fs:       opts.Fs,
		LookPath: opts.LookPath,
		Override: opts.Python,
		ExeDir:   opts.ExeDir,
		Flavor:   opts.Flavor,
		Windowed: opts.Windowed,
	})
	if err != nil {
		return nil, err
	}

	inspector := python.NewInspector(opts.Exec, py)
	seen := make(map[string]bool)
	var names []string
	for _, m := range opts.Modules {
		top := locator.TopLevel(m)
		if !seen[top] {
			seen[top] = true
			names = append(names, top)
		}
	}
	if err := inspector.Preload(ctx, names...); err != nil {
		return nil, err
	}
	interp, err := inspector.Interpreter(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("python", py).
		Str("prefix", interp.Prefix).
		Str("base_prefix", interp.BasePrefix).
		Msg("inspected interpreter")

	env := environment.NewResolver(opts.Fs, interp, opts.Flavor)
	loc := locator.New(opts.Fs, inspector, interp, opts.Flavor)
	return &Session{
		Inspector:   inspector,
		Interpreter: interp,
		Environment: env,
		Locator:     loc,
		Registry:    apps.NewRegistry(opts.Fs, loc, env, opts.Platform),
	}, nil
}
