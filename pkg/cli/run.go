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
	"fmt"
	"io"

	"github.com/desktop-app/desktop-app/internal/ospath"
	"github.com/desktop-app/desktop-app/pkg/config"
	"github.com/desktop-app/desktop-app/pkg/helpers/command"
	"github.com/desktop-app/desktop-app/pkg/installer"
	"github.com/desktop-app/desktop-app/pkg/platforms"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type Deps struct {
	Fs       afero.Fs
	Exec     command.Executor
	Platform platforms.Platform
	Config   *config.Instance
	LookPath func(string) (string, error)
	Stdout   io.Writer
	Stderr   io.Writer
	// Home is the working directory of Windows shortcuts.
	Home   string
	ExeDir string
	Flavor ospath.Flavor
}

// Run executes cmd and returns the number of failures, which is the exit
// code of the command.
//
//nolint:gocritic // deps struct passed by value
func Run(ctx context.Context, cmd *Command, deps Deps) int {
	switch {
	case cmd.Version:
		_, _ = fmt.Fprintf(deps.Stdout, "%s v%s (%s)\n", config.AppName, config.AppVersion, deps.Platform.ID())
		return 0
	case cmd.Action == ActionConfig:
		if err := saveConfig(cmd, deps); err != nil {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: %s\n", err)
			return 1
		}
		return 0
	}

	session, err := NewSession(ctx, SessionOptions{
		Fs:       deps.Fs,
		Exec:     deps.Exec,
		Platform: deps.Platform,
		LookPath: deps.LookPath,
		Python:   PythonOverride(cmd.Python, deps.Config),
		ExeDir:   deps.ExeDir,
		Modules:  cmd.Modules,
		Flavor:   deps.Flavor,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to inspect interpreter")
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %s\n", err)
		return len(cmd.Modules)
	}

	inst := installer.New(installer.Deps{
		Fs:       deps.Fs,
		Registry: session.Registry,
		Exec:     deps.Exec,
		Python:   session.Inspector.Python(),
		Home:     deps.Home,
		Stdout:   deps.Stdout,
		Stderr:   deps.Stderr,
	})

	opts := cmd.Options
	if opts.Path == "" && deps.Config != nil {
		opts.Path = deps.Config.ShortcutDir()
	}

	failures := 0
	for _, module := range cmd.Modules {
		var err error
		if cmd.Action == ActionInstall {
			err = inst.Install(ctx, module, opts)
		} else {
			err = inst.Uninstall(ctx, module, opts)
		}
		if err != nil {
			failures++
			log.Error().Err(err).Str("module", module).Msgf("%s failed", cmd.Action)
			_, _ = fmt.Fprintf(deps.Stderr, "Error: %s: %s\n", module, err)
		}
	}
	return failures
}

// saveConfig stores the options given to the config action.
//
//nolint:gocritic // deps struct passed by value
func saveConfig(cmd *Command, deps Deps) error {
	cfg := deps.Config
	if cmd.Python != "" {
		cfg.SetPython(cmd.Python)
	}
	if cmd.Options.Path != "" {
		cfg.SetShortcutDir(cmd.Options.Path)
	}
	if cmd.Debug {
		cfg.SetDebugLogging(true)
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	if cmd.Options.Verbose {
		_, _ = fmt.Fprintf(deps.Stdout, " -> saved %s\n", cfg.Path())
	}
	return nil
}
