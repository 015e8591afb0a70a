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

// Command desktop-app-launcher is installed next to a module's entry points
// under the module's name. It runs the module in the interpreter of its
// environment, with the environment activated, and exits with its status.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/desktop-app/desktop-app/internal/ospath"
	"github.com/desktop-app/desktop-app/pkg/cli"
	"github.com/desktop-app/desktop-app/pkg/config"
	"github.com/desktop-app/desktop-app/pkg/helpers/command"
	"github.com/desktop-app/desktop-app/pkg/launcher"
	"github.com/desktop-app/desktop-app/pkg/platforms/host"
	"github.com/desktop-app/desktop-app/pkg/python"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

func main() {
	code, err := run()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

func run() (int, error) {
	fs := afero.NewOsFs()
	flavor := ospath.Host()

	// stdout and stderr belong to the child, so logs only go to the file
	cfg, err := cli.Setup(cli.SetupOptions{
		Fs:        fs,
		ConfigDir: filepath.Join(xdg.ConfigHome, config.AppName),
		StateDir:  filepath.Join(xdg.StateHome, config.AppName),
	})
	if err != nil {
		return 0, err
	}

	exeDir := python.LauncherDir(os.Args[0], nil, os.Executable)

	ctx := context.Background()
	exec := &command.RealExecutor{}
	module := launcher.ModuleName(fs, os.Args[0], flavor)
	session, err := cli.NewSession(ctx, cli.SessionOptions{
		Fs:       fs,
		Exec:     exec,
		Platform: host.New(fs, exec),
		Python:   cli.PythonOverride("", cfg),
		ExeDir:   exeDir,
		Modules:  []string{module},
		Flavor:   flavor,
		Windowed: launcher.Windowed(os.Args[0], flavor),
	})
	if err != nil {
		return 0, err
	}

	engine := launcher.New(launcher.Deps{
		Fs:          fs,
		Exec:        exec,
		Locator:     session.Locator,
		Resolver:    session.Environment,
		Interpreter: session.Interpreter,
		Registry:    session.Registry,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	})
	code, err := engine.Run(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Str("module", module).Msg("launch failed")
		return 0, err
	}
	return code, nil
}
