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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/desktop-app/desktop-app/internal/ospath"
	"github.com/desktop-app/desktop-app/pkg/cli"
	"github.com/desktop-app/desktop-app/pkg/config"
	"github.com/desktop-app/desktop-app/pkg/helpers/command"
	"github.com/desktop-app/desktop-app/pkg/platforms/host"
	"github.com/desktop-app/desktop-app/pkg/python"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

func main() {
	failures, err := run()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	os.Exit(failures)
}

func run() (int, error) {
	flags := cli.SetupFlags(os.Stderr)
	cmd, err := flags.Parse(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}

	fs := afero.NewOsFs()
	cfg, err := cli.Setup(cli.SetupOptions{
		Fs:        fs,
		ConfigDir: filepath.Join(xdg.ConfigHome, config.AppName),
		StateDir:  filepath.Join(xdg.StateHome, config.AppName),
		Console:   os.Stderr,
		Debug:     cmd.Debug,
	})
	if err != nil {
		return 0, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		log.Warn().Err(err).Msg("failed to get home directory")
	}
	exeDir := python.LauncherDir(os.Args[0], nil, os.Executable)

	exec := &command.RealExecutor{}
	return cli.Run(context.Background(), cmd, cli.Deps{
		Fs:       fs,
		Exec:     exec,
		Platform: host.New(fs, exec),
		Config:   cfg,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Home:     home,
		ExeDir:   exeDir,
		Flavor:   ospath.Host(),
	}), nil
}
