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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/desktop-app/desktop-app/pkg/config"
	"github.com/desktop-app/desktop-app/pkg/helpers"
	"github.com/desktop-app/desktop-app/pkg/installer"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

// ErrUsage is returned for command lines that do not form a command.
var ErrUsage = errors.New("invalid usage")

type Action string

const (
	ActionInstall   Action = "install"
	ActionUninstall Action = "uninstall"
	ActionConfig    Action = "config"
)

type Flags struct {
	set              *pflag.FlagSet
	Path             *string
	Quiet            *bool
	NoFixEntryPoints *bool
	Debug            *bool
	Version          *bool
	Python           *string
}

// SetupFlags defines the flags of the desktop-app command. Usage and parse
// errors are written to output.
func SetupFlags(output io.Writer) *Flags {
	set := pflag.NewFlagSet(config.AppName, pflag.ContinueOnError)
	set.SetOutput(output)
	set.Usage = func() {
		_, _ = fmt.Fprintf(output,
			"Usage: %s {install|uninstall} [options] MODULE...\n"+
				"       %s config [--python PATH] [--path DIR] [--debug]\n\n",
			config.AppName, config.AppName)
		set.PrintDefaults()
	}

	return &Flags{
		set: set,
		Path: set.String(
			"path",
			"",
			"directory to put shortcuts in instead of the start menu or applications menu",
		),
		Quiet: set.BoolP(
			"quiet",
			"q",
			false,
			"do not print created and deleted files",
		),
		NoFixEntryPoints: set.Bool(
			"no-fix-entry-points",
			false,
			"do not regenerate entry points in conda environments on Windows",
		),
		Debug: set.Bool(
			"debug",
			false,
			"log debug messages to stderr",
		),
		Version: set.Bool(
			"version",
			false,
			"print version and exit",
		),
		Python: set.String(
			"python",
			"",
			"python interpreter to inspect, overriding "+config.PythonEnv+" and the settings file",
		),
	}
}

// Command is a parsed command line.
type Command struct {
	Action  Action
	Python  string
	Modules []string
	Options installer.Options
	Debug   bool
	Version bool
}

// Parse parses args, not including the program name, into a command.
func (f *Flags) Parse(args []string) (*Command, error) {
	if err := f.set.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	cmd := &Command{
		Python:  *f.Python,
		Debug:   *f.Debug,
		Version: *f.Version,
		Options: installer.Options{
			Path:             *f.Path,
			Verbose:          !*f.Quiet,
			NoFixEntryPoints: *f.NoFixEntryPoints,
		},
	}
	if cmd.Version {
		return cmd, nil
	}

	rest := f.set.Args()
	if len(rest) == 0 {
		return nil, fmt.Errorf("%w: missing action", ErrUsage)
	}
	cmd.Action = Action(rest[0])
	cmd.Modules = rest[1:]

	switch cmd.Action {
	case ActionInstall, ActionUninstall:
		if len(cmd.Modules) == 0 {
			return nil, fmt.Errorf("%w: %s needs at least one module", ErrUsage, cmd.Action)
		}
	case ActionConfig:
		if len(cmd.Modules) > 0 {
			return nil, fmt.Errorf("%w: config takes no modules", ErrUsage)
		}
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrUsage, rest[0])
	}
	return cmd, nil
}

// Usage prints the help text.
func (f *Flags) Usage() {
	f.set.Usage()
}

type SetupOptions struct {
	Fs afero.Fs
	// ConfigDir holds config.toml unless DESKTOP_APP_CFG is set.
	ConfigDir string
	// StateDir is the log directory unless the settings name another.
	StateDir string
	// Console is where debug logs are printed, nil for none.
	Console *os.File
	Writers []io.Writer
	Debug   bool
}

// Setup loads the settings and initializes logging.
//
//nolint:gocritic // options struct passed by value
func Setup(opts SetupOptions) (*config.Instance, error) {
	helpers.SetLevel(opts.Debug)

	cfg, err := config.NewConfig(opts.Fs, opts.ConfigDir, config.BaseDefaults)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	logDir := cfg.LogDir()
	if logDir == "" {
		logDir = opts.StateDir
	}
	writers := opts.Writers
	if opts.Debug && opts.Console != nil {
		writers = append(writers, helpers.ConsoleWriter(opts.Console))
	}
	if err := helpers.InitLogging(logDir, writers); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	helpers.SetLevel(opts.Debug || cfg.DebugLogging())
	log.Debug().Str("settings", cfg.Path()).Str("logs", logDir).Msg("loaded settings")
	return cfg, nil
}

// PythonOverride picks the interpreter named on the command line, then the
// one from DESKTOP_APP_PYTHON or the settings. Empty means search.
func PythonOverride(flag string, cfg *config.Instance) string {
	if flag != "" {
		return flag
	}
	if cfg != nil {
		return cfg.Python()
	}
	return os.Getenv(config.PythonEnv)
}
