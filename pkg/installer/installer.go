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

// Package installer adds and removes the menu entry of an application
// module.
package installer

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/desktop-app/desktop-app/internal/ospath"
	"github.com/desktop-app/desktop-app/pkg/apps"
	"github.com/desktop-app/desktop-app/pkg/helpers/command"
	"github.com/desktop-app/desktop-app/pkg/platforms"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

//go:embed fix_entry_points.py
var fixEntryPointsScript string

var ErrNotInstalled = errors.New("package is not installed")

const fixEntryPointsTimeout = 2 * time.Minute

type Options struct {
	// Path is the directory to put the shortcut in instead of the
	// platform's menu directory.
	Path string
	// Verbose prints created and deleted files, and warnings.
	Verbose bool
	// NoFixEntryPoints skips regenerating entry points in conda
	// environments on Windows.
	NoFixEntryPoints bool
}

type Deps struct {
	Fs       afero.Fs
	Registry *apps.Registry
	Exec     command.Executor
	// Python is the interpreter used to regenerate entry points.
	Python string
	// Home is the working directory of Windows shortcuts.
	Home   string
	Stdout io.Writer
	Stderr io.Writer
}

type Installer struct {
	fs       afero.Fs
	registry *apps.Registry
	platform platforms.Platform
	exec     command.Executor
	stdout   io.Writer
	stderr   io.Writer
	python   string
	home     string
	flavor   ospath.Flavor
}

func New(deps Deps) *Installer {
	stdout, stderr := deps.Stdout, deps.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &Installer{
		fs:       deps.Fs,
		registry: deps.Registry,
		platform: deps.Registry.Platform(),
		exec:     deps.Exec,
		python:   deps.Python,
		home:     deps.Home,
		stdout:   stdout,
		stderr:   stderr,
		flavor:   deps.Registry.Environment().Flavor(),
	}
}

func (i *Installer) info(opts Options, format string, a ...any) {
	if opts.Verbose {
		_, _ = fmt.Fprintf(i.stdout, format+"\n", a...)
	}
}

func (i *Installer) warn(opts Options, format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	log.Warn().Msg(msg)
	if opts.Verbose {
		_, _ = fmt.Fprintln(i.stderr, "warning: "+msg)
	}
}

// shortcutPath is where the menu entry of mc goes.
func (i *Installer) shortcutPath(mc *apps.ModuleConfig, opts Options) (string, error) {
	dir := opts.Path
	if dir == "" {
		var err error
		dir, err = i.platform.ShortcutDir(mc.OrgName)
		if err != nil {
			return "", fmt.Errorf("failed to get shortcut directory: %w", err)
		}
	}
	return i.flavor.Join(dir, i.platform.ShortcutName(mc.AppID, mc.DisplayName)), nil
}

// symlinkPath is the appid named link to the launcher that POSIX menu
// entries point at, so the process name matches the entry. Empty when the
// appid is the module name or there is no launcher.
func (i *Installer) symlinkPath(mc *apps.ModuleConfig) string {
	if i.flavor.IsWindows() || mc.AppID == mc.ModuleName || !mc.Installed() {
		return ""
	}
	return i.flavor.Join(i.flavor.Dir(mc.LauncherScript), mc.AppID)
}

// Install creates the menu entry for module, replacing any existing one.
func (i *Installer) Install(ctx context.Context, module string, opts Options) error {
	mc, err := i.registry.Get(ctx, module)
	if err != nil {
		return err
	}
	if !mc.Installed() {
		return fmt.Errorf(
			"%w: the package providing the module %s is not installed to the current "+
				"Python environment, so its entry point scripts do not exist; install it "+
				"first, or make an editable install with `pip install -e`",
			ErrNotInstalled, module,
		)
	}

	path, err := i.shortcutPath(mc, opts)
	if err != nil {
		return err
	}
	exists, err := afero.Exists(i.fs, path)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}
	if exists {
		if prev, err := i.platform.ReadShortcut(path); err == nil && prev.Target != "" {
			i.warn(opts, "overwriting existing file %s (target %s)", path, prev.Target)
		} else {
			i.warn(opts, "overwriting existing file %s", path)
		}
	}

	symlink := i.symlinkPath(mc)
	s := platforms.Shortcut{
		Path:        path,
		Target:      mc.LauncherScript,
		DisplayName: mc.DisplayName,
		AppID:       mc.AppID,
		Icon:        mc.Icon,
	}
	if symlink != "" {
		s.Target = symlink
	}
	if i.flavor.IsWindows() {
		s.Icon = mc.WinIcon
		s.WorkingDirectory = i.home
	}

	if err := i.platform.WriteShortcut(s, true); err != nil {
		return fmt.Errorf("failed to install %s: %w", module, err)
	}
	i.info(opts, " -> created %s", path)
	log.Info().Str("module", module).Str("path", path).Str("appid", mc.AppID).Msg("installed shortcut")

	if symlink != "" {
		if err := i.link(mc.LauncherScript, symlink, opts); err != nil {
			return err
		}
	}

	if err := i.platform.RefreshShellCache(); err != nil {
		log.Warn().Err(err).Msg("failed to refresh shell cache")
	}

	if i.flavor.IsWindows() && !opts.NoFixEntryPoints {
		return i.fixEntryPoints(ctx, module, opts)
	}
	return nil
}

func (i *Installer) lexists(path string) (bool, error) {
	if l, ok := i.fs.(afero.Lstater); ok {
		_, _, err := l.LstatIfPossible(path)
		if err == nil {
			return true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check %s: %w", path, err)
	}
	exists, err := afero.Exists(i.fs, path)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", path, err)
	}
	return exists, nil
}

func (i *Installer) link(target, symlink string, opts Options) error {
	linker, ok := i.fs.(afero.Linker)
	if !ok {
		return fmt.Errorf("failed to create %s: %w", symlink, afero.ErrNoSymlink)
	}
	exists, err := i.lexists(symlink)
	if err != nil {
		return err
	}
	if exists {
		i.warn(opts, "overwriting existing symlink %s", symlink)
		if err := i.fs.Remove(symlink); err != nil {
			return fmt.Errorf("failed to replace %s: %w", symlink, err)
		}
	}
	if err := linker.SymlinkIfPossible(target, symlink); err != nil {
		return fmt.Errorf("failed to create symlink %s: %w", symlink, err)
	}
	i.info(opts, " -> created symlink %s -> %s", symlink, i.flavor.Base(target))
	return nil
}

// fixEntryPoints regenerates the package's entry points when running in
// conda, which installs gui_scripts as console scripts.
func (i *Installer) fixEntryPoints(ctx context.Context, module string, opts Options) error {
	conda, ok, err := i.registry.Environment().Conda()
	if err != nil {
		return fmt.Errorf("failed to detect conda environment: %w", err)
	}
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, fixEntryPointsTimeout)
	defer cancel()
	log.Debug().Str("env", conda.Name).Str("module", module).Msg("regenerating entry points")
	out, err := i.exec.Output(ctx, i.python, "-c", fixEntryPointsScript, module)
	if err != nil {
		return fmt.Errorf("failed to fix entry points of %s: %w", module, err)
	}
	for _, dist := range strings.Fields(string(out)) {
		i.info(opts, " -> regenerated entry points of %s", dist)
	}
	return nil
}

// Uninstall removes the menu entry of module and its symlink. Files that
// do not exist are reported as warnings.
func (i *Installer) Uninstall(ctx context.Context, module string, opts Options) error {
	mc, err := i.registry.Get(ctx, module)
	if err != nil {
		return err
	}
	path, err := i.shortcutPath(mc, opts)
	if err != nil {
		return err
	}

	files := []string{path}
	if symlink := i.symlinkPath(mc); symlink != "" {
		files = append(files, symlink)
	}
	for _, f := range files {
		err := i.fs.Remove(f)
		switch {
		case errors.Is(err, os.ErrNotExist):
			i.warn(opts, "no such file %s, nothing to delete", f)
		case err != nil:
			return fmt.Errorf("failed to delete %s: %w", f, err)
		default:
			i.info(opts, " -> deleted %s", f)
		}
	}
	log.Info().Str("module", module).Str("path", path).Msg("uninstalled shortcut")

	if err := i.platform.RefreshShellCache(); err != nil {
		log.Warn().Err(err).Msg("failed to refresh shell cache")
	}
	return nil
}
