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

// Package launcher is the entry point shared by application launchers. It
// works out which module the launcher stands for, then runs that module's
// script in a child interpreter that sees the launcher's environment as
// activated, and exits with the child's status.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"strings"

	"github.com/desktop-app/desktop-app/internal/ospath"
	"github.com/desktop-app/desktop-app/pkg/apps"
	"github.com/desktop-app/desktop-app/pkg/config"
	"github.com/desktop-app/desktop-app/pkg/environment"
	"github.com/desktop-app/desktop-app/pkg/helpers/command"
	"github.com/desktop-app/desktop-app/pkg/locator"
	"github.com/desktop-app/desktop-app/pkg/python"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	// EnvPyvenvLauncher tells a base interpreter which venv launcher it
	// stands in for.
	EnvPyvenvLauncher = "__PYVENV_LAUNCHER__"

	// GUISuffix marks the windowless launcher of a module.
	GUISuffix = "-gui"

	// InterruptExitCode is returned when the wait for the child is
	// interrupted.
	InterruptExitCode = 1

	mainFile     = "__main__.py"
	scriptExt    = ".py"
	exeExt       = ".exe"
	pythonwExe   = "pythonw.exe"
	pythonExe    = "python.exe"
	maxLinkDepth = 8
)

// ModuleName derives the module a launcher runs from its argv[0]. Symlinks
// pointing into the same directory are followed, so an appid named link
// runs the module it links to. On Windows the .exe extension is removed,
// and the GUI suffix is removed everywhere.
func ModuleName(fs afero.Fs, argv0 string, flavor ospath.Flavor) string {
	p := resolveLocalLinks(fs, argv0, flavor)
	name := flavor.Base(p)
	if n := len(name) - len(exeExt); flavor.IsWindows() && n > 0 && strings.EqualFold(name[n:], exeExt) {
		name = name[:n]
	}
	return strings.TrimSuffix(name, GUISuffix)
}

// Windowed reports whether argv0 names the windowless launcher of a module.
func Windowed(argv0 string, flavor ospath.Flavor) bool {
	name := flavor.Base(argv0)
	if flavor.IsWindows() {
		name = strings.ToLower(name)
		name = strings.TrimSuffix(name, exeExt)
	}
	return strings.HasSuffix(name, GUISuffix)
}

// resolveLocalLinks follows symlinks whose target stays in the directory of
// the link.
func resolveLocalLinks(fs afero.Fs, p string, flavor ospath.Flavor) string {
	reader, ok := fs.(afero.LinkReader)
	if !ok {
		return p
	}
	for range maxLinkDepth {
		target, err := reader.ReadlinkIfPossible(p)
		if err != nil {
			return p
		}
		dir := flavor.Dir(p)
		if !flavor.IsAbs(target) {
			target = flavor.Join(dir, target)
		}
		if !flavor.Equal(flavor.Dir(target), dir) {
			return p
		}
		p = target
	}
	return p
}

// ScriptPath is the file the interpreter runs for module: the package
// directory joined with the rest of the dotted name, then __main__.py for
// a package or the .py extension for a plain module.
func ScriptPath(fs afero.Fs, packageDir, module string, flavor ospath.Flavor) (string, error) {
	parts := strings.Split(module, ".")
	p := flavor.Join(append([]string{packageDir}, parts[1:]...)...)

	info, err := fs.Stat(p)
	switch {
	case err == nil && info.IsDir():
		return flavor.Join(p, mainFile), nil
	case err == nil:
		return p, nil
	case errors.Is(err, os.ErrNotExist):
		return p + scriptExt, nil
	default:
		return "", fmt.Errorf("failed to inspect %s: %w", p, err)
	}
}

// SelectPatch prefers the venv patch. An interpreter is never in both
// kinds of environment, so at most one is expected to be set.
func SelectPatch(conda, venv *environment.Patch) *environment.Patch {
	if venv != nil {
		return venv
	}
	return conda
}

// Resolution is the interpreter to run and extra variables it needs.
type Resolution struct {
	Env        map[string]string
	Executable string
}

// ResolveTrampoline swaps a Windows venv pythonw.exe, which only
// relaunches the base interpreter, for the base pythonw.exe. The base
// interpreter is told about the venv through __PYVENV_LAUNCHER__.
func ResolveTrampoline(interp *python.Interpreter, inVenv bool, flavor ospath.Flavor) Resolution {
	res := Resolution{Executable: interp.Executable}
	if !flavor.IsWindows() || !inVenv || interp.BaseExecutable == "" {
		return res
	}
	if !strings.EqualFold(flavor.Base(interp.Executable), pythonwExe) {
		return res
	}
	if flavor.Equal(interp.BaseExecutable, interp.Executable) {
		return res
	}
	res.Executable = flavor.Join(flavor.Dir(interp.BaseExecutable), pythonwExe)
	res.Env = map[string]string{EnvPyvenvLauncher: interp.Executable}
	return res
}

// ResolveConsole swaps pythonw.exe for the python.exe next to it. The
// child is then started without a console window, so it behaves like
// pythonw.exe but keeps working standard streams.
func ResolveConsole(exe string, flavor ospath.Flavor) (string, bool) {
	if !strings.EqualFold(flavor.Base(exe), pythonwExe) {
		return exe, false
	}
	return flavor.Join(flavor.Dir(exe), pythonExe), true
}

// Invocation is a fully resolved child process.
type Invocation struct {
	Module string
	Script string
	Python string
	Args   []string
	// AppID is the module's identity, empty when its configuration could
	// not be loaded.
	AppID string
	// Env is the child's environment block, nil to inherit.
	Env         []string
	HideConsole bool
}

type Deps struct {
	Fs          afero.Fs
	Exec        command.Executor
	Locator     *locator.Locator
	Resolver    *environment.Resolver
	Interpreter *python.Interpreter
	// Registry supplies the module's identity. Without it the process is
	// not tagged and the child gets no identity variable.
	Registry *apps.Registry
	// Environ is the ambient environment, os.Environ() when nil.
	Environ []string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

type Engine struct {
	fs       afero.Fs
	exec     command.Executor
	locator  *locator.Locator
	resolver *environment.Resolver
	interp   *python.Interpreter
	registry *apps.Registry
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	environ  []string
	flavor   ospath.Flavor
}

func New(deps Deps) *Engine {
	environ := deps.Environ
	if environ == nil {
		environ = os.Environ()
	}
	return &Engine{
		fs:       deps.Fs,
		exec:     deps.Exec,
		locator:  deps.Locator,
		resolver: deps.Resolver,
		interp:   deps.Interpreter,
		registry: deps.Registry,
		environ:  environ,
		stdin:    deps.Stdin,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
		flavor:   deps.Resolver.Flavor(),
	}
}

// Resolve builds the child invocation for argv without starting it.
func (e *Engine) Resolve(ctx context.Context, argv []string) (*Invocation, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty argument list")
	}

	module := ModuleName(e.fs, argv[0], e.flavor)
	pkgDir, err := e.locator.PackageDirectory(ctx, module)
	if err != nil {
		return nil, err
	}
	script, err := ScriptPath(e.fs, pkgDir, module, e.flavor)
	if err != nil {
		return nil, err
	}

	ambient := environment.NewEnviron(e.environ, e.flavor)
	conda, venv, err := e.resolver.Patches(ambient)
	if err != nil {
		return nil, fmt.Errorf("failed to detect environment: %w", err)
	}
	_, inVenv, err := e.resolver.Venv()
	if err != nil {
		return nil, fmt.Errorf("failed to detect environment: %w", err)
	}

	res := ResolveTrampoline(e.interp, inVenv, e.flavor)
	patch := SelectPatch(conda, venv)

	extra := make(map[string]string, len(res.Env)+1)
	maps.Copy(extra, res.Env)
	appID := e.appID(ctx, module)
	if appID != "" && ambient.Value(config.AppIDEnv) != appID {
		extra[config.AppIDEnv] = appID
	}

	var env []string
	if patch != nil || len(extra) > 0 {
		child := ambient.Clone()
		patch.Apply(child)
		for k, v := range extra {
			child.Set(k, v)
		}
		env = child.List()
	}

	py, hide := ResolveConsole(res.Executable, e.flavor)
	inv := &Invocation{
		Module:      module,
		Script:      script,
		Python:      py,
		Args:        append([]string{script}, argv[1:]...),
		AppID:       appID,
		Env:         env,
		HideConsole: hide,
	}
	log.Debug().
		Str("module", module).
		Str("script", script).
		Str("python", py).
		Str("appid", appID).
		Bool("patched", env != nil).
		Bool("hide_console", hide).
		Msg("resolved launch")
	return inv, nil
}

// appID is the identity of module, or empty when there is no registry or
// the module's configuration cannot be loaded. A bad package file must not
// stop the module from starting.
func (e *Engine) appID(ctx context.Context, module string) string {
	if e.registry == nil {
		return ""
	}
	mc, err := e.registry.Get(ctx, module)
	if err != nil {
		log.Warn().Err(err).Str("module", module).Msg("failed to load module config")
		return ""
	}
	return mc.AppID
}

// Run resolves argv and runs the child in the foreground, returning its
// exit code. An interrupt while waiting stops the child and returns
// InterruptExitCode. Resolution and launch errors are returned before or
// instead of any exit code.
func (e *Engine) Run(ctx context.Context, argv []string) (int, error) {
	inv, err := e.Resolve(ctx, argv)
	if err != nil {
		return -1, err
	}

	if inv.AppID != "" {
		if err := e.registry.SetProcessAppID(ctx, inv.Module); err != nil {
			log.Warn().Err(err).Msg("failed to set process identity")
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	code, err := e.exec.Call(ctx, command.CallOptions{
		Stdin:       e.stdin,
		Stdout:      e.stdout,
		Stderr:      e.stderr,
		Env:         inv.Env,
		HideConsole: inv.HideConsole,
	}, inv.Python, inv.Args...)
	if ctx.Err() != nil {
		log.Debug().Str("module", inv.Module).Msg("interrupted")
		return InterruptExitCode, nil
	}
	if err != nil {
		return -1, err
	}
	log.Debug().Str("module", inv.Module).Int("code", code).Msg("child exited")
	return code, nil
}
