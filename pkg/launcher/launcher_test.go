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

package launcher

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"slices"
	"testing"

	"github.com/desktop-app/desktop-app/internal/ospath"
	"github.com/desktop-app/desktop-app/pkg/apps"
	"github.com/desktop-app/desktop-app/pkg/config"
	"github.com/desktop-app/desktop-app/pkg/environment"
	"github.com/desktop-app/desktop-app/pkg/helpers/command"
	"github.com/desktop-app/desktop-app/pkg/locator"
	"github.com/desktop-app/desktop-app/pkg/python"
	"github.com/desktop-app/desktop-app/pkg/testing/mocks"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// linkFs serves symlinks from a map.
type linkFs struct {
	afero.Fs
	links map[string]string
}

func (l linkFs) ReadlinkIfPossible(name string) (string, error) {
	if target, ok := l.links[name]; ok {
		return target, nil
	}
	return "", &os.PathError{Op: "readlink", Path: name, Err: errors.New("not a link")}
}

func TestModuleName(t *testing.T) {
	t.Parallel()

	fs := linkFs{Fs: afero.NewMemMapFs(), links: map[string]string{
		"/env/bin/oink-myenv": "oink",
		"/env/bin/chain":      "/env/bin/oink-myenv",
		"/usr/local/bin/foo":  "/opt/app/launcher",
	}}

	tests := []struct {
		name   string
		argv0  string
		want   string
		flavor ospath.Flavor
	}{
		{name: "plain", argv0: "/usr/bin/oink", want: "oink", flavor: ospath.POSIX},
		{name: "gui suffix", argv0: "/usr/bin/oink-gui", want: "oink", flavor: ospath.POSIX},
		{name: "dotted", argv0: "/usr/bin/oink.tools-gui", want: "oink.tools", flavor: ospath.POSIX},
		{name: "exe kept on posix", argv0: "/usr/bin/oink.exe", want: "oink.exe", flavor: ospath.POSIX},
		{name: "windows gui", argv0: `C:\env\Scripts\oink-gui.exe`, want: "oink", flavor: ospath.Windows},
		{name: "windows upper exe", argv0: `C:\env\Scripts\oink.EXE`, want: "oink", flavor: ospath.Windows},
		{name: "local link", argv0: "/env/bin/oink-myenv", want: "oink", flavor: ospath.POSIX},
		{name: "link chain", argv0: "/env/bin/chain", want: "oink", flavor: ospath.POSIX},
		{name: "foreign link", argv0: "/usr/local/bin/foo", want: "foo", flavor: ospath.POSIX},
		{name: "bare name", argv0: "oink-gui", want: "oink", flavor: ospath.POSIX},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ModuleName(fs, tt.argv0, tt.flavor))
		})
	}
}

func TestModuleNameWithoutLinkSupport(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "oink-myenv", ModuleName(afero.NewMemMapFs(), "/env/bin/oink-myenv", ospath.POSIX))
}

func TestWindowed(t *testing.T) {
	t.Parallel()

	assert.True(t, Windowed("/usr/bin/oink-gui", ospath.POSIX))
	assert.False(t, Windowed("/usr/bin/oink", ospath.POSIX))
	assert.True(t, Windowed(`C:\env\Scripts\oink-GUI.exe`, ospath.Windows))
	assert.False(t, Windowed(`C:\env\Scripts\oink.exe`, ospath.Windows))
}

func TestScriptPath(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/site/oink/sub", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/site/oink/tool.py", []byte(""), 0o644))
	require.NoError(t, fs.MkdirAll(`C:\site\oink\sub`, 0o755))

	tests := []struct {
		module string
		pkgDir string
		want   string
		flavor ospath.Flavor
	}{
		{module: "oink", pkgDir: "/site/oink", want: "/site/oink/__main__.py", flavor: ospath.POSIX},
		{module: "oink.sub", pkgDir: "/site/oink", want: "/site/oink/sub/__main__.py", flavor: ospath.POSIX},
		{module: "oink.tool", pkgDir: "/site/oink", want: "/site/oink/tool.py", flavor: ospath.POSIX},
		{module: "oink.a.b", pkgDir: "/site/oink", want: "/site/oink/a/b.py", flavor: ospath.POSIX},
		{module: "oink.sub", pkgDir: `C:\site\oink`, want: `C:\site\oink\sub\__main__.py`, flavor: ospath.Windows},
		{module: "oink.tool", pkgDir: `C:\site\oink`, want: `C:\site\oink\tool.py`, flavor: ospath.Windows},
	}
	for _, tt := range tests {
		got, err := ScriptPath(fs, tt.pkgDir, tt.module, tt.flavor)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.module)
	}
}

func TestSelectPatch(t *testing.T) {
	t.Parallel()

	conda := &environment.Patch{Set: map[string]string{"CONDA_PREFIX": "/opt/conda"}}
	venv := &environment.Patch{Set: map[string]string{"VIRTUAL_ENV": "/env"}}

	assert.Same(t, venv, SelectPatch(conda, venv))
	assert.Same(t, venv, SelectPatch(nil, venv))
	assert.Same(t, conda, SelectPatch(conda, nil))
	assert.Nil(t, SelectPatch(nil, nil))
}

func TestResolveTrampoline(t *testing.T) {
	t.Parallel()

	venvw := &python.Interpreter{
		Executable:     `C:\proj\.venv\Scripts\pythonw.exe`,
		BaseExecutable: `C:\Python312\python.exe`,
	}
	tests := []struct {
		interp  *python.Interpreter
		wantEnv map[string]string
		name    string
		want    string
		flavor  ospath.Flavor
		inVenv  bool
	}{
		{
			name:    "windows venv pythonw",
			interp:  venvw,
			inVenv:  true,
			flavor:  ospath.Windows,
			want:    `C:\Python312\pythonw.exe`,
			wantEnv: map[string]string{EnvPyvenvLauncher: `C:\proj\.venv\Scripts\pythonw.exe`},
		},
		{name: "not in venv", interp: venvw, inVenv: false, flavor: ospath.Windows, want: venvw.Executable},
		{name: "posix", interp: venvw, inVenv: true, flavor: ospath.POSIX, want: venvw.Executable},
		{
			name: "console interpreter",
			interp: &python.Interpreter{
				Executable:     `C:\proj\.venv\Scripts\python.exe`,
				BaseExecutable: `C:\Python312\python.exe`,
			},
			inVenv: true,
			flavor: ospath.Windows,
			want:   `C:\proj\.venv\Scripts\python.exe`,
		},
		{
			name: "same executable",
			interp: &python.Interpreter{
				Executable:     `C:\Python312\pythonw.exe`,
				BaseExecutable: `c:\python312\PYTHONW.EXE`,
			},
			inVenv: true,
			flavor: ospath.Windows,
			want:   `C:\Python312\pythonw.exe`,
		},
		{
			name:   "no base executable",
			interp: &python.Interpreter{Executable: `C:\proj\.venv\Scripts\pythonw.exe`},
			inVenv: true,
			flavor: ospath.Windows,
			want:   `C:\proj\.venv\Scripts\pythonw.exe`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := ResolveTrampoline(tt.interp, tt.inVenv, tt.flavor)
			assert.Equal(t, tt.want, res.Executable)
			assert.Equal(t, tt.wantEnv, res.Env)
		})
	}
}

func TestResolveConsole(t *testing.T) {
	t.Parallel()

	exe, hide := ResolveConsole(`C:\Python312\PythonW.EXE`, ospath.Windows)
	assert.Equal(t, `C:\Python312\python.exe`, exe)
	assert.True(t, hide)

	exe, hide = ResolveConsole(`C:\Python312\python.exe`, ospath.Windows)
	assert.Equal(t, `C:\Python312\python.exe`, exe)
	assert.False(t, hide)

	exe, hide = ResolveConsole("/usr/bin/python3", ospath.POSIX)
	assert.Equal(t, "/usr/bin/python3", exe)
	assert.False(t, hide)
}

type fakeSpecs map[string]python.ModuleSpec

func (f fakeSpecs) FindSpec(_ context.Context, name string) (python.ModuleSpec, error) {
	if s, ok := f[name]; ok {
		return s, nil
	}
	return python.ModuleSpec{Name: name}, nil
}

func posixVenv() *python.Interpreter {
	return &python.Interpreter{
		Executable:     "/home/user/.myenv/bin/python3",
		BaseExecutable: "/usr/bin/python3",
		Prefix:         "/home/user/.myenv",
		BasePrefix:     "/usr",
		SitePackages:   []string{"/home/user/.myenv/lib/python3.12/site-packages"},
		Scripts:        "/home/user/.myenv/bin",
	}
}

func newEngine(
	t *testing.T,
	fs afero.Fs,
	interp *python.Interpreter,
	flavor ospath.Flavor,
	environ []string,
	cmd command.Executor,
) *Engine {
	t.Helper()
	return New(engineDeps(t, fs, interp, flavor, environ, cmd))
}

func engineDeps(
	t *testing.T,
	fs afero.Fs,
	interp *python.Interpreter,
	flavor ospath.Flavor,
	environ []string,
	cmd command.Executor,
) Deps {
	t.Helper()
	siteDir := interp.SitePackages[0]
	pkgDir := flavor.Join(siteDir, "oink")
	require.NoError(t, fs.MkdirAll(pkgDir, 0o755))
	specs := fakeSpecs{"oink": {
		Name:      "oink",
		Origin:    flavor.Join(pkgDir, "__init__.py"),
		Found:     true,
		IsPackage: true,
	}}
	return Deps{
		Fs:          fs,
		Exec:        cmd,
		Locator:     locator.New(fs, specs, interp, flavor),
		Resolver:    environment.NewResolver(fs, interp, flavor),
		Interpreter: interp,
		Environ:     environ,
	}
}

func TestResolvePOSIXVenv(t *testing.T) {
	t.Parallel()

	e := newEngine(t, afero.NewMemMapFs(), posixVenv(), ospath.POSIX,
		[]string{"HOME=/home/user", "PATH=/usr/bin", "PYTHONHOME=/usr"}, &mocks.MockCommandExecutor{})

	inv, err := e.Resolve(context.Background(), []string{"/home/user/.myenv/bin/oink", "--flag", "file"})
	require.NoError(t, err)
	assert.Equal(t, "oink", inv.Module)
	assert.Equal(t, "/home/user/.myenv/bin/python3", inv.Python)
	assert.False(t, inv.HideConsole)
	script := "/home/user/.myenv/lib/python3.12/site-packages/oink/__main__.py"
	assert.Equal(t, script, inv.Script)
	assert.Equal(t, []string{script, "--flag", "file"}, inv.Args)
	assert.ElementsMatch(t, []string{
		"HOME=/home/user",
		"PATH=/home/user/.myenv/bin:/usr/bin",
		"VIRTUAL_ENV=/home/user/.myenv",
	}, inv.Env)
}

func TestResolveAlreadyActive(t *testing.T) {
	t.Parallel()

	e := newEngine(t, afero.NewMemMapFs(), posixVenv(), ospath.POSIX,
		[]string{"PATH=/home/user/.myenv/bin:/usr/bin", "VIRTUAL_ENV=/home/user/.myenv/"}, &mocks.MockCommandExecutor{})

	inv, err := e.Resolve(context.Background(), []string{"oink"})
	require.NoError(t, err)
	assert.Nil(t, inv.Env)
}

func TestResolveWindowsVenvTrampoline(t *testing.T) {
	t.Parallel()

	interp := &python.Interpreter{
		Executable:     `C:\proj\.venv\Scripts\pythonw.exe`,
		BaseExecutable: `C:\Python312\python.exe`,
		Prefix:         `C:\proj\.venv`,
		BasePrefix:     `C:\Python312`,
		SitePackages:   []string{`C:\proj\.venv\Lib\site-packages`},
		Scripts:        `C:\proj\.venv\Scripts`,
	}
	e := newEngine(t, afero.NewMemMapFs(), interp, ospath.Windows,
		[]string{`Path=C:\Windows`, `SystemRoot=C:\Windows`}, &mocks.MockCommandExecutor{})

	inv, err := e.Resolve(context.Background(), []string{`C:\proj\.venv\Scripts\oink-gui.exe`})
	require.NoError(t, err)
	assert.Equal(t, `C:\Python312\python.exe`, inv.Python)
	assert.True(t, inv.HideConsole)
	assert.Equal(t, []string{`C:\proj\.venv\Lib\site-packages\oink\__main__.py`}, inv.Args)
	assert.ElementsMatch(t, []string{
		`Path=C:\proj\.venv\Scripts;C:\Windows`,
		`SystemRoot=C:\Windows`,
		`VIRTUAL_ENV=C:\proj\.venv`,
		`__PYVENV_LAUNCHER__=C:\proj\.venv\Scripts\pythonw.exe`,
	}, inv.Env)
}

func TestResolveErrors(t *testing.T) {
	t.Parallel()

	e := newEngine(t, afero.NewMemMapFs(), posixVenv(), ospath.POSIX, []string{}, &mocks.MockCommandExecutor{})

	_, err := e.Resolve(context.Background(), nil)
	require.Error(t, err)

	_, err = e.Resolve(context.Background(), []string{"/usr/bin/missing"})
	require.ErrorIs(t, err, locator.ErrModuleNotFound)
}

func TestRunForwardsExitCode(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Call", mock.Anything, mock.MatchedBy(func(opts command.CallOptions) bool {
		return !opts.HideConsole && len(opts.Env) > 0
	}), "/home/user/.myenv/bin/python3", []string{
		"/home/user/.myenv/lib/python3.12/site-packages/oink/__main__.py", "-v",
	}).Return(3, nil).Once()

	e := newEngine(t, afero.NewMemMapFs(), posixVenv(), ospath.POSIX, []string{"PATH=/usr/bin"}, cmd)
	code, err := e.Run(context.Background(), []string{"/home/user/.myenv/bin/oink", "-v"})
	require.NoError(t, err)
	assert.Equal(t, 3, code)
	cmd.AssertExpectations(t)
}

func TestRunInterrupted(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Call", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(-1, context.Canceled).Once()

	e := newEngine(t, afero.NewMemMapFs(), posixVenv(), ospath.POSIX, []string{}, cmd)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code, err := e.Run(ctx, []string{"oink"})
	require.NoError(t, err)
	assert.Equal(t, InterruptExitCode, code)
}

func TestRunLaunchFailure(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Call", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(-1, exec.ErrNotFound).Once()

	e := newEngine(t, afero.NewMemMapFs(), posixVenv(), ospath.POSIX, []string{}, cmd)
	_, err := e.Run(context.Background(), []string{"oink"})
	require.Error(t, err)
}

func TestRunResolutionFailureSpawnsNothing(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	e := newEngine(t, afero.NewMemMapFs(), posixVenv(), ospath.POSIX, []string{}, cmd)
	_, err := e.Run(context.Background(), []string{"/usr/bin/missing"})
	require.ErrorIs(t, err, locator.ErrModuleNotFound)
	cmd.AssertNotCalled(t, "Call", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunTagsProcessAndChild(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cmd := &mocks.MockCommandExecutor{}
	deps := engineDeps(t, fs, posixVenv(), ospath.POSIX, []string{"PATH=/usr/bin"}, cmd)
	platform := mocks.NewMockPlatform("linux")
	deps.Registry = apps.NewRegistry(fs, deps.Locator, deps.Resolver, platform)

	mc, err := deps.Registry.Get(context.Background(), "oink")
	require.NoError(t, err)
	want := config.AppIDEnv + "=" + mc.AppID

	cmd.On("Call", mock.Anything, mock.MatchedBy(func(opts command.CallOptions) bool {
		return slices.Contains(opts.Env, want)
	}), mock.Anything, mock.Anything).Return(0, nil).Once()

	code, err := New(deps).Run(context.Background(), []string{"/home/user/.myenv/bin/oink"})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	platform.AssertCalled(t, "SetProcessIdentity", mc.AppID)
	cmd.AssertExpectations(t)
}

func TestRunBadPackageFileStillLaunches(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cmd := &mocks.MockCommandExecutor{}
	deps := engineDeps(t, fs, posixVenv(), ospath.POSIX, []string{"PATH=/home/user/.myenv/bin:/usr/bin", "VIRTUAL_ENV=/home/user/.myenv"}, cmd)
	platform := mocks.NewMockPlatform("linux")
	deps.Registry = apps.NewRegistry(fs, deps.Locator, deps.Resolver, platform)
	pkgFile := "/home/user/.myenv/lib/python3.12/site-packages/oink/" + config.PackageFile
	require.NoError(t, afero.WriteFile(fs, pkgFile, []byte("{not json"), 0o644))

	cmd.On("Call", mock.Anything, mock.MatchedBy(func(opts command.CallOptions) bool {
		return opts.Env == nil
	}), mock.Anything, mock.Anything).Return(0, nil).Once()

	code, err := New(deps).Run(context.Background(), []string{"oink"})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	platform.AssertNotCalled(t, "SetProcessIdentity", mock.Anything)
	cmd.AssertExpectations(t)
}
