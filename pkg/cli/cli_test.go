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
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desktop-app/desktop-app/pkg/config"
	"github.com/desktop-app/desktop-app/pkg/installer"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		want    *Command
		name    string
		args    []string
		wantErr bool
	}{
		{
			name: "install several modules",
			args: []string{"install", "oink", "moo.app"},
			want: &Command{
				Action:  ActionInstall,
				Modules: []string{"oink", "moo.app"},
				Options: installer.Options{Verbose: true},
			},
		},
		{
			name: "uninstall quietly into a directory",
			args: []string{"uninstall", "-q", "--path", "/tmp/menu", "oink"},
			want: &Command{
				Action:  ActionUninstall,
				Modules: []string{"oink"},
				Options: installer.Options{Path: "/tmp/menu"},
			},
		},
		{
			name: "flags before the action",
			args: []string{"--no-fix-entry-points", "--debug", "--python", "/usr/bin/python3", "install", "oink"},
			want: &Command{
				Action:  ActionInstall,
				Modules: []string{"oink"},
				Python:  "/usr/bin/python3",
				Debug:   true,
				Options: installer.Options{Verbose: true, NoFixEntryPoints: true},
			},
		},
		{
			name: "config",
			args: []string{"config", "--python", "/opt/py/bin/python3"},
			want: &Command{
				Action:  ActionConfig,
				Modules: []string{},
				Python:  "/opt/py/bin/python3",
				Options: installer.Options{Verbose: true},
			},
		},
		{
			name: "version needs no action",
			args: []string{"--version"},
			want: &Command{Version: true, Options: installer.Options{Verbose: true}},
		},
		{name: "missing action", args: []string{}, wantErr: true},
		{name: "missing modules", args: []string{"install"}, wantErr: true},
		{name: "unknown action", args: []string{"frobnicate", "oink"}, wantErr: true},
		{name: "config with modules", args: []string{"config", "oink"}, wantErr: true},
		{name: "unknown flag", args: []string{"install", "--nope", "oink"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			cmd, err := SetupFlags(&out).Parse(tt.args)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUsage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestParseHelp(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	_, err := SetupFlags(&out).Parse([]string{"--help"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pflag.ErrHelp))
	assert.Contains(t, out.String(), "Usage: desktop-app {install|uninstall}")
	assert.Contains(t, out.String(), "--no-fix-entry-points")
}

func TestPythonOverride(t *testing.T) {
	t.Setenv("DESKTOP_APP_PYTHON", "/env/python3")

	assert.Equal(t, "/flag/python3", PythonOverride("/flag/python3", nil))
	assert.Equal(t, "/env/python3", PythonOverride("", nil))
}

func TestSetup(t *testing.T) {
	// Note: Cannot use t.Parallel() because Setup modifies the global logger
	prevLevel := zerolog.GlobalLevel()
	prevLogger := log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLogger
	})

	t.Run("settings choose log dir and level", func(t *testing.T) {
		logDir := t.TempDir()
		fs := afero.NewMemMapFs()
		settings := "config_schema = 1\ndebug_logging = true\nlog_dir = '" + logDir + "'\n"
		require.NoError(t, afero.WriteFile(fs, "/cfg/config.toml", []byte(settings), 0o600))

		cfg, err := Setup(SetupOptions{Fs: fs, ConfigDir: "/cfg", StateDir: t.TempDir()})
		require.NoError(t, err)
		assert.True(t, cfg.DebugLogging())
		assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

		log.Info().Msg("hello")
		_, err = os.Stat(filepath.Join(logDir, config.LogFile))
		require.NoError(t, err)
	})

	t.Run("defaults log to the state dir", func(t *testing.T) {
		stateDir := filepath.Join(t.TempDir(), "state")

		cfg, err := Setup(SetupOptions{Fs: afero.NewMemMapFs(), ConfigDir: "/cfg", StateDir: stateDir})
		require.NoError(t, err)
		assert.False(t, cfg.DebugLogging())
		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

		info, err := os.Stat(stateDir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("schema mismatch", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/cfg/config.toml", []byte("config_schema = 99\n"), 0o600))

		_, err := Setup(SetupOptions{Fs: fs, ConfigDir: "/cfg", StateDir: t.TempDir()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load settings")
	})
}
