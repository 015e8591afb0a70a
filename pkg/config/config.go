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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desktop-app/desktop-app/pkg/helpers/syncutil"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const SchemaVersion = 1

// Values are the tool's own settings, as opposed to the per-package
// desktop-app.json.
type Values struct {
	Python       string `toml:"python,omitempty"`
	ShortcutDir  string `toml:"shortcut_dir,omitempty"`
	LogDir       string `toml:"log_dir,omitempty"`
	ConfigSchema int    `toml:"config_schema"`
	DebugLogging bool   `toml:"debug_logging"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
}

type Instance struct {
	fs       afero.Fs
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// NewConfig loads settings from $DESKTOP_APP_CFG or configDir/config.toml.
// A missing file leaves the defaults in place; it is only written by Save.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(fs afero.Fs, configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := &Instance{
		fs:       fs,
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	if err := cfg.Load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Instance) Path() string {
	return c.cfgPath
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := afero.ReadFile(c.fs, c.cfgPath)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug().Str("path", c.cfgPath).Msg("no config file, using defaults")
		c.vals = c.defaults
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then unmarshal file values on top.
	newVals := c.defaults
	if err := toml.Unmarshal(data, &newVals); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return errors.New("schema version mismatch")
	}

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := c.fs.MkdirAll(filepath.Dir(c.cfgPath), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := afero.WriteFile(c.fs, c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Python is the interpreter override. $DESKTOP_APP_PYTHON wins over the
// file.
func (c *Instance) Python() string {
	if p := os.Getenv(PythonEnv); p != "" {
		return p
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Python
}

func (c *Instance) SetPython(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Python = path
}

func (c *Instance) ShortcutDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.ShortcutDir
}

func (c *Instance) SetShortcutDir(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.ShortcutDir = dir
}

func (c *Instance) LogDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.LogDir
}

func (c *Instance) SetLogDir(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.LogDir = dir
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// Values returns a copy of the current settings.
func (c *Instance) Values() Values {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals
}
