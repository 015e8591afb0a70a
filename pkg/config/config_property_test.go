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
	"testing"

	"github.com/spf13/afero"
	"pgregory.net/rapid"
)

// TestPropertySavedPathsReload verifies any printable path survives a save
// and a fresh load, including quotes and backslashes.
func TestPropertySavedPathsReload(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		python := rapid.StringMatching(`[ -~]{0,40}`).Draw(t, "python")
		shortcutDir := rapid.StringMatching(`[A-Za-z]:\\[ -~]{0,20}`).Draw(t, "shortcutDir")
		debug := rapid.Bool().Draw(t, "debug")

		fs := afero.NewMemMapFs()
		cfg, err := NewConfig(fs, "/cfg", BaseDefaults)
		if err != nil {
			t.Fatalf("NewConfig: %v", err)
		}
		cfg.SetPython(python)
		cfg.SetShortcutDir(shortcutDir)
		cfg.vals.DebugLogging = debug
		if err := cfg.Save(); err != nil {
			t.Fatalf("Save: %v", err)
		}

		reloaded, err := NewConfig(fs, "/cfg", BaseDefaults)
		if err != nil {
			t.Fatalf("reload: %v", err)
		}
		if got := reloaded.Values(); got != cfg.Values() {
			t.Fatalf("reloaded %+v, saved %+v", got, cfg.Values())
		}
	})
}

// TestPropertyMissingKeysKeepDefaults verifies the file only overrides the
// keys it names.
func TestPropertyMissingKeysKeepDefaults(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		defaults := BaseDefaults
		defaults.ShortcutDir = rapid.StringMatching(`/[a-z]{1,10}`).Draw(t, "defaultDir")
		defaults.LogDir = rapid.StringMatching(`/[a-z]{1,10}`).Draw(t, "defaultLogDir")
		python := rapid.StringMatching(`/[a-z]{1,10}/python3`).Draw(t, "python")

		fs := afero.NewMemMapFs()
		data := "config_schema = 1\npython = '" + python + "'\n"
		if err := afero.WriteFile(fs, "/cfg/"+CfgFile, []byte(data), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}

		cfg, err := NewConfig(fs, "/cfg", defaults)
		if err != nil {
			t.Fatalf("NewConfig: %v", err)
		}
		got := cfg.Values()
		if got.Python != python || got.ShortcutDir != defaults.ShortcutDir || got.LogDir != defaults.LogDir {
			t.Fatalf("got %+v, defaults %+v, python %q", got, defaults, python)
		}
	})
}
