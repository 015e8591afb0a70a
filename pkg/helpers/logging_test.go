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

package helpers

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogging(t *testing.T) {
	// Note: Cannot use t.Parallel() because InitLogging modifies global log.Logger
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	t.Run("creates nested log directory", func(t *testing.T) {
		logDir := filepath.Join(t.TempDir(), "logs", "nested")

		err := InitLogging(logDir, nil)
		require.NoError(t, err)

		info, err := os.Stat(logDir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("writes to additional writers", func(t *testing.T) {
		var buf bytes.Buffer

		err := InitLogging(t.TempDir(), []io.Writer{&buf})
		require.NoError(t, err)

		log.Info().Str("module", "oink").Msg("hello")
		assert.Contains(t, buf.String(), `"module":"oink"`)
		assert.Contains(t, buf.String(), `"message":"hello"`)
	})

	t.Run("fails on invalid directory", func(t *testing.T) {
		err := InitLogging("/proc/invalid\x00path", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create log directory")
	})
}

func TestSetLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	SetLevel(true)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	SetLevel(false)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestConsoleWriterNoColorForFiles(t *testing.T) {
	t.Parallel()

	f, err := os.CreateTemp(t.TempDir(), "console")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	w, ok := ConsoleWriter(f).(zerolog.ConsoleWriter)
	require.True(t, ok)
	assert.True(t, w.NoColor)
}
