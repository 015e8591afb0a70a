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

package command

import (
	"bytes"
	"context"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealExecutor_Run(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX true/false")
	}

	executor := &RealExecutor{}

	t.Run("executes_successful_command", func(t *testing.T) {
		t.Parallel()

		err := executor.Run(context.Background(), "true")

		assert.NoError(t, err)
	})

	t.Run("returns_error_for_failed_command", func(t *testing.T) {
		t.Parallel()

		err := executor.Run(context.Background(), "false")

		assert.Error(t, err)
	})

	t.Run("returns_error_for_nonexistent_command", func(t *testing.T) {
		t.Parallel()

		err := executor.Run(context.Background(), "nonexistent_command_that_should_not_exist_12345")

		require.Error(t, err)
	})
}

func TestRealExecutor_Output(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX echo")
	}

	out, err := (&RealExecutor{}).Output(context.Background(), "echo", "hello")

	require.NoError(t, err)
	assert.Equal(t, "hello", strings.TrimSpace(string(out)))
}

func TestRealExecutor_Call(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX sh")
	}

	executor := &RealExecutor{}

	t.Run("forwards_exit_code", func(t *testing.T) {
		t.Parallel()

		code, err := executor.Call(context.Background(), CallOptions{}, "sh", "-c", "exit 7")

		require.NoError(t, err)
		assert.Equal(t, 7, code)
	})

	t.Run("zero_on_success", func(t *testing.T) {
		t.Parallel()

		code, err := executor.Call(context.Background(), CallOptions{HideConsole: true}, "true")

		require.NoError(t, err)
		assert.Equal(t, 0, code)
	})

	t.Run("uses_given_environment_and_stdio", func(t *testing.T) {
		t.Parallel()

		var stdout bytes.Buffer
		opts := CallOptions{
			Env:    []string{"DESKTOP_APP_TEST=marker"},
			Stdout: &stdout,
		}
		code, err := executor.Call(context.Background(), opts, "sh", "-c", `printf %s "$DESKTOP_APP_TEST"`)

		require.NoError(t, err)
		assert.Equal(t, 0, code)
		assert.Equal(t, "marker", stdout.String())
	})

	t.Run("signal_maps_to_shell_exit_code", func(t *testing.T) {
		t.Parallel()

		code, err := executor.Call(context.Background(), CallOptions{}, "sh", "-c", "kill -TERM $$")

		require.NoError(t, err)
		assert.Equal(t, 128+15, code)
	})

	t.Run("launch_failure_is_an_error", func(t *testing.T) {
		t.Parallel()

		code, err := executor.Call(context.Background(), CallOptions{}, "nonexistent_command_that_should_not_exist_12345")

		require.Error(t, err)
		assert.Equal(t, -1, code)
	})
}

func TestExecutor_Interface(t *testing.T) {
	t.Parallel()

	var _ Executor = (*RealExecutor)(nil)
}
