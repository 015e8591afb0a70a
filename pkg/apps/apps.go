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

// Package apps builds the desktop configuration of an application module:
// where it lives, what it is called, its icons, its launcher and its
// identity string.
package apps

import (
	"context"
	"fmt"

	"github.com/desktop-app/desktop-app/internal/ospath"
	"github.com/desktop-app/desktop-app/pkg/config"
	"github.com/desktop-app/desktop-app/pkg/environment"
	"github.com/desktop-app/desktop-app/pkg/identity"
	"github.com/desktop-app/desktop-app/pkg/locator"
	"github.com/desktop-app/desktop-app/pkg/platforms"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ModuleConfig is the resolved configuration of one module. It is never
// modified after construction.
type ModuleConfig struct {
	ModuleName string
	// PackageDir is the directory of the top-level package.
	PackageDir string
	// ModuleDir is PackageDir joined with the rest of the dotted name.
	ModuleDir   string
	OrgName     string
	DisplayName string
	// ShortEnv is the short environment name, empty in default
	// environments.
	ShortEnv string
	WinIcon  string
	Icon     string
	// LauncherScript is the windowless entry point, empty when the package
	// is not installed into a scripts directory.
	LauncherScript string
	AppID          string
}

// Installed reports whether the module has a launcher script.
func (m *ModuleConfig) Installed() bool {
	return m.LauncherScript != ""
}

// Registry constructs ModuleConfig values on first use and returns the
// same instance for later lookups. It is not safe for concurrent use.
type Registry struct {
	fs       afero.Fs
	locator  *locator.Locator
	env      *environment.Resolver
	platform platforms.Platform
	modules  map[string]*ModuleConfig
	flavor   ospath.Flavor
}

func NewRegistry(
	fs afero.Fs,
	loc *locator.Locator,
	env *environment.Resolver,
	platform platforms.Platform,
) *Registry {
	return &Registry{
		fs:       fs,
		locator:  loc,
		env:      env,
		platform: platform,
		flavor:   env.Flavor(),
		modules:  make(map[string]*ModuleConfig),
	}
}

// Get returns the configuration of module, building it on first use.
// Failed builds are not cached.
func (r *Registry) Get(ctx context.Context, module string) (*ModuleConfig, error) {
	if mc, ok := r.modules[module]; ok {
		return mc, nil
	}
	mc, err := r.build(ctx, module)
	if err != nil {
		return nil, err
	}
	r.modules[module] = mc
	return mc, nil
}

func (r *Registry) build(ctx context.Context, module string) (*ModuleConfig, error) {
	pkgDir, err := r.locator.PackageDirectory(ctx, module)
	if err != nil {
		return nil, err
	}
	modDir, err := r.locator.ModuleDirectory(ctx, module)
	if err != nil {
		return nil, err
	}

	pkg, err := config.LoadPackageFile(r.fs, r.flavor, pkgDir)
	if err != nil {
		return nil, err
	}
	entry := pkg.Module(module)

	shortEnv, _, err := r.env.ShortName()
	if err != nil {
		return nil, fmt.Errorf("failed to detect environment: %w", err)
	}

	launcher, _, err := r.locator.LauncherScriptPath(ctx, module)
	if err != nil {
		return nil, err
	}

	mc := &ModuleConfig{
		ModuleName:     module,
		PackageDir:     pkgDir,
		ModuleDir:      modDir,
		OrgName:        pkg.Org(),
		ShortEnv:       shortEnv,
		DisplayName:    identity.DisplayName(entry.DisplayName, module, shortEnv),
		LauncherScript: launcher,
		AppID: identity.AppID(identity.Inputs{
			OrgName:     pkg.Org(),
			ProductName: pkg.ProductName,
			Module:      module,
			Prefix:      r.env.Prefix(),
			ShortEnv:    shortEnv,
			Flavor:      r.flavor,
		}),
	}

	mc.WinIcon = r.packagePath(pkgDir, entry.WindowsIcon())
	if mc.WinIcon == "" {
		mc.WinIcon = r.flavor.Join(modDir, module+".ico")
	}
	mc.Icon = r.packagePath(pkgDir, entry.LinuxIcon())
	if mc.Icon == "" {
		mc.Icon, err = r.defaultIcon(modDir, module)
		if err != nil {
			return nil, err
		}
	}

	log.Debug().
		Str("module", module).
		Str("appid", mc.AppID).
		Str("launcher", mc.LauncherScript).
		Msg("loaded module config")
	return mc, nil
}

// packagePath resolves a configured path relative to the package
// directory. Empty stays empty.
func (r *Registry) packagePath(pkgDir, p string) string {
	if p == "" {
		return ""
	}
	if r.flavor.IsAbs(p) {
		return r.flavor.Clean(p)
	}
	return r.flavor.Join(pkgDir, p)
}

// defaultIcon is <module>.svg in the module directory, or the .png when
// there is no svg.
func (r *Registry) defaultIcon(modDir, module string) (string, error) {
	svg := r.flavor.Join(modDir, module+".svg")
	exists, err := afero.Exists(r.fs, svg)
	if err != nil {
		return "", fmt.Errorf("failed to check icon %s: %w", svg, err)
	}
	if exists {
		return svg, nil
	}
	return r.flavor.Join(modDir, module+".png"), nil
}

// Platform returns the platform the registry tags processes with.
func (r *Registry) Platform() platforms.Platform {
	return r.platform
}

// Locator returns the locator used to resolve modules.
func (r *Registry) Locator() *locator.Locator {
	return r.locator
}

// Environment returns the environment resolver used for identities.
func (r *Registry) Environment() *environment.Resolver {
	return r.env
}

// SetProcessAppID tags the running process with the identity of module, so
// the shell groups its windows under the module's shortcut.
func (r *Registry) SetProcessAppID(ctx context.Context, module string) error {
	mc, err := r.Get(ctx, module)
	if err != nil {
		return err
	}
	if err := r.platform.SetProcessIdentity(mc.AppID); err != nil {
		return fmt.Errorf("failed to set identity of %s: %w", module, err)
	}
	log.Debug().Str("appid", mc.AppID).Msg("set process identity")
	return nil
}
