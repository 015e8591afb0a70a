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

// Package locator works out where an importable package lives, how it was
// installed and which scripts directory holds its entry points.
package locator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desktop-app/desktop-app/internal/ospath"
	"github.com/desktop-app/desktop-app/pkg/python"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	ErrModuleNotFound = errors.New("module not found")
	ErrNotAPackage    = errors.New("module is not a package")
)

// SpecFinder resolves top-level import names. *python.Inspector satisfies
// it.
type SpecFinder interface {
	FindSpec(ctx context.Context, name string) (python.ModuleSpec, error)
}

type SiteKind int

const (
	NotInstalled SiteKind = iota
	System
	User
	Editable
)

func (k SiteKind) String() string {
	switch k {
	case System:
		return "system"
	case User:
		return "user"
	case Editable:
		return "editable"
	default:
		return "not installed"
	}
}

// Site is where a package is installed. Dir is the site-packages
// directory holding the package or, for editable installs, the one holding
// its link file.
type Site struct {
	Dir  string
	Kind SiteKind
}

type Locator struct {
	fs     afero.Fs
	specs  SpecFinder
	interp *python.Interpreter
	flavor ospath.Flavor
}

func New(fs afero.Fs, specs SpecFinder, interp *python.Interpreter, flavor ospath.Flavor) *Locator {
	return &Locator{fs: fs, specs: specs, interp: interp, flavor: flavor}
}

// TopLevel returns the importable name a dotted module lives under.
func TopLevel(module string) string {
	top, _, _ := strings.Cut(module, ".")
	return top
}

// PackageDirectory returns the directory of the top-level package that
// contains module.
func (l *Locator) PackageDirectory(ctx context.Context, module string) (string, error) {
	top := TopLevel(module)
	spec, err := l.specs.FindSpec(ctx, top)
	if err != nil {
		return "", err
	}
	if !spec.Found || spec.Origin == "" {
		return "", fmt.Errorf("%w: %s", ErrModuleNotFound, top)
	}
	if !spec.IsPackage {
		return "", fmt.Errorf("%w: %s", ErrNotAPackage, top)
	}
	return l.flavor.Dir(spec.Origin), nil
}

// ModuleDirectory is the package directory joined with the rest of the
// dotted path.
func (l *Locator) ModuleDirectory(ctx context.Context, module string) (string, error) {
	pkgDir, err := l.PackageDirectory(ctx, module)
	if err != nil {
		return "", err
	}
	parts := strings.Split(module, ".")
	return l.flavor.Join(append([]string{pkgDir}, parts[1:]...)...), nil
}

// InstallSite classifies how the package holding module was installed.
func (l *Locator) InstallSite(ctx context.Context, module string) (Site, error) {
	pkgDir, err := l.PackageDirectory(ctx, module)
	if err != nil {
		return Site{}, err
	}
	parent := l.flavor.Dir(pkgDir)

	for _, dir := range l.interp.SitePackages {
		if l.flavor.Equal(parent, dir) {
			return Site{Kind: System, Dir: dir}, nil
		}
	}
	if l.interp.UserSite != "" && l.flavor.Equal(parent, l.interp.UserSite) {
		return Site{Kind: User, Dir: l.interp.UserSite}, nil
	}

	site, ok, err := l.findLink(parent)
	if err != nil {
		return Site{}, err
	}
	if ok {
		log.Debug().Str("module", module).Str("site", site).Msg("found editable install")
		return Site{Kind: Editable, Dir: site}, nil
	}
	return Site{Kind: NotInstalled}, nil
}

// ScriptsDirectory returns the scripts directory matching the install
// site, or false when the package is not installed. The mapping follows
// common distro conventions and is best effort.
func (l *Locator) ScriptsDirectory(ctx context.Context, module string) (string, bool, error) {
	site, err := l.InstallSite(ctx, module)
	if err != nil {
		return "", false, err
	}
	switch {
	case site.Kind == NotInstalled:
		return "", false, nil
	case site.Kind == User || (l.interp.UserSite != "" && l.flavor.Equal(site.Dir, l.interp.UserSite)):
		return l.interp.UserScripts, true, nil
	case l.interp.LocalScripts != "" &&
		l.flavor.HasPrefix(site.Dir, l.flavor.Dir(l.interp.LocalScripts)):
		return l.interp.LocalScripts, true, nil
	default:
		return l.interp.Scripts, true, nil
	}
}

// LauncherScriptPath returns the path of the windowless entry point for
// module, or false when there is no scripts directory for it.
func (l *Locator) LauncherScriptPath(ctx context.Context, module string) (string, bool, error) {
	dir, ok, err := l.ScriptsDirectory(ctx, module)
	if err != nil || !ok {
		return "", false, err
	}
	return l.flavor.Join(dir, LauncherName(module, l.flavor)), true, nil
}

// LauncherName is the file name of the windowless entry point for module.
func LauncherName(module string, flavor ospath.Flavor) string {
	if flavor.IsWindows() {
		return module + "-gui.exe"
	}
	return module
}
