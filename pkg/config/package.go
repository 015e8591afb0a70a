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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/desktop-app/desktop-app/internal/ospath"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	// PackageFile is read from an application's package directory.
	PackageFile = "desktop-app.json"
	// LegacyPackageFile is the name used before the project was renamed.
	LegacyPackageFile = "winlauncher.json"
)

// ModuleEntry is the per-module section of a package file.
type ModuleEntry struct {
	DisplayName string `json:"display_name" validate:"omitempty,displayname"`
	WinIcon     string `json:"winicon"`
	Ico         string `json:"ico"`
	Icon        string `json:"icon"`
	Svg         string `json:"svg"`
}

// WindowsIcon returns the configured .ico path, preferring "winicon".
func (m ModuleEntry) WindowsIcon() string {
	if m.WinIcon != "" {
		return m.WinIcon
	}
	return m.Ico
}

// LinuxIcon returns the configured icon path, preferring "icon".
func (m ModuleEntry) LinuxIcon() string {
	if m.Icon != "" {
		return m.Icon
	}
	return m.Svg
}

type Package struct {
	Modules     map[string]ModuleEntry `json:"modules" validate:"dive,keys,dotted,endkeys"`
	OrgName     string                 `json:"org_name"`
	CompanyName string                 `json:"company_name"`
	ProductName string                 `json:"product_name"`
}

// Org returns org_name, falling back to the legacy company_name.
func (p *Package) Org() string {
	if p.OrgName != "" {
		return p.OrgName
	}
	return p.CompanyName
}

// Module returns the entry for a dotted module name, or a zero entry.
func (p *Package) Module(name string) ModuleEntry {
	return p.Modules[name]
}

// invalidNameChars cannot appear in a Windows file name.
const invalidNameChars = `<>:"/\|?*`

type flavorKey struct{}

var dottedRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

func newPackageValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("dotted", validateDotted)
	_ = v.RegisterValidationCtx("displayname", validateDisplayName)
	return v
}

var packageValidator = newPackageValidator()

// validateDotted checks a dotted Python module path.
func validateDotted(fl validator.FieldLevel) bool {
	return dottedRe.MatchString(fl.Field().String())
}

// validateDisplayName checks the value can name a shortcut. Control
// characters are never allowed. On Windows the name is also the shortcut's
// file name, so file name characters are rejected there.
func validateDisplayName(ctx context.Context, fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if strings.TrimSpace(val) == "" || strings.ContainsFunc(val, unicode.IsControl) {
		return false
	}
	flavor, _ := ctx.Value(flavorKey{}).(ospath.Flavor)
	return !flavor.IsWindows() || !strings.ContainsAny(val, invalidNameChars)
}

// LoadPackageFile reads the package file from dir. A missing file is an
// empty configuration.
func LoadPackageFile(fs afero.Fs, flavor ospath.Flavor, dir string) (*Package, error) {
	for _, name := range []string{PackageFile, LegacyPackageFile} {
		p := flavor.Join(dir, name)
		data, err := afero.ReadFile(fs, p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		log.Debug().Str("path", p).Msg("loading package config")
		pkg, err := ParsePackage(data, flavor)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		return pkg, nil
	}
	return &Package{}, nil
}

// ParsePackage decodes and validates a package file body for the given
// path flavor.
func ParsePackage(data []byte, flavor ospath.Flavor) (*Package, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse package config: %w", err)
	}

	var pkg Package
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &pkg,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode package config: %w", err)
	}

	ctx := context.WithValue(context.Background(), flavorKey{}, flavor)
	if err := packageValidator.StructCtx(ctx, &pkg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			msgs := make([]string, 0, len(validationErrors))
			for _, fe := range validationErrors {
				msgs = append(msgs, formatValidationError(fe))
			}
			return nil, fmt.Errorf("invalid package config: %s", strings.Join(msgs, "; "))
		}
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &pkg, nil
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "dotted":
		return fmt.Sprintf("module name %q is not a dotted module path", fe.Value())
	case "displayname":
		return fmt.Sprintf("display name %q cannot be used as a shortcut name", fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", strings.ToLower(fe.Field()), fe.Tag())
	}
}
