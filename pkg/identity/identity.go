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

// Package identity derives the application identity string the OS shell
// uses to group windows and associate shortcuts, and the name shown for
// the application.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/desktop-app/desktop-app/internal/ospath"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// HashLength is the number of hex digits of the prefix digest kept in
	// a Windows appid.
	HashLength = 16
	hashLabel  = "Python-"
)

var segmentReplacer = strings.NewReplacer(" ", "", "_", "", ".", "-")

type Inputs struct {
	OrgName string
	// ProductName groups several applications of one organisation.
	ProductName string
	Module      string
	// Prefix is the interpreter's installation prefix.
	Prefix string
	// ShortEnv is the environment's short name, empty for default
	// environments.
	ShortEnv string
	Flavor   ospath.Flavor
}

// AppID composes the identity string for a module. On Windows it is
// "[Org.][Product.]Module.Python-<hash>" where the hash fingerprints the
// case-normalised prefix. Elsewhere it is the module name, suffixed with
// the short environment name when there is one.
func AppID(in Inputs) string {
	if !in.Flavor.IsWindows() {
		if in.ShortEnv == "" {
			return in.Module
		}
		return in.Module + "-" + in.ShortEnv
	}

	parts := make([]string, 0, 4)
	if in.OrgName != "" {
		parts = append(parts, Segment(in.OrgName))
	}
	if in.ProductName != "" {
		parts = append(parts, Segment(in.ProductName))
	}
	parts = append(parts, Segment(in.Module), hashLabel+PrefixHash(in.Prefix, in.Flavor))
	return strings.Join(parts, ".")
}

// PrefixHash returns the truncated sha256 of the normalised prefix.
func PrefixHash(prefix string, flavor ospath.Flavor) string {
	sum := sha256.Sum256([]byte(flavor.NormCase(prefix)))
	return hex.EncodeToString(sum[:])[:HashLength]
}

// Segment title-cases every run of letters, then drops spaces and
// underscores and turns periods into hyphens: "my_org.tools" becomes
// "MyOrg-Tools".
func Segment(s string) string {
	caser := cases.Title(language.Und)
	var b strings.Builder
	start := -1
	flush := func(end int) {
		if start >= 0 {
			b.WriteString(caser.String(s[start:end]))
			start = -1
		}
	}
	for i, r := range s {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
		b.WriteRune(r)
	}
	flush(len(s))
	return segmentReplacer.Replace(b.String())
}

// DisplayName is the configured name, or the module name, with the short
// environment name appended in parentheses when there is one.
func DisplayName(override, module, shortEnv string) string {
	name := override
	if name == "" {
		name = module
	}
	if shortEnv != "" {
		name += " (" + shortEnv + ")"
	}
	return name
}
