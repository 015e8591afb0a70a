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
	"encoding/json"
)

// ProbeInterpreter describes the interpreter half of a fake probe document.
type ProbeInterpreter struct {
	RealPrefix     *string
	Executable     string
	BaseExecutable string
	Prefix         string
	BasePrefix     string
	UserSite       string
	Scripts        string
	UserScripts    string
	LocalScripts   string
	SitePackages   []string
}

// ProbeSpec describes one find_spec result in a fake probe document.
type ProbeSpec struct {
	Name      string
	Origin    string
	Found     bool
	IsPackage bool
}

// ProbeJSON renders the document the interpreter probe prints, for use as
// mocked Output() of a Python interpreter.
func ProbeJSON(interp ProbeInterpreter, specs ...ProbeSpec) []byte {
	specDocs := make([]map[string]any, 0, len(specs))
	for _, s := range specs {
		specDocs = append(specDocs, map[string]any{
			"name":       s.Name,
			"origin":     s.Origin,
			"found":      s.Found,
			"is_package": s.IsPackage,
		})
	}
	sitePackages := interp.SitePackages
	if sitePackages == nil {
		sitePackages = []string{}
	}
	doc := map[string]any{
		"executable":      interp.Executable,
		"base_executable": interp.BaseExecutable,
		"prefix":          interp.Prefix,
		"base_prefix":     interp.BasePrefix,
		"real_prefix":     interp.RealPrefix,
		"site_packages":   sitePackages,
		"user_site":       interp.UserSite,
		"scripts":         interp.Scripts,
		"user_scripts":    interp.UserScripts,
		"local_scripts":   interp.LocalScripts,
		"version":         "3.12.4",
		"specs":           specDocs,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return data
}

// SystemPython is a POSIX system interpreter rooted at /usr with a Debian
// style local scheme.
func SystemPython() ProbeInterpreter {
	return ProbeInterpreter{
		Executable:     "/usr/bin/python3",
		BaseExecutable: "/usr/bin/python3",
		Prefix:         "/usr",
		BasePrefix:     "/usr",
		SitePackages: []string{
			"/usr/local/lib/python3.12/dist-packages",
			"/usr/lib/python3/dist-packages",
		},
		UserSite:     "/home/user/.local/lib/python3.12/site-packages",
		Scripts:      "/usr/bin",
		UserScripts:  "/home/user/.local/bin",
		LocalScripts: "/usr/local/bin",
	}
}

// VenvPython is a POSIX virtual environment at prefix created from
// SystemPython.
func VenvPython(prefix string) ProbeInterpreter {
	return ProbeInterpreter{
		Executable:     prefix + "/bin/python3",
		BaseExecutable: "/usr/bin/python3",
		Prefix:         prefix,
		BasePrefix:     "/usr",
		SitePackages:   []string{prefix + "/lib/python3.12/site-packages"},
		UserSite:       "/home/user/.local/lib/python3.12/site-packages",
		Scripts:        prefix + "/bin",
		UserScripts:    "/home/user/.local/bin",
	}
}
