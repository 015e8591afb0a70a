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

package locator

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
)

const (
	eggLinkExt = ".egg-link"
	pthExt     = ".pth"
)

// siteDirs lists every directory packages can be installed into.
func (l *Locator) siteDirs() []string {
	dirs := make([]string, 0, len(l.interp.SitePackages)+1)
	dirs = append(dirs, l.interp.SitePackages...)
	if l.interp.UserSite != "" {
		dirs = append(dirs, l.interp.UserSite)
	}
	return dirs
}

// findLink scans the top level of each site directory for legacy
// .egg-link files and .pth redirect files pointing at target, and returns
// the site directory holding the match. This mirrors how pip and
// setuptools record development installs and only sees what they write.
func (l *Locator) findLink(target string) (string, bool, error) {
	for _, site := range l.siteDirs() {
		entries, err := afero.ReadDir(l.fs, site)
		if errors.Is(err, os.ErrNotExist) {
			continue
		} else if err != nil {
			return "", false, fmt.Errorf("failed to read site directory %s: %w", site, err)
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := entry.Name()
			if !strings.HasSuffix(name, eggLinkExt) && !strings.HasSuffix(name, pthExt) {
				continue
			}
			data, err := afero.ReadFile(l.fs, l.flavor.Join(site, name))
			if err != nil {
				return "", false, fmt.Errorf("failed to read link file %s: %w", name, err)
			}
			for _, p := range l.linkTargets(site, name, data) {
				if l.flavor.Equal(p, target) {
					return site, true, nil
				}
			}
		}
	}
	return "", false, nil
}

// linkTargets returns the paths a link file points at. An .egg-link names
// one path on its first line. A .pth file names one path per line, and
// lines starting with "import" are executed by site.py rather than added
// to sys.path.
func (l *Locator) linkTargets(site, name string, data []byte) []string {
	var targets []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasSuffix(name, eggLinkExt) {
			if line != "" {
				targets = append(targets, l.resolve(site, line))
			}
			break
		}
		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "import\t") {
			continue
		}
		targets = append(targets, l.resolve(site, line))
	}
	return targets
}

func (l *Locator) resolve(site, p string) string {
	if l.flavor.IsAbs(p) {
		return p
	}
	return l.flavor.Join(site, p)
}
