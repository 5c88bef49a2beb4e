/*
Copyright © 2026 the runccam authors.
This file is part of runccam.

runccam is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

runccam is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with runccam.  If not, see <http://www.gnu.org/licenses/>.
*/

package tools

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/ccam-tools/runccam"
)

// rawSuffix matches the six-digit processor suffix of the files written
// by the model in parallel.
const rawSuffix = ".[0-9][0-9][0-9][0-9][0-9][0-9]"

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// existsRaw reports whether path, or the first processor file of path,
// exists.
func existsRaw(path string) bool {
	return exists(path) || exists(path+".000000")
}

// rawFiles returns the per-processor files of base in dir.
func rawFiles(dir, base string) ([]string, error) {
	m, err := filepath.Glob(filepath.Join(dir, base+rawSuffix))
	if err != nil {
		return nil, fmt.Errorf("tools: %v", err)
	}
	return m, nil
}

// removeAll removes the files matching the glob patterns.
func removeAll(patterns ...string) error {
	for _, p := range patterns {
		m, err := filepath.Glob(p)
		if err != nil {
			return fmt.Errorf("tools: %v", err)
		}
		for _, f := range m {
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("tools: %v", err)
			}
		}
	}
	return nil
}

// link creates a symbolic link to target in dir, replacing any
// existing file of the same name.
func link(target, dir string) error {
	dst := filepath.Join(dir, filepath.Base(target))
	if dst == target {
		return nil
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("tools: %v", err)
	}
	if err := os.Symlink(target, dst); err != nil {
		return fmt.Errorf("tools: %v", err)
	}
	return nil
}

// newest returns the most recently modified file matching pattern.
func newest(pattern string) (string, error) {
	m, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("tools: %v", err)
	}
	if len(m) == 0 {
		return "", runccam.MissingArtifact(pattern)
	}
	type file struct {
		path string
		mod  int64
	}
	files := make([]file, 0, len(m))
	for _, p := range m {
		fi, err := os.Stat(p)
		if err != nil {
			return "", fmt.Errorf("tools: %v", err)
		}
		files = append(files, file{path: p, mod: fi.ModTime().UnixNano()})
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].mod != files[j].mod {
			return files[i].mod < files[j].mod
		}
		return files[i].path < files[j].path
	})
	return files[len(files)-1].path, nil
}

// copyFile copies src to dst.
func copyFile(src, dst string) error {
	r, err := os.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()
	w, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
