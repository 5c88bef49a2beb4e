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

package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/mholt/archives"
)

// Bundle writes files to a new tar archive at dst. Each file is stored
// under its base name. Symbolic links are followed.
func Bundle(ctx context.Context, dst string, files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("archive: no files to bundle into %s", dst)
	}
	names := make(map[string]string, len(files))
	for _, f := range files {
		names[f] = filepath.Base(f)
	}
	fi, err := archives.FilesFromDisk(ctx, &archives.FromDiskOptions{FollowSymlinks: true}, names)
	if err != nil {
		return fmt.Errorf("archive: bundling %s: %v", dst, err)
	}
	tmp := dst + ".tmp"
	w, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("archive: %v", err)
	}
	if err = (archives.Tar{}).Archive(ctx, w, fi); err != nil {
		w.Close()
		os.Remove(tmp)
		return fmt.Errorf("archive: bundling %s: %v", dst, err)
	}
	if err = w.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("archive: %v", err)
	}
	if err = os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("archive: %v", err)
	}
	return nil
}

// Extract unpacks the regular files of the tar archive src into dir and
// returns their paths. Directory structure inside the archive is
// discarded.
func Extract(ctx context.Context, src, dir string) ([]string, error) {
	r, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("archive: %v", err)
	}
	defer r.Close()
	if err = os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("archive: %v", err)
	}
	var o []string
	err = (archives.Tar{}).Extract(ctx, r, func(ctx context.Context, f archives.FileInfo) error {
		if !f.Mode().IsRegular() {
			return nil
		}
		name := path.Base(path.Clean("/" + f.NameInArchive))
		if name == "/" || name == "." {
			return nil
		}
		dst := filepath.Join(dir, name)
		if err := extractFile(f, dst); err != nil {
			return err
		}
		o = append(o, dst)
		return nil
	})
	if err != nil {
		return o, fmt.Errorf("archive: extracting %s: %v", src, err)
	}
	return o, nil
}

func extractFile(f archives.FileInfo, dst string) error {
	r, err := f.Open()
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
