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
	"sort"
	"strings"

	"github.com/ccam-tools/runccam"
	"github.com/sirupsen/logrus"
	"gocloud.dev/blob"
)

// These are the output directories of a run.
const (
	Daily   = "daily"
	Output  = "OUTPUT"
	Restart = "RESTART"
)

// Dirs are the directories created under the run directory.
var Dirs = []string{Daily, Output, Restart, "vegdata"}

// Store keeps the post-processed and archived output of a run. Files
// are moved under Home unless a Bucket is set, in which case they are
// uploaded and the local copy is removed.
type Store struct {
	Home   string
	Bucket *blob.Bucket
	Log    logrus.FieldLogger
}

// NewStore returns the store configured for c. Call Close when done.
func NewStore(ctx context.Context, c runccam.RunConfig, log logrus.FieldLogger) (*Store, error) {
	s := &Store{Home: c.Dirs.Home, Log: log}
	if c.LocalStore() {
		return s, nil
	}
	b, err := OpenBucket(ctx, c.Store)
	if err != nil {
		return nil, err
	}
	s.Bucket = b
	return s, nil
}

// Close closes the bucket, if any.
func (s *Store) Close() error {
	if s.Bucket == nil {
		return nil
	}
	return s.Bucket.Close()
}

func (s *Store) logger() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

// Location returns a human-readable location of dir/name in the store.
func (s *Store) Location(dir, name string) string {
	if s.Bucket == nil {
		return filepath.Join(s.Home, dir, name)
	}
	return path.Join(dir, name)
}

// Put moves the local file src into dir.
func (s *Store) Put(ctx context.Context, src, dir string) error {
	name := filepath.Base(src)
	s.logger().WithFields(logrus.Fields{"file": name, "dir": dir}).Debug("storing output")
	if s.Bucket == nil {
		d := filepath.Join(s.Home, dir)
		if err := os.MkdirAll(d, os.ModePerm); err != nil {
			return fmt.Errorf("archive: %v", err)
		}
		return Move(src, filepath.Join(d, name))
	}
	if err := Upload(ctx, s.Bucket, path.Join(dir, name), src, s.logger()); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("archive: %v", err)
	}
	return nil
}

// Get makes dir/name available at the local path dst: files under Home
// are linked and blobs are downloaded. ok is false if the file is not
// in the store.
func (s *Store) Get(ctx context.Context, dir, name, dst string) (ok bool, err error) {
	if s.Bucket == nil {
		src := filepath.Join(s.Home, dir, name)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			return false, nil
		}
		os.Remove(dst)
		if err := os.Symlink(src, dst); err != nil {
			return false, fmt.Errorf("archive: %v", err)
		}
		return true, nil
	}
	key := path.Join(dir, name)
	if ok, err = s.Bucket.Exists(ctx, key); err != nil || !ok {
		return ok, err
	}
	return true, Download(ctx, s.Bucket, key, dst, s.logger())
}

// List returns the sorted names of the files in dir that start with
// prefix.
func (s *Store) List(ctx context.Context, dir, prefix string) ([]string, error) {
	var o []string
	if s.Bucket == nil {
		m, err := filepath.Glob(filepath.Join(s.Home, dir, globEscape(prefix)+"*"))
		if err != nil {
			return nil, fmt.Errorf("archive: %v", err)
		}
		for _, f := range m {
			o = append(o, filepath.Base(f))
		}
		return o, nil
	}
	iter := s.Bucket.List(&blob.ListOptions{Prefix: dir + "/" + prefix, Delimiter: "/"})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("archive: listing %s: %v", dir, err)
		}
		if !obj.IsDir {
			o = append(o, path.Base(obj.Key))
		}
	}
	sort.Strings(o)
	return o, nil
}

func globEscape(s string) string {
	r := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `\`, `\\`)
	return r.Replace(s)
}

// Move renames src to dst, copying the file when they are on different
// file systems.
func Move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	r, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("archive: %v", err)
	}
	defer r.Close()
	w, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("archive: %v", err)
	}
	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("archive: moving %s: %v", src, err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("archive: %v", err)
	}
	r.Close()
	if err = os.Remove(src); err != nil {
		return fmt.Errorf("archive: %v", err)
	}
	return nil
}

// MakeDirs creates the run and work directories of c.
func MakeDirs(c runccam.RunConfig) error {
	for _, d := range Dirs {
		if err := os.MkdirAll(filepath.Join(c.Dirs.Home, d), os.ModePerm); err != nil {
			return fmt.Errorf("archive: %v", err)
		}
	}
	if err := os.MkdirAll(c.Dirs.Work, os.ModePerm); err != nil {
		return fmt.Errorf("archive: %v", err)
	}
	return nil
}
