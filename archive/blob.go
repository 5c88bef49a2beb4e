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
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// newBackOff returns the retry policy for bucket transfers.
var newBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 10 * time.Minute
	return b
}

// retry runs op until it succeeds, fails permanently or the retry
// policy gives up.
func retry(ctx context.Context, log logrus.FieldLogger, op func() error) error {
	return backoff.RetryNotify(op, backoff.WithContext(newBackOff(), ctx),
		func(err error, d time.Duration) {
			log.WithError(err).Warnf("retrying in %v", d)
		})
}

// Upload copies the local file at path to key in bucket b.
func Upload(ctx context.Context, b *blob.Bucket, key, path string, log logrus.FieldLogger) error {
	return retry(ctx, log, func() error {
		r, err := os.Open(path)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("archive: opening file '%s' for upload: %v", path, err))
		}
		defer r.Close()
		w, err := b.NewWriter(ctx, key, &blob.WriterOptions{})
		if err != nil {
			return fmt.Errorf("archive: creating writer for blob %s: %v", key, err)
		}
		if _, err = io.Copy(w, r); err != nil {
			w.Close()
			return fmt.Errorf("archive: uploading '%s' to blob %s: %v", path, key, err)
		}
		if err = w.Close(); err != nil {
			return fmt.Errorf("archive: writing blob %s: %v", key, err)
		}
		return nil
	})
}

// Download copies key in bucket b to the local file at path.
func Download(ctx context.Context, b *blob.Bucket, key, path string, log logrus.FieldLogger) error {
	return retry(ctx, log, func() error {
		r, err := b.NewReader(ctx, key, nil)
		if gcerrors.Code(err) == gcerrors.NotFound {
			return backoff.Permanent(fmt.Errorf("archive: reading blob %s: %v", key, err))
		} else if err != nil {
			return fmt.Errorf("archive: reading blob %s: %v", key, err)
		}
		defer r.Close()
		w, err := os.Create(path)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("archive: %v", err))
		}
		if _, err = io.Copy(w, r); err != nil {
			w.Close()
			return fmt.Errorf("archive: downloading blob %s: %v", key, err)
		}
		return w.Close()
	})
}
