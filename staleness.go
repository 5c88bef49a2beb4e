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

package runccam

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/ccam-tools/runccam/internal/hash"
)

// FingerprintFile is the name of the fingerprint record kept next to the
// generated surface datasets.
const FingerprintFile = "surface.qm"

// Fingerprint is the ordered set of configuration values that the
// generated surface datasets depend on. The field order is part of the
// record format.
type Fingerprint struct {
	Domain      string
	LandSurface string
	CarbonCycle string
	VegInput    string
	SoilInput   string
	Scenario    string
}

// Fields returns the values of f in record order.
func (f Fingerprint) Fields() []string {
	return []string{f.Domain, f.LandSurface, f.CarbonCycle, f.VegInput, f.SoilInput, f.Scenario}
}

// Digest returns a short key for f. It is written as the first line of
// the record, and also changes when fields are added to Fingerprint.
func (f Fingerprint) Digest() string { return hash.Hash(f) }

const digestPrefix = "digest "

func (f Fingerprint) record() []byte {
	return []byte(digestPrefix + f.Digest() + "\n" + strings.Join(f.Fields(), "\n") + "\n")
}

// Staleness is the result of a staleness check.
type Staleness int

// These are the possible results of a staleness check.
const (
	Fresh        Staleness = iota
	Stale                  // regenerate every surface dataset
	LandUseStale           // regenerate the monthly land-use datasets only
)

func (s Staleness) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	case LandUseStale:
		return "land-use stale"
	}
	return fmt.Sprintf("Staleness(%d)", int(s))
}

// AttributeProbe reports whether a generated dataset carries a global
// attribute.
type AttributeProbe interface {
	HasGlobalAttribute(ctx context.Context, path, name string) (bool, error)
}

// LandUseTag returns the global attribute that land-use datasets built
// for scheme s must carry.
func LandUseTag(s LandSurface) string {
	if s == MODIS {
		return "sibvegversion"
	}
	return "cableversion"
}

// RequiredArtifacts returns the file names of the surface datasets
// generated for domain.
func RequiredArtifacts(domain string) []string {
	o := []string{"topout" + domain, "bath" + domain, "casa" + domain}
	return append(o, LandUseArtifacts(domain)...)
}

// LandUseArtifacts returns the file names of the monthly land-use datasets.
func LandUseArtifacts(domain string) []string {
	o := make([]string, 12)
	for m := 1; m <= 12; m++ {
		o[m-1] = fmt.Sprintf("veg%s.%02d", domain, m)
	}
	return o
}

// StalenessDetector decides whether the surface datasets in Dir must be
// regenerated.
type StalenessDetector struct {
	Dir   string
	Tag   string // global attribute required in each land-use dataset
	Probe AttributeProbe
}

func (s *StalenessDetector) recordPath() string { return filepath.Join(s.Dir, FingerprintFile) }

// Check compares fp and its digest with the persisted record and checks
// that the required datasets exist. If they do, it also checks that every
// land-use dataset was built for the requested land-surface scheme.
// An error is returned only if the land-use probe fails.
func (s *StalenessDetector) Check(ctx context.Context, fp Fingerprint) (Staleness, error) {
	b, err := ioutil.ReadFile(s.recordPath())
	if err != nil {
		return Stale, nil
	}
	have := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	if have[0] != digestPrefix+fp.Digest() {
		return Stale, nil
	}
	have = have[1:]
	want := fp.Fields()
	if len(have) != len(want) {
		return Stale, nil
	}
	for i := range want {
		if have[i] != want[i] {
			return Stale, nil
		}
	}
	for _, f := range RequiredArtifacts(fp.Domain) {
		if _, err := os.Stat(filepath.Join(s.Dir, f)); err != nil {
			return Stale, nil
		}
	}
	if s.Probe == nil || s.Tag == "" {
		return Fresh, nil
	}
	for _, f := range LandUseArtifacts(fp.Domain) {
		ok, err := s.Probe.HasGlobalAttribute(ctx, filepath.Join(s.Dir, f), s.Tag)
		if err != nil {
			return Stale, fmt.Errorf("runccam: checking land-use dataset %s: %w", f, err)
		}
		if !ok {
			return LandUseStale, nil
		}
	}
	return Fresh, nil
}

// IsStale reports whether any regeneration is needed. Probe failures
// count as stale.
func (s *StalenessDetector) IsStale(ctx context.Context, fp Fingerprint) bool {
	st, err := s.Check(ctx, fp)
	return err != nil || st != Fresh
}

// Commit atomically replaces the persisted record with fp.
func (s *StalenessDetector) Commit(fp Fingerprint) error {
	if err := os.MkdirAll(s.Dir, os.ModePerm); err != nil {
		return fmt.Errorf("runccam: %v", err)
	}
	return WriteFileAtomic(s.recordPath(), fp.record())
}
