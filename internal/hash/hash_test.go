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

package hash

import "testing"

func TestHash(t *testing.T) {
	a := Hash([]string{"96_135.0_-25.0_45.0km", "1", "0", "", "", "ssp245"})
	b := Hash([]string{"96_135.0_-25.0_45.0km", "1", "0", "", "", "ssp585"})
	if a == b {
		t.Error("different records should have different keys")
	}
	if a != Hash([]string{"96_135.0_-25.0_45.0km", "1", "0", "", "", "ssp245"}) {
		t.Error("keys should be deterministic")
	}
	if len(a) != 16 {
		t.Errorf("key length %d", len(a))
	}
}

func TestHashLayout(t *testing.T) {
	type v1 struct{ Domain, Scenario string }
	type v2 struct{ Domain, Scenario, Soil string }
	if Hash(v1{"d", "s"}) == Hash(v2{"d", "s", ""}) {
		t.Error("records with different layouts should have different keys")
	}
	type rec struct {
		P []*int
		M map[string]int
	}
	one, two := 1, 2
	a := rec{P: []*int{&one, nil}, M: map[string]int{"a": 1, "b": 2, "c": 3}}
	b := rec{P: []*int{&two, nil}, M: map[string]int{"c": 3, "b": 2, "a": 1}}
	if Hash(a) == Hash(b) {
		t.Error("pointed-to values should be part of the key")
	}
	b.P[0] = new(int)
	*b.P[0] = 1
	if Hash(a) != Hash(b) {
		t.Error("keys should not depend on map order or pointer addresses")
	}
}
