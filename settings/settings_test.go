/*
 * settings_test.go, part of qcflow.
 *
 *
 * Copyright 2026 The qcflow developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package settings

import (
	"reflect"
	"testing"
)

func TestScalarOverride(Te *testing.T) {
	base := Layer{
		"scf":    List("maxcycle=250", "xqc"),
		"charge": Set(0),
	}
	got := Merge(base, Layer{"charge": Set(1)})
	want := Resolved{
		"scf":    []string{"maxcycle=250", "xqc"},
		"charge": 1,
	}
	if !reflect.DeepEqual(got, want) {
		Te.Errorf("merged %v, want %v", got, want)
	}
}

func TestListReplacedWholesale(Te *testing.T) {
	base := Layer{"scf": List("maxcycle=250", "xqc")}
	got := Merge(base, Layer{"scf": List("maxcycle=500")})
	if !reflect.DeepEqual(got.Strings("scf"), []string{"maxcycle=500"}) {
		Te.Errorf("list not replaced wholesale: %v", got.Strings("scf"))
	}
}

func TestRemovalIsTerminal(Te *testing.T) {
	defaults := Layer{"dispersion": Set("empiricaldispersion=gd3")}
	method := Layer{"dispersion": Set("empiricaldispersion=gd3bj")}
	//remove in an early layer, re-supply in a later one: must stay gone
	got := Merge(defaults, Layer{"dispersion": Remove}, method)
	if got.Has("dispersion") {
		Te.Errorf("removed key reappeared: %v", got)
	}
	//removal in the last layer also works
	got = Merge(defaults, method, Layer{"dispersion": Remove})
	if got.Has("dispersion") {
		Te.Errorf("removal in last layer ignored: %v", got)
	}
}

func TestMergeAssociativity(Te *testing.T) {
	a := Layer{"xc": Set("wb97xd"), "basis": Set("def2tzvp"), "chk": Set("Gaussian.chk")}
	b := Layer{"basis": Set("def2svp"), "chk": Remove}
	c := Layer{"chk": Set("other.chk"), "opt": Set("")}
	flat := Merge(a, b, c)
	nested := Merge(Squash(a, b), c)
	if !reflect.DeepEqual(flat, nested) {
		Te.Errorf("Merge(a,b,c) = %v but Merge(Squash(a,b),c) = %v", flat, nested)
	}
	if flat.Has("chk") {
		Te.Errorf("chk removed in b but present: %v", flat)
	}
}

func TestOrderWithinLayerIrrelevant(Te *testing.T) {
	//two layers with the same content, built in different insertion orders
	x := Layer{}
	x["basis"] = Set("def2tzvp")
	x["xc"] = Set("wb97xd")
	y := Layer{}
	y["xc"] = Set("wb97xd")
	y["basis"] = Set("def2tzvp")
	if !reflect.DeepEqual(Merge(nil, x), Merge(nil, y)) {
		Te.Error("merge depends on insertion order within a layer")
	}
}

func TestMergePurity(Te *testing.T) {
	scf := []string{"maxcycle=250", "xqc"}
	base := Layer{"scf": Set(scf)}
	over := Layer{"scf": List("maxcycle=100")}
	got := Merge(base, over)
	got.Strings("scf")[0] = "mutated"
	if scf[0] != "maxcycle=250" {
		Te.Error("merge leaked the caller's backing slice")
	}
	//base must survive repeated merges with different overrides untouched
	again := Merge(base)
	if !reflect.DeepEqual(again.Strings("scf"), []string{"maxcycle=250", "xqc"}) {
		Te.Errorf("base layer mutated across merges: %v", again.Strings("scf"))
	}
}

func TestResolvedAccessors(Te *testing.T) {
	r := Merge(nil, Layer{
		"mem":   Set(4000),
		"freq":  Set(""),
		"wrt":   Set(true),
		"iop":   List("7/33=1", "2/9=2000"),
		"basis": Set("def2svp"),
	})
	if r.Int("mem") != 4000 || !r.Bool("wrt") || r.String("basis") != "def2svp" {
		Te.Errorf("accessors misbehave: %v", r)
	}
	if r.String("mem") != "" || r.Int("basis") != 0 {
		Te.Error("accessors should not coerce across types")
	}
	keys := r.Keys()
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			Te.Errorf("keys not sorted: %v", keys)
		}
	}
}
