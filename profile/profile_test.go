/*
 * profile_test.go, part of qcflow.
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

package profile

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/qcflow/qcflow"
	"github.com/qcflow/qcflow/engine"
	"github.com/qcflow/qcflow/recipes"
	"github.com/qcflow/qcflow/run"
)

func ircComposite() *run.Composite {
	forward := &engine.Result{Path: []engine.PathPoint{
		{Energy: -0.0010, Coord: 0.1},
		{Energy: -0.0020, Coord: 0.2},
	}}
	backward := &engine.Result{Path: []engine.PathPoint{
		{Energy: -0.0005, Coord: 0.1},
		{Energy: -0.0015, Coord: 0.2},
	}}
	return &run.Composite{
		Name:  "Gaussian IRC (Forward and Backward)",
		Order: []string{recipes.ForwardIRC, recipes.BackwardIRC},
		Runs: map[string]*run.Record{
			recipes.ForwardIRC:  {Status: run.Succeeded, Properties: forward},
			recipes.BackwardIRC: {Status: run.Succeeded, Properties: backward},
		},
	}
}

func TestPoints(Te *testing.T) {
	pts, err := Points(ircComposite())
	if err != nil {
		Te.Fatal(err)
	}
	if len(pts) != 5 {
		Te.Fatalf("got %d points, want 5", len(pts))
	}
	//backward branch mirrored and reversed, transition state at the origin,
	//forward branch as parsed
	wantX := []float64{-0.2, -0.1, 0, 0.1, 0.2}
	for i, x := range wantX {
		if math.Abs(pts[i].X-x) > 1e-12 {
			Te.Errorf("point %d at x=%v, want %v", i, pts[i].X, x)
		}
	}
	if pts[2].Y != 0 {
		Te.Errorf("transition state not at zero energy: %v", pts[2].Y)
	}
	if math.Abs(pts[0].Y-(-0.0015*qcflow.H2Kcal)) > 1e-9 {
		Te.Errorf("energy not converted to kcal/mol: %v", pts[0].Y)
	}
	if pts[0].X >= pts[1].X || pts[3].X >= pts[4].X {
		Te.Error("points not in ascending reaction-coordinate order")
	}
}

func TestPointsNoPathData(Te *testing.T) {
	c := ircComposite()
	c.Runs[recipes.ForwardIRC].Properties = &engine.Result{}
	c.Runs[recipes.BackwardIRC].Properties = nil
	if _, err := Points(c); err == nil {
		Te.Error("path-less composite accepted")
	}
}

func TestPointsForwardOnly(Te *testing.T) {
	c := ircComposite()
	delete(c.Runs, recipes.BackwardIRC)
	pts, err := Points(c)
	if err != nil {
		Te.Fatal(err)
	}
	if len(pts) != 3 || pts[0].X != 0 {
		Te.Errorf("one-sided path mishandled: %v", pts)
	}
}

func TestIRCPlot(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "irc_profile")
	if err := IRCPlot(ircComposite(), "test reaction", name); err != nil {
		Te.Fatal(err)
	}
	fi, err := os.Stat(name + ".png")
	if err != nil {
		Te.Fatalf("plot file not written: %v", err)
	}
	if fi.Size() == 0 {
		Te.Error("plot file is empty")
	}
}
