/*
 * profile.go, part of qcflow.
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

//Package profile renders reaction-path energy profiles from IRC composites.
package profile

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/qcflow/qcflow"
	"github.com/qcflow/qcflow/recipes"
	"github.com/qcflow/qcflow/run"
)

//Points assembles the full reaction path from an IRC composite: the backward
//branch mirrored to negative reaction coordinates, the transition state at
//the origin, and the forward branch as parsed. Energies are converted to
//kcal/mol relative to the transition state. Sub-runs without path data
//contribute nothing; an entirely path-less composite yields an error.
func Points(c *run.Composite) (plotter.XYs, error) {
	if c == nil {
		panic("profile: given nil composite")
	}
	var pts plotter.XYs
	if bw := c.Get(recipes.BackwardIRC); bw != nil && bw.Properties != nil {
		path := bw.Properties.Path
		for i := len(path) - 1; i >= 0; i-- {
			pts = append(pts, plotter.XY{X: -path[i].Coord, Y: path[i].Energy * qcflow.H2Kcal})
		}
	}
	pts = append(pts, plotter.XY{X: 0, Y: 0}) //the transition state itself
	if fw := c.Get(recipes.ForwardIRC); fw != nil && fw.Properties != nil {
		for _, p := range fw.Properties.Path {
			pts = append(pts, plotter.XY{X: p.Coord, Y: p.Energy * qcflow.H2Kcal})
		}
	}
	if len(pts) <= 1 {
		return nil, fmt.Errorf("profile: composite %q carries no reaction path data", c.Name)
	}
	return pts, nil
}

//IRCPlot draws the energy profile of an IRC composite and saves it to
//plotname.png.
func IRCPlot(c *run.Composite, title, plotname string) error {
	pts, err := Points(c)
	if err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Reaction coordinate"
	p.Y.Label.Text = "Relative energy (kcal/mol)"
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	p.Add(line, points)
	return p.Save(5*vg.Inch, 4*vg.Inch, fmt.Sprintf("%s.png", plotname))
}
