/*
 * gaussian.go, part of qcflow.
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

package recipes

import (
	"fmt"

	"github.com/qcflow/qcflow"
	"github.com/qcflow/qcflow/run"
	"github.com/qcflow/qcflow/settings"
)

//Options carries the per-call knobs every workflow accepts. A nil Options is
//valid and means all defaults. Swaps is the caller's override layer; set a
//key to settings.Remove to delete a workflow default outright.
type Options struct {
	XC        string
	Basis     string
	CopyFiles run.Staging
	Fields    map[string]any
	Swaps     settings.Layer
}

func (o *Options) orEmpty() *Options {
	if o == nil {
		return &Options{}
	}
	return o
}

func (o *Options) xc(def string) string {
	if o.XC != "" {
		return o.XC
	}
	return def
}

func (o *Options) basis(def string) string {
	if o.Basis != "" {
		return o.Basis
	}
	return def
}

//name returns the workflow's default run name unless the caller's additional
//fields override it, mirroring how the result envelope merges fields.
func (o *Options) name(def string) string {
	if n, ok := o.Fields["name"].(string); ok && n != "" {
		return n
	}
	return def
}

func (o *Options) job(name string, mol *qcflow.Molecule, charge, multi int, builtin, method settings.Layer) *run.Job {
	layers := []settings.Layer{builtin, method}
	if o.Swaps != nil {
		layers = append(layers, o.Swaps)
	}
	return &run.Job{
		Name:      o.name(name),
		Mol:       mol,
		Charge:    charge,
		Multi:     multi,
		Layers:    layers,
		CopyFiles: o.CopyFiles,
		Fields:    o.Fields,
	}
}

//gaussianMethod is the method-defaults layer shared by the Gaussian-class
//workflows: functional, basis and the D3 dispersion correction.
func gaussianMethod(xc, basis string) settings.Layer {
	return settings.Layer{
		"xc":         settings.Set(xc),
		"basis":      settings.Set(basis),
		"dispersion": settings.Set("empiricaldispersion=gd3"),
	}
}

//GaussianStatic carries out a single-point calculation.
func GaussianStatic(r *run.Runner, mol *qcflow.Molecule, charge, multi int, opts *Options) (*run.Record, error) {
	o := opts.orEmpty()
	builtin := settings.Layer{
		"chk":     settings.Set("Gaussian.chk"),
		"scf":     settings.List("maxcycle=250", "xqc"),
		"ioplist": settings.List("2/9=2000"),
	}
	method := gaussianMethod(o.xc("wb97xd"), o.basis("def2tzvp"))
	return r.Run(o.job("Gaussian Static", mol, charge, multi, builtin, method))
}

//GaussianRelax carries out a geometry optimization, with a frequency
//calculation on top if freq is true.
func GaussianRelax(r *run.Runner, mol *qcflow.Molecule, charge, multi int, freq bool, opts *Options) (*run.Record, error) {
	o := opts.orEmpty()
	builtin := settings.Layer{
		"chk":     settings.Set("Gaussian.chk"),
		"opt":     settings.Set(""),
		"scf":     settings.List("maxcycle=250", "xqc"),
		"ioplist": settings.List("2/9=2000"),
	}
	if freq {
		builtin["freq"] = settings.Set("")
	}
	method := gaussianMethod(o.xc("wb97xd"), o.basis("def2tzvp"))
	return r.Run(o.job("Gaussian Relax", mol, charge, multi, builtin, method))
}

//GaussianTS carries out a transition-state optimization with a frequency
//calculation.
func GaussianTS(r *run.Runner, mol *qcflow.Molecule, charge, multi int, opts *Options) (*run.Record, error) {
	o := opts.orEmpty()
	builtin := settings.Layer{
		"chk":     settings.Set("Gaussian.chk"),
		"opt":     settings.Set("calcfc,ts,noeigentest"),
		"freq":    settings.Set(""),
		"scf":     settings.List("maxcycle=250", "xqc"),
		"ioplist": settings.List("2/9=2000"),
	}
	method := gaussianMethod(o.xc("wb97xd"), o.basis("def2svp"))
	return r.Run(o.job("Gaussian TS", mol, charge, multi, builtin, method))
}

//Labels of the two IRC sub-runs in the composite result.
const (
	ForwardIRC  = "forward_irc"
	BackwardIRC = "backward_irc"
)

//GaussianIRC follows the intrinsic reaction coordinate from a transition
//state in both directions. mol should be the optimized transition-state
//structure. points and stepsize control the path following in each
//direction; non-positive values mean 20 points and stepsize 10. The two
//sub-runs execute forward first, then reverse, each in its own working
//directory, and both appear in the composite whatever their outcome.
func GaussianIRC(r *run.Runner, mol *qcflow.Molecule, charge, multi int, points, stepsize int, opts *Options) (*run.Composite, error) {
	o := opts.orEmpty()
	if points <= 0 {
		points = 20
	}
	if stepsize <= 0 {
		stepsize = 10
	}
	builtin := settings.Layer{
		"chk": settings.Set("Gaussian.chk"),
		"scf": settings.List("maxcycle=250", "xqc"),
		"iop": settings.List(
			"7/33=1", //save the path geometries
			"2/9=2000",
		),
	}
	method := gaussianMethod(o.xc("wb97xd"), o.basis("def2svp"))
	job := o.job("", mol, charge, multi, builtin, method)
	directive := fmt.Sprintf("calcfc,maxpoints=%d,stepsize=%d,maxcycle=100", points, stepsize)
	steps := []run.Step{
		{
			Label: ForwardIRC,
			Name:  o.name("Gaussian Forward IRC"),
			Layer: settings.Layer{"irc": settings.Set(directive + ",forward")},
		},
		{
			Label: BackwardIRC,
			Name:  o.name("Gaussian Backward IRC"),
			Layer: settings.Layer{"irc": settings.Set(directive + ",reverse")},
		},
	}
	return r.Sequence("Gaussian IRC (Forward and Backward)", job, steps)
}
