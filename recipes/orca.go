/*
 * orca.go, part of qcflow.
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
	"runtime"
	"strings"

	"github.com/qcflow/qcflow"
	"github.com/qcflow/qcflow/run"
	"github.com/qcflow/qcflow/settings"
)

//orcaBlocks assembles the %-block list for an ORCA-class run. The caller's
//blocks (taken out of the swap layer, since list keys replace wholesale) come
//first; a parallel block with one process per CPU is appended unless the
//caller already chose an nprocs setting, the same convenience the relax and
//static workflows have always had.
func orcaBlocks(o *Options) ([]string, settings.Layer) {
	swaps := o.Swaps
	var blocks []string
	if swaps != nil {
		if v, ok := swaps["blocks"]; ok && !v.IsRemove() {
			blocks, _ = v.Interface().([]string)
			swaps = swaps.Copy()
			delete(swaps, "blocks")
		}
	}
	var hasNprocs bool
	for _, b := range blocks {
		if strings.Contains(strings.ToLower(b), "nprocs") {
			hasNprocs = true
			break
		}
	}
	if !hasNprocs {
		blocks = append(blocks, fmt.Sprintf("%%pal nprocs %d end", runtime.NumCPU()))
	}
	return blocks, swaps
}

func orcaJob(o *Options, name string, mol *qcflow.Molecule, charge, multi int, simple []string) *run.Job {
	blocks, swaps := orcaBlocks(o)
	builtin := settings.Layer{
		"simple": settings.List(simple...),
		"blocks": settings.List(blocks...),
	}
	method := settings.Layer{
		"xc":    settings.Set(o.xc("wb97x-d3bj")),
		"basis": settings.Set(o.basis("def2-tzvp")),
	}
	layers := []settings.Layer{builtin, method}
	if swaps != nil {
		layers = append(layers, swaps)
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

//OrcaStatic carries out a single-point calculation.
func OrcaStatic(r *run.Runner, mol *qcflow.Molecule, charge, multi int, opts *Options) (*run.Record, error) {
	o := opts.orEmpty()
	simple := []string{"sp", "slowconv", "normalprint", "xyzfile"}
	return r.Run(orcaJob(o, "ORCA Static", mol, charge, multi, simple))
}

//OrcaRelax carries out a geometry optimization, with a frequency calculation
//on top if freq is true.
func OrcaRelax(r *run.Runner, mol *qcflow.Molecule, charge, multi int, freq bool, opts *Options) (*run.Record, error) {
	o := opts.orEmpty()
	simple := []string{"opt", "slowconv", "normalprint", "xyzfile"}
	if freq {
		simple = append(simple, "freq")
	}
	return r.Run(orcaJob(o, "ORCA Relax", mol, charge, multi, simple))
}
