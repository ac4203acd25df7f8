/*
 * xyz.go, part of qcflow.
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

package qcflow

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

//XYZRead reads an XYZ-formatted molecule from r. The returned molecule has
//charge 0 and multiplicity 1; callers that know better use WithState.
func XYZRead(r io.Reader) (*Molecule, error) {
	scan := bufio.NewScanner(r)
	if !scan.Scan() {
		return nil, fmt.Errorf("qcflow.XYZRead: empty input")
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(scan.Text()))
	if err != nil || natoms <= 0 {
		return nil, fmt.Errorf("qcflow.XYZRead: bad atom count line: %q", scan.Text())
	}
	scan.Scan() //comment line, discarded
	ats := make([]*Atom, 0, natoms)
	coords := make([]float64, 0, natoms*3)
	for i := 0; i < natoms; i++ {
		if !scan.Scan() {
			return nil, fmt.Errorf("qcflow.XYZRead: input ended after %d of %d atoms", i, natoms)
		}
		fields := strings.Fields(scan.Text())
		if len(fields) < 4 {
			return nil, fmt.Errorf("qcflow.XYZRead: malformed line %d: %q", i+3, scan.Text())
		}
		at := &Atom{Symbol: fields[0], Name: fields[0]}
		for j := 1; j <= 3; j++ {
			v, err := strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return nil, fmt.Errorf("qcflow.XYZRead: bad coordinate on line %d: %w", i+3, err)
			}
			coords = append(coords, v)
		}
		ats = append(ats, at)
	}
	top, err := NewTopology(ats, 0, 1)
	if err != nil {
		return nil, err
	}
	return NewMolecule(top, mat.NewDense(natoms, 3, coords))
}

//XYZFileRead reads an XYZ file from disk.
func XYZFileRead(name string) (*Molecule, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return XYZRead(f)
}

//XYZWrite writes coords/atoms to w in XYZ format. The fixed-width formatting
//makes the output byte-identical across calls for identical inputs, which the
//engine input writers rely on for reproducible artifacts.
func XYZWrite(w io.Writer, coords *mat.Dense, atoms Atomer) error {
	if atoms == nil || coords == nil {
		return fmt.Errorf("qcflow.XYZWrite: nil atoms or coordinates")
	}
	r, _ := coords.Dims()
	if r != atoms.Len() {
		return fmt.Errorf("qcflow.XYZWrite: %d coordinate rows for %d atoms", r, atoms.Len())
	}
	if _, err := fmt.Fprintf(w, "%d\n\n", atoms.Len()); err != nil {
		return err
	}
	for i := 0; i < atoms.Len(); i++ {
		_, err := fmt.Fprintf(w, "%-2s  %12.6f%12.6f%12.6f\n",
			atoms.Atom(i).Symbol, coords.At(i, 0), coords.At(i, 1), coords.At(i, 2))
		if err != nil {
			return err
		}
	}
	return nil
}

//XYZFileWrite writes coords/atoms to the named file in XYZ format.
func XYZFileWrite(name string, coords *mat.Dense, atoms Atomer) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return XYZWrite(f, coords, atoms)
}
