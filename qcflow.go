/*
 * qcflow.go, part of qcflow.
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
	"fmt"

	"gonum.org/v1/gonum/mat"
)

//H2Kcal converts Hartrees to kcal/mol.
const H2Kcal = 627.509469

//Atom contains everything known about one atom except its coordinates,
//which live in a separate matrix so whole geometries can be swapped at once.
type Atom struct {
	Name   string  //PDB-style name, if any. May be empty.
	Symbol string  //Element symbol, e.g. "C", "Cu".
	Mass   float64 //In Daltons. Zero if unknown.
	Charge float64 //Partial charge, e.g. from a population analysis.
}

//Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("attempted to copy a nil atom")
	}
	at := new(Atom)
	*at = *A
	return at
}

//Atomer is the basic interface for a topology.
type Atomer interface {

	//Atom returns the Atom corresponding to the index i.
	//Should panic if out of range.
	Atom(i int) *Atom

	Len() int
}

//AtomMultiCharger is an Atomer that also gives a total
//charge and a spin multiplicity.
type AtomMultiCharger interface {
	Atomer

	//Charge gets the total charge of the topology
	Charge() int

	//Multi returns the multiplicity of the topology
	Multi() int
}

//Topology contains information about a molecule which is not expected to
//change in time, i.e. everything except for coordinates.
type Topology struct {
	atoms  []*Atom
	charge int
	multi  int
}

//NewTopology builds a topology from ats atoms with the given total charge and
//spin multiplicity. It returns an error if ats is nil. It does not check that
//charge and multiplicity are consistent with the electron count; the QM
//program is the authority on that.
func NewTopology(ats []*Atom, charge, multi int) (*Topology, error) {
	if ats == nil {
		return nil, fmt.Errorf("qcflow.NewTopology: nil atom slice")
	}
	top := new(Topology)
	top.atoms = ats
	top.charge = charge
	top.multi = multi
	return top, nil
}

//Atom returns the atom at index i. Panics if out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() {
		panic("topology: requested atom out of range")
	}
	return T.atoms[i]
}

//Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.atoms)
}

//Charge gets the total charge of the topology.
func (T *Topology) Charge() int {
	return T.charge
}

//Multi returns the spin multiplicity.
func (T *Topology) Multi() int {
	return T.multi
}

//SetCharge sets the total charge of the topology to i.
func (T *Topology) SetCharge(i int) {
	T.charge = i
}

//SetMulti sets the multiplicity of the topology to i.
func (T *Topology) SetMulti(i int) {
	T.multi = i
}

//CopyAtoms returns a new Atom slice with the atoms of T.
//The atoms themselves are copied, not shared.
func (T *Topology) CopyAtoms() []*Atom {
	ats := make([]*Atom, T.Len())
	for i, v := range T.atoms {
		ats[i] = v.Copy()
	}
	return ats
}

//Molecule is a topology together with one set of coordinates, an N x 3
//matrix in Angstroms.
type Molecule struct {
	*Topology
	Coords *mat.Dense
}

//NewMolecule builds a molecule from a topology and a coordinate matrix.
//The matrix must have one row per atom and 3 columns.
func NewMolecule(top *Topology, coords *mat.Dense) (*Molecule, error) {
	if top == nil || coords == nil {
		return nil, fmt.Errorf("qcflow.NewMolecule: nil topology or coordinates")
	}
	r, c := coords.Dims()
	if r != top.Len() || c != 3 {
		return nil, fmt.Errorf("qcflow.NewMolecule: coordinates are %dx%d, want %dx3", r, c, top.Len())
	}
	return &Molecule{Topology: top, Coords: coords}, nil
}

//WithState returns a shallow copy of M whose topology carries the given total
//charge and multiplicity. Atoms and coordinates are shared with M, which is
//fine as long as both copies are treated as read-only, as every workflow in
//this library does.
func (M *Molecule) WithState(charge, multi int) *Molecule {
	top := &Topology{atoms: M.atoms, charge: charge, multi: multi}
	return &Molecule{Topology: top, Coords: M.Coords}
}
