/*
 * engine.go, part of qcflow.
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

package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/qcflow/qcflow"
	"github.com/qcflow/qcflow/settings"
)

//Handle lets a caller drive a calculation with one external QM program.
type Handle interface {

	//SetName sets the base name for the job, used for input and output
	//files. The extensions depend on the program.
	SetName(name string)

	//SetWorkDir sets the directory where input and output artifacts live.
	//An empty string means the current directory.
	SetWorkDir(dir string)

	//SetCommand sets the command used to invoke the program.
	SetCommand(cmd string)

	//PrepareInput writes the program's native input from the structure in
	//coords/atoms and the resolved configuration. Identical inputs must
	//produce byte-identical artifacts.
	PrepareInput(coords *mat.Dense, atoms qcflow.AtomMultiCharger, conf settings.Resolved) error

	//Run invokes the program on the prepared input. It waits or not for
	//completion depending on wait. Not waiting only works on
	//unix-compatible systems.
	Run(wait bool) error

	//ParseOutput scans the program's output artifacts into a Result. A
	//missing output file and a present-but-unreadable output are different
	//failures; see IsMissingArtifact and IsParseError. On abnormal
	//termination the partial Result is returned together with the error.
	ParseOutput() (*Result, error)
}

//AtomicCharge is one entry of a population analysis.
type AtomicCharge struct {
	Atom   int     `json:"atom"`
	Symbol string  `json:"symbol"`
	Charge float64 `json:"charge"`
}

//PathPoint is one point of a reaction-path (IRC) following, with the energy
//relative to the starting structure and the signed reaction coordinate.
type PathPoint struct {
	Energy float64 `json:"energy"`
	Coord  float64 `json:"coord"`
}

//Result is the uniform outcome of one calculation. Which fields are filled
//depends on the program and on the calculation type: pointers and slices stay
//nil for properties the output did not contain. Energies are in Hartrees.
type Result struct {
	Program    string
	Terminated bool //the program's normal-termination marker was seen

	SCFEnergy  *float64
	Energy     *float64 //final total (DFT) energy
	Dipole     []float64
	Gradient   *mat.Dense //nuclear gradient, Hartree/Bohr
	Geometry   *mat.Dense //final geometry, Angstroms
	PopMethod  string     //"mulliken" or "loewdin"
	Population []AtomicCharge
	Solvation  *float64 //solvation contribution (e.g. CPCM dielectric)
	VdW        *float64 //dispersion correction
	Path       []PathPoint
}

//EnergyKcal returns the final energy in kcal/mol, or 0 if none was parsed.
func (R *Result) EnergyKcal() float64 {
	if R.Energy == nil {
		return 0
	}
	return *R.Energy * qcflow.H2Kcal
}

//propertyRecord is the JSON shape of the optional machine-readable property
//export. The parsed Result stays authoritative; this file is a convenience
//for downstream consumers.
type propertyRecord struct {
	Program    string         `json:"program"`
	Terminated bool           `json:"terminated"`
	SCFEnergy  *float64       `json:"scf_energy,omitempty"`
	Energy     *float64       `json:"energy,omitempty"`
	Dipole     []float64      `json:"dipole,omitempty"`
	Gradient   [][]float64    `json:"gradient,omitempty"`
	Geometry   [][]float64    `json:"geometry,omitempty"`
	PopMethod  string         `json:"population_method,omitempty"`
	Population []AtomicCharge `json:"population,omitempty"`
	Solvation  *float64       `json:"solvation,omitempty"`
	VdW        *float64       `json:"vdw_correction,omitempty"`
	Path       []PathPoint    `json:"path,omitempty"`
}

func matRows(m *mat.Dense) [][]float64 {
	if m == nil {
		return nil
	}
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		mat.Row(row, i, m)
		out[i] = row
	}
	return out
}

//WritePropertiesJSON writes res to name as indented JSON.
func WritePropertiesJSON(name string, res *Result) error {
	rec := propertyRecord{
		Program:    res.Program,
		Terminated: res.Terminated,
		SCFEnergy:  res.SCFEnergy,
		Energy:     res.Energy,
		Dipole:     res.Dipole,
		Gradient:   matRows(res.Gradient),
		Geometry:   matRows(res.Geometry),
		PopMethod:  res.PopMethod,
		Population: res.Population,
		Solvation:  res.Solvation,
		VdW:        res.VdW,
		Path:       res.Path,
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(name, append(data, '\n'), 0644)
}

//Errors

const (
	ErrNoOutput     = "output artifact not found"
	ErrParse        = "expected section missing from output"
	ErrAbnormal     = "calculation did not terminate normally"
	ErrCantInput    = "cannot write input"
	ErrMissingData  = "missing charges or coordinates"
	ErrNoMethod     = "no method or basis available"
	ErrBadDirective = "malformed directive"
)

//Error is the error type for all handles. The message is one of the Err*
//constants, so callers can classify without string matching on the full text.
type Error struct {
	message    string
	program    string
	inputname  string
	additional string
	deco       []string
	critical   bool
}

func (err Error) Error() string {
	s := fmt.Sprintf("engine %s, input %s: %s", err.program, err.inputname, err.message)
	if err.additional != "" {
		s = s + " (" + err.additional + ")"
	}
	return s
}

//Decorate adds dec to the decoration trail of the error and returns the
//resulting trail. An empty dec only returns the current trail.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func (err Error) Critical() bool { return err.critical }

func (err Error) Program() string { return err.program }

//IsMissingArtifact reports whether err means the expected output file does
//not exist, i.e. the program never ran or crashed before producing output.
func IsMissingArtifact(err error) bool {
	var e Error
	return errors.As(err, &e) && e.message == ErrNoOutput
}

//IsParseError reports whether err means the output existed but could not be
//interpreted as a finished calculation, which includes abnormal termination.
func IsParseError(err error) bool {
	var e Error
	return errors.As(err, &e) && (e.message == ErrParse || e.message == ErrAbnormal)
}

//fieldAfter pulls the field right after the one equal to marker, as a float.
func fieldAfter(fields []string, marker string) (float64, bool) {
	for i, f := range fields {
		if f == marker && i+1 < len(fields) {
			v, err := parseFloat(fields[i+1])
			if err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

func parseFloat(s string) (float64, error) {
	//Fortran-style exponents show up in some outputs
	s = strings.Replace(s, "D", "E", 1)
	return strconv.ParseFloat(s, 64)
}
