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

package engine

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/qcflow/qcflow"
	"github.com/qcflow/qcflow/settings"
)

//OrcaHandle drives an ORCA-class program. Note that the default method and
//basis are NOT considered part of the API, so they can always change.
type OrcaHandle struct {
	defmethod  string
	defbasis   string
	command    string
	inputname  string
	dirname    string
	writeProps bool
}

func NewOrcaHandle() *OrcaHandle {
	run := new(OrcaHandle)
	run.SetDefaults()
	return run
}

//SetDefaults sets the fallback method and basis and points the command to
//$ORCA_PATH/orca, at least in unix.
func (O *OrcaHandle) SetDefaults() {
	O.defmethod = "revPBE"
	O.defbasis = "def2-SVP"
	O.command = os.ExpandEnv("${ORCA_PATH}/orca")
	if O.command == "/orca" { //if ORCA_PATH was not defined
		O.command = "./orca"
	}
	O.inputname = "qcflow"
}

func (O *OrcaHandle) SetName(name string) {
	O.inputname = name
}

func (O *OrcaHandle) SetWorkDir(dir string) {
	O.dirname = dir
}

func (O *OrcaHandle) SetCommand(cmd string) {
	O.command = cmd
}

func (O *OrcaHandle) path(ext string) string {
	if O.dirname == "" {
		return O.inputname + ext
	}
	return filepath.Join(O.dirname, O.inputname+ext)
}

func orcaToken(key string, val any) string {
	switch v := val.(type) {
	case string:
		if v == "" {
			return key
		}
		return fmt.Sprintf("%s(%s)", key, v)
	case bool:
		if v {
			return key
		}
		return ""
	default:
		return fmt.Sprintf("%s(%v)", key, v)
	}
}

//PrepareInput writes an ORCA input from the structure in coords/atoms and
//the resolved configuration. Recognized keys: xc and basis (first simple-input
//tokens), simple (extra tokens, kept in list order), blocks (verbatim %-block
//lines), cpcm (lines of a %cpcm block) and mem (%maxcore). Remaining keys
//become simple-input tokens in sorted order.
func (O *OrcaHandle) PrepareInput(coords *mat.Dense, atoms qcflow.AtomMultiCharger, conf settings.Resolved) error {
	if atoms == nil || coords == nil {
		return Error{ErrMissingData, Orca, O.inputname, "", []string{"PrepareInput"}, true}
	}
	O.writeProps = conf.Bool("write_properties")
	xc := conf.String("xc")
	basis := conf.String("basis")
	if xc == "" {
		fmt.Fprintf(os.Stderr, "no method assigned for ORCA calculation, will use the default %s\n", O.defmethod)
		xc = O.defmethod
	}
	if basis == "" {
		fmt.Fprintf(os.Stderr, "no basis set assigned for ORCA calculation, will use the default %s\n", O.defbasis)
		basis = O.defbasis
	}
	consumed := map[string]bool{
		"xc": true, "basis": true, "simple": true, "blocks": true,
		"cpcm": true, "mem": true, "write_properties": true,
	}
	tokens := []string{"!", xc, basis}
	tokens = append(tokens, conf.Strings("simple")...)
	for _, key := range conf.Keys() {
		if consumed[key] {
			continue
		}
		if tok := orcaToken(key, conf[key]); tok != "" {
			tokens = append(tokens, tok)
		}
	}

	file, err := os.Create(O.path(".inp"))
	if err != nil {
		return Error{ErrCantInput, Orca, O.inputname, err.Error(), []string{"os.Create", "PrepareInput"}, true}
	}
	defer file.Close()
	fmt.Fprintf(file, "%s\n", strings.Join(tokens, " "))
	for _, block := range conf.Strings("blocks") {
		fmt.Fprintf(file, "%s\n", block)
	}
	if cpcm := conf.Strings("cpcm"); len(cpcm) > 0 {
		fmt.Fprintf(file, "%%cpcm\n")
		for _, line := range cpcm {
			fmt.Fprintf(file, "   %s\n", line)
		}
		fmt.Fprint(file, "end\n")
	}
	if mem := conf.Int("mem"); mem > 0 {
		fmt.Fprintf(file, "%%maxcore %d\n", mem)
	}
	fmt.Fprintf(file, "* xyz %d %d\n", atoms.Charge(), atoms.Multi())
	for i := 0; i < atoms.Len(); i++ {
		_, err = fmt.Fprintf(file, "%-2s  %12.6f%12.6f%12.6f\n",
			atoms.Atom(i).Symbol, coords.At(i, 0), coords.At(i, 1), coords.At(i, 2))
		if err != nil {
			return Error{ErrCantInput, Orca, O.inputname, err.Error(), []string{"PrepareInput"}, true}
		}
	}
	fmt.Fprint(file, "*\n")
	return nil
}

//Run invokes the program on the prepared input. Not waiting for results
//works only on unix-compatible systems, as it uses sh and nohup.
func (O *OrcaHandle) Run(wait bool) error {
	if wait {
		out, err := os.Create(O.path(".out"))
		if err != nil {
			return err
		}
		defer out.Close()
		command := exec.Command(O.command, O.inputname+".inp")
		command.Dir = O.dirname
		command.Stdout = out
		command.Stderr = out
		return command.Run()
	}
	command := exec.Command("sh", "-c", "nohup "+O.command+fmt.Sprintf(" %s.inp > %s.out &", O.inputname, O.inputname))
	command.Dir = O.dirname
	return command.Start()
}

//ParseOutput scans the output for the final single-point energy, the SCF
//energy, the dipole moment, Loewdin charges, the CPCM dielectric term, the
//dispersion correction and the cartesian gradient. The final geometry is
//taken from the xyz file the program writes when the xyzfile token is on,
//falling back to the last coordinate block of the output.
func (O *OrcaHandle) ParseOutput() (*Result, error) {
	f, err := os.Open(O.path(".out"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Error{ErrNoOutput, Orca, O.inputname, O.path(".out"), []string{"ParseOutput"}, true}
		}
		return nil, err
	}
	defer f.Close()
	res := &Result{Program: Orca}
	scan := bufio.NewScanner(f)
	scan.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	var lastCoords []float64
	for scan.Scan() {
		line := scan.Text()
		switch {
		case strings.Contains(line, "ORCA TERMINATED NORMALLY"):
			res.Terminated = true
		case strings.Contains(line, "FINAL SINGLE POINT ENERGY"):
			fields := strings.Fields(line)
			if v, perr := parseFloat(fields[len(fields)-1]); perr == nil {
				e := v
				res.Energy = &e
			}
		case strings.HasPrefix(strings.TrimSpace(line), "Total Energy") && strings.Contains(line, ":"):
			fields := strings.Fields(line)
			if len(fields) >= 4 {
				if v, perr := parseFloat(fields[3]); perr == nil {
					e := v
					res.SCFEnergy = &e
				}
			}
		case strings.Contains(line, "Total Dipole Moment"):
			fields := strings.Fields(line)
			if len(fields) >= 7 {
				d := make([]float64, 3)
				var bad bool
				for i := 0; i < 3; i++ {
					var perr error
					d[i], perr = parseFloat(fields[len(fields)-3+i])
					if perr != nil {
						bad = true
						break
					}
				}
				if !bad {
					res.Dipole = d
				}
			}
		case strings.Contains(line, "LOEWDIN ATOMIC CHARGES"):
			scan.Scan() //separator
			res.Population = nil
			for scan.Scan() {
				fields := strings.Fields(scan.Text())
				if len(fields) < 4 || fields[2] != ":" {
					break
				}
				idx, e1 := parseFloat(fields[0])
				q, e2 := parseFloat(fields[3])
				if e1 != nil || e2 != nil {
					break
				}
				res.Population = append(res.Population, AtomicCharge{Atom: int(idx), Symbol: fields[1], Charge: q})
			}
			res.PopMethod = "loewdin"
		case strings.Contains(line, "CPCM Dielectric"):
			fields := strings.Fields(line)
			if v, ok := fieldAfter(fields, ":"); ok {
				res.Solvation = &v
			}
		case strings.Contains(line, "Dispersion correction"):
			fields := strings.Fields(line)
			if v, perr := parseFloat(fields[len(fields)-1]); perr == nil {
				res.VdW = &v
			}
		case strings.Contains(line, "CARTESIAN GRADIENT"):
			scan.Scan() //separator
			scan.Scan() //blank
			var rows []float64
			for scan.Scan() {
				fields := strings.Fields(scan.Text())
				if len(fields) != 6 || fields[2] != ":" {
					break
				}
				gx, e1 := parseFloat(fields[3])
				gy, e2 := parseFloat(fields[4])
				gz, e3 := parseFloat(fields[5])
				if e1 != nil || e2 != nil || e3 != nil {
					break
				}
				rows = append(rows, gx, gy, gz)
			}
			if len(rows) > 0 {
				res.Gradient = mat.NewDense(len(rows)/3, 3, rows)
			}
		case strings.Contains(line, "CARTESIAN COORDINATES (ANGSTROEM)"):
			scan.Scan() //separator
			var rows []float64
			for scan.Scan() {
				fields := strings.Fields(scan.Text())
				if len(fields) != 4 {
					break
				}
				x, e1 := parseFloat(fields[1])
				y, e2 := parseFloat(fields[2])
				z, e3 := parseFloat(fields[3])
				if e1 != nil || e2 != nil || e3 != nil {
					break
				}
				rows = append(rows, x, y, z)
			}
			if len(rows) > 0 {
				lastCoords = rows
			}
		}
	}
	if err := scan.Err(); err != nil {
		return nil, Error{ErrParse, Orca, O.inputname, err.Error(), []string{"ParseOutput"}, true}
	}
	if mol, xerr := qcflow.XYZFileRead(O.path(".xyz")); xerr == nil {
		res.Geometry = mol.Coords
	} else if lastCoords != nil {
		res.Geometry = mat.NewDense(len(lastCoords)/3, 3, lastCoords)
	}
	if res.Energy == nil {
		return nil, Error{ErrParse, Orca, O.inputname, "no final energy in output", []string{"ParseOutput"}, true}
	}
	O.exportProperties(res)
	if !res.Terminated {
		return res, Error{ErrAbnormal, Orca, O.inputname, "", []string{"ParseOutput"}, false}
	}
	return res, nil
}

func (O *OrcaHandle) exportProperties(res *Result) {
	if !O.writeProps {
		return
	}
	if err := WritePropertiesJSON(O.path(".properties.json"), res); err != nil {
		fmt.Fprintf(os.Stderr, "qcflow: could not write property export for %s: %v\n", O.inputname, err)
	}
}

//Orca is the program label stamped into results and errors.
const Orca = "orca"
