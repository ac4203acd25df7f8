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

package engine

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/qcflow/qcflow"
	"github.com/qcflow/qcflow/settings"
)

//GaussianHandle drives a Gaussian-class program. Note that the default
//command is not considered part of the API, so it can always change.
type GaussianHandle struct {
	command    string
	inputname  string
	dirname    string
	writeProps bool
}

func NewGaussianHandle() *GaussianHandle {
	run := new(GaussianHandle)
	run.SetDefaults()
	return run
}

//SetDefaults sets the command to $GAUSSIAN_CMD, or to g16 if that is unset.
func (O *GaussianHandle) SetDefaults() {
	O.command = os.Getenv("GAUSSIAN_CMD")
	if O.command == "" {
		O.command = "g16"
	}
	O.inputname = "qcflow"
}

func (O *GaussianHandle) SetName(name string) {
	O.inputname = name
}

func (O *GaussianHandle) SetWorkDir(dir string) {
	O.dirname = dir
}

func (O *GaussianHandle) SetCommand(cmd string) {
	O.command = cmd
}

func (O *GaussianHandle) path(ext string) string {
	if O.dirname == "" {
		return O.inputname + ext
	}
	return filepath.Join(O.dirname, O.inputname+ext)
}

//Keys the route builder consumes at a fixed position. Everything else lands
//after them, sorted, so the route does not depend on map iteration order.
var gaussianRouteOrder = []string{"opt", "freq", "irc", "scf"}

func gaussianToken(key string, val any) string {
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
	case int:
		return fmt.Sprintf("%s(%d)", key, v)
	case []string:
		if len(v) == 0 {
			return key
		}
		return fmt.Sprintf("%s(%s)", key, strings.Join(v, ","))
	default:
		return fmt.Sprintf("%s(%v)", key, v)
	}
}

//PrepareInput writes a Gaussian input file from the structure in coords/atoms
//and the resolved configuration. Recognized link0 keys: chk, mem,
//nprocshared. The route is built from xc/basis, the fixed-order option keys,
//the iop/ioplist lists, the dispersion directive (emitted verbatim, it is
//already a complete keyword) and any remaining keys in sorted order.
func (O *GaussianHandle) PrepareInput(coords *mat.Dense, atoms qcflow.AtomMultiCharger, conf settings.Resolved) error {
	if atoms == nil || coords == nil {
		return Error{ErrMissingData, Gaussian, O.inputname, "", []string{"PrepareInput"}, true}
	}
	O.writeProps = conf.Bool("write_properties")
	consumed := map[string]bool{
		"chk": true, "mem": true, "nprocshared": true,
		"xc": true, "basis": true, "dispersion": true,
		"iop": true, "ioplist": true, "write_properties": true,
	}
	route := make([]string, 0, len(conf)+2)
	route = append(route, "#P")
	xc := conf.String("xc")
	basis := conf.String("basis")
	switch {
	case xc != "" && basis != "":
		route = append(route, xc+"/"+basis)
	case xc != "":
		route = append(route, xc)
	default:
		return Error{ErrNoMethod, Gaussian, O.inputname, "no xc in configuration", []string{"PrepareInput"}, true}
	}
	for _, key := range gaussianRouteOrder {
		consumed[key] = true
		if !conf.Has(key) {
			continue
		}
		if tok := gaussianToken(key, conf[key]); tok != "" {
			route = append(route, tok)
		}
	}
	iops := append(conf.Strings("iop"), conf.Strings("ioplist")...)
	if len(iops) > 0 {
		route = append(route, fmt.Sprintf("iop(%s)", strings.Join(iops, ",")))
	}
	if d := conf.String("dispersion"); d != "" {
		route = append(route, d)
	}
	for _, key := range conf.Keys() {
		if consumed[key] {
			continue
		}
		if tok := gaussianToken(key, conf[key]); tok != "" {
			route = append(route, tok)
		}
	}

	file, err := os.Create(O.path(".gjf"))
	if err != nil {
		return Error{ErrCantInput, Gaussian, O.inputname, err.Error(), []string{"os.Create", "PrepareInput"}, true}
	}
	defer file.Close()
	if chk := conf.String("chk"); chk != "" {
		fmt.Fprintf(file, "%%chk=%s\n", chk)
	}
	if mem := conf.String("mem"); mem != "" {
		fmt.Fprintf(file, "%%mem=%s\n", mem)
	}
	if np := conf.Int("nprocshared"); np > 0 {
		fmt.Fprintf(file, "%%nprocshared=%d\n", np)
	}
	fmt.Fprintf(file, "%s\n\n", strings.Join(route, " "))
	fmt.Fprintf(file, "%s\n\n", O.inputname)
	fmt.Fprintf(file, "%d %d\n", atoms.Charge(), atoms.Multi())
	for i := 0; i < atoms.Len(); i++ {
		_, err = fmt.Fprintf(file, "%-2s  %12.6f%12.6f%12.6f\n",
			atoms.Atom(i).Symbol, coords.At(i, 0), coords.At(i, 1), coords.At(i, 2))
		if err != nil {
			return Error{ErrCantInput, Gaussian, O.inputname, err.Error(), []string{"PrepareInput"}, true}
		}
	}
	//Gaussian wants a blank line after the geometry
	fmt.Fprint(file, "\n")
	return nil
}

//Run invokes the program on the prepared input. Not waiting for results
//works only on unix-compatible systems, as it uses sh and nohup.
func (O *GaussianHandle) Run(wait bool) error {
	if wait {
		out, err := os.Create(O.path(".log"))
		if err != nil {
			return err
		}
		defer out.Close()
		command := exec.Command(O.command, O.inputname+".gjf")
		command.Dir = O.dirname
		command.Stdout = out
		command.Stderr = out
		return command.Run()
	}
	command := exec.Command("sh", "-c", "nohup "+O.command+fmt.Sprintf(" %s.gjf > %s.log &", O.inputname, O.inputname))
	command.Dir = O.dirname
	return command.Start()
}

//ParseOutput scans the log file for the properties this workflow layer
//extracts: SCF energy, dipole moment, Mulliken charges, forces, the last
//standard orientation, the dispersion correction and, for IRC runs, the
//reaction-path summary. Solvation terms are not extracted from this
//program's output.
func (O *GaussianHandle) ParseOutput() (*Result, error) {
	f, err := os.Open(O.path(".log"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Error{ErrNoOutput, Gaussian, O.inputname, O.path(".log"), []string{"ParseOutput"}, true}
		}
		return nil, err
	}
	defer f.Close()
	res := &Result{Program: Gaussian}
	scan := bufio.NewScanner(f)
	scan.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scan.Scan() {
		line := scan.Text()
		switch {
		case strings.Contains(line, "Normal termination of Gaussian"):
			res.Terminated = true
		case strings.Contains(line, "SCF Done:"):
			if v, ok := fieldAfter(strings.Fields(line), "="); ok {
				e := v
				res.SCFEnergy = &e
				res.Energy = &e
			}
		case strings.Contains(line, "Dipole moment (field-independent basis, Debye)"):
			if scan.Scan() {
				fields := strings.Fields(scan.Text())
				//X=  0.0  Y=  0.0  Z=  0.0  Tot=  0.0
				if len(fields) >= 6 {
					d := make([]float64, 3)
					var bad bool
					for i := 0; i < 3; i++ {
						var perr error
						d[i], perr = parseFloat(fields[2*i+1])
						if perr != nil {
							bad = true
							break
						}
					}
					if !bad {
						res.Dipole = d
					}
				}
			}
		case strings.Contains(line, "Mulliken charges:"):
			scan.Scan() //column header
			res.Population = nil
			for scan.Scan() {
				fields := strings.Fields(scan.Text())
				if len(fields) < 3 {
					break
				}
				idx, err1 := strconv.Atoi(fields[0])
				q, err2 := parseFloat(fields[2])
				if err1 != nil || err2 != nil {
					break
				}
				res.Population = append(res.Population, AtomicCharge{Atom: idx - 1, Symbol: fields[1], Charge: q})
			}
			res.PopMethod = "mulliken"
		case strings.Contains(line, "Forces (Hartrees/Bohr)"):
			scan.Scan() //column header
			scan.Scan() //separator
			var rows []float64
			for scan.Scan() {
				fields := strings.Fields(scan.Text())
				if len(fields) != 5 {
					break
				}
				fx, e1 := parseFloat(fields[2])
				fy, e2 := parseFloat(fields[3])
				fz, e3 := parseFloat(fields[4])
				if e1 != nil || e2 != nil || e3 != nil {
					break
				}
				//the program prints forces; the gradient is their negative
				rows = append(rows, -fx, -fy, -fz)
			}
			if len(rows) > 0 {
				res.Gradient = mat.NewDense(len(rows)/3, 3, rows)
			}
		case strings.Contains(line, "Standard orientation:"):
			for i := 0; i < 4; i++ {
				scan.Scan() //headers and separator
			}
			var rows []float64
			for scan.Scan() {
				fields := strings.Fields(scan.Text())
				if len(fields) != 6 {
					break
				}
				x, e1 := parseFloat(fields[3])
				y, e2 := parseFloat(fields[4])
				z, e3 := parseFloat(fields[5])
				if e1 != nil || e2 != nil || e3 != nil {
					break
				}
				rows = append(rows, x, y, z)
			}
			if len(rows) > 0 {
				//keep only the last orientation printed
				res.Geometry = mat.NewDense(len(rows)/3, 3, rows)
			}
		case strings.Contains(line, "Dispersion energy="):
			if v, ok := fieldAfter(strings.Fields(line), "energy="); ok {
				res.VdW = &v
			}
		case strings.Contains(line, "Summary of reaction path following"):
			var started bool
			for scan.Scan() {
				fields := strings.Fields(scan.Text())
				if len(fields) == 3 {
					_, e1 := strconv.Atoi(fields[0])
					en, e2 := parseFloat(fields[1])
					rx, e3 := parseFloat(fields[2])
					if e1 == nil && e2 == nil && e3 == nil {
						res.Path = append(res.Path, PathPoint{Energy: en, Coord: rx})
						started = true
						continue
					}
				}
				if started {
					break
				}
			}
		}
	}
	if err := scan.Err(); err != nil {
		return nil, Error{ErrParse, Gaussian, O.inputname, err.Error(), []string{"ParseOutput"}, true}
	}
	if res.SCFEnergy == nil {
		return nil, Error{ErrParse, Gaussian, O.inputname, "no SCF energy in output", []string{"ParseOutput"}, true}
	}
	O.exportProperties(res)
	if !res.Terminated {
		return res, Error{ErrAbnormal, Gaussian, O.inputname, "", []string{"ParseOutput"}, false}
	}
	return res, nil
}

func (O *GaussianHandle) exportProperties(res *Result) {
	if !O.writeProps {
		return
	}
	if err := WritePropertiesJSON(O.path(".properties.json"), res); err != nil {
		fmt.Fprintf(os.Stderr, "qcflow: could not write property export for %s: %v\n", O.inputname, err)
	}
}

//Gaussian is the program label stamped into results and errors.
const Gaussian = "gaussian"
