/*
 * run.go, part of qcflow.
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

package run

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/qcflow/qcflow"
	"github.com/qcflow/qcflow/engine"
	"github.com/qcflow/qcflow/settings"
)

//Status is the outcome of one calculation.
type Status string

const (
	Succeeded Status = "succeeded"
	Failed    Status = "failed"
)

//Record is the envelope around one calculation's outcome. It is produced
//once and not modified afterwards.
type Record struct {
	ID         string //unique per invocation
	Name       string //human-readable run name
	Program    string
	Status     Status
	Dir        string //the working directory that produced this record
	Diagnostic string //why the run failed, empty on success
	Properties *engine.Result //may be partial on failure, nil if nothing was parsed
	Fields     map[string]any //caller-supplied additional fields
}

//Failed reports whether the calculation failed.
func (R *Record) Failed() bool {
	return R.Status == Failed
}

//Job describes one calculation: the structure, its charge state, the
//configuration layers to resolve (applied in order, later layers win), files
//to stage into the working directory, and extra fields for the envelope.
//The molecule is read-only; the job builds its own charged copy.
type Job struct {
	Name      string
	Mol       *qcflow.Molecule
	Charge    int
	Multi     int
	Layers    []settings.Layer
	CopyFiles Staging
	Fields    map[string]any
}

//Runner executes Jobs against one engine program. It is not safe for
//concurrent use; every workflow invocation should own its Runner.
type Runner struct {
	program string
	factory func() engine.Handle
	env     *Environment
	log     zerolog.Logger
}

//NewRunner returns a Runner for the named program, "gaussian" or "orca".
//A nil env means DefaultEnvironment.
func NewRunner(program string, env *Environment) (*Runner, error) {
	var factory func() engine.Handle
	if env == nil {
		env = DefaultEnvironment()
	}
	switch program {
	case engine.Gaussian:
		factory = func() engine.Handle { return engine.NewGaussianHandle() }
	case engine.Orca:
		factory = func() engine.Handle { return engine.NewOrcaHandle() }
	default:
		return nil, Error{ErrUnknownProgram, program, "", []string{"NewRunner"}}
	}
	r := &Runner{
		program: program,
		factory: factory,
		env:     env,
		log:     zerolog.New(os.Stderr).With().Timestamp().Str("program", program).Logger(),
	}
	return r, nil
}

//NewCustomRunner returns a Runner with a caller-supplied handle factory.
//This is the extension point for programs this package does not know about,
//and what the tests use to avoid invoking real binaries.
func NewCustomRunner(program string, factory func() engine.Handle, env *Environment) *Runner {
	if env == nil {
		env = DefaultEnvironment()
	}
	return &Runner{
		program: program,
		factory: factory,
		env:     env,
		log:     zerolog.New(os.Stderr).With().Timestamp().Str("program", program).Logger(),
	}
}

//SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l zerolog.Logger) {
	r.log = l
}

//Program returns the engine program this runner drives.
func (r *Runner) Program() string {
	return r.program
}

func (r *Runner) command() string {
	switch r.program {
	case engine.Gaussian:
		return r.env.GaussianCommand
	case engine.Orca:
		return r.env.OrcaCommand
	}
	return ""
}

//fileSafe turns a run name into something usable as a file or directory name.
func fileSafe(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
			b.WriteRune(c)
		case c == ' ':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "qcflow"
	}
	return b.String()
}

func (r *Runner) scratchDir(name, id string) (string, error) {
	if r.env.ScratchRoot == "" {
		return os.MkdirTemp("", "qcflow-"+fileSafe(name)+"-")
	}
	if err := os.MkdirAll(r.env.ScratchRoot, 0755); err != nil {
		return "", err
	}
	dir := filepath.Join(r.env.ScratchRoot, fileSafe(name)+"-"+id[:8])
	if err := os.Mkdir(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

//Run executes one Job. Failures of the external program and of output
//parsing are captured in a failed Record so that a sequence can keep going;
//the returned error is non-nil only for configuration problems found before
//the program was invoked. The working directory is removed on every exit
//path unless the environment says to keep it.
func (r *Runner) Run(job *Job) (*Record, error) {
	if job == nil || job.Mol == nil || job.Mol.Coords == nil {
		return nil, Error{ErrNilStructure, jobName(job), "", []string{"Run"}}
	}
	if job.Multi < 1 {
		return nil, Error{ErrBadMulti, job.Name, "", []string{"Run"}}
	}
	name := job.Name
	if name == "" {
		name = r.program + " calculation"
	}
	conf := settings.Merge(nil, job.Layers...)

	id := uuid.NewString()
	dir, err := r.scratchDir(name, id)
	if err != nil {
		return nil, Error{ErrScratch, name, err.Error(), []string{"Run"}}
	}
	if !r.env.KeepScratch {
		defer os.RemoveAll(dir)
	}
	if err := stage(dir, job.CopyFiles); err != nil {
		return nil, Error{ErrStaging, name, err.Error(), []string{"Run"}}
	}

	mol := job.Mol.WithState(job.Charge, job.Multi)
	h := r.factory()
	h.SetName(fileSafe(name))
	h.SetWorkDir(dir)
	if cmd := r.command(); cmd != "" {
		h.SetCommand(cmd)
	}
	if err := h.PrepareInput(mol.Coords, mol, conf); err != nil {
		return nil, err
	}
	log := r.log.With().Str("run", name).Str("id", id).Str("dir", dir).Logger()
	log.Info().Msg("starting calculation")

	rec := &Record{
		ID:      id,
		Name:    name,
		Program: r.program,
		Dir:     dir,
		Fields:  copyFields(job.Fields),
	}
	runErr := h.Run(true)
	if runErr != nil {
		log.Error().Err(runErr).Msg("engine invocation failed")
	}
	res, parseErr := h.ParseOutput()
	rec.Properties = res
	switch {
	case runErr != nil:
		rec.Status = Failed
		rec.Diagnostic = runErr.Error()
		if parseErr != nil {
			rec.Diagnostic = rec.Diagnostic + "; " + parseErr.Error()
		}
	case parseErr != nil:
		rec.Status = Failed
		rec.Diagnostic = parseErr.Error()
		log.Error().Err(parseErr).Msg("could not interpret engine output")
	default:
		rec.Status = Succeeded
		log.Info().Msg("calculation finished")
	}
	return rec, nil
}

func jobName(job *Job) string {
	if job == nil {
		return ""
	}
	return job.Name
}

func copyFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
