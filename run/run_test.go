/*
 * run_test.go, part of qcflow.
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
	"fmt"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/qcflow/qcflow"
	"github.com/qcflow/qcflow/engine"
	"github.com/qcflow/qcflow/settings"
)

//stubHandle records what the runner asked of it and answers from canned
//results, so no external binary is needed.
type stubHandle struct {
	name     string
	dir      string
	command  string
	conf     settings.Resolved
	prepErr  error
	runErr   error
	parseRes *engine.Result
	parseErr error
}

func (s *stubHandle) SetName(name string)   { s.name = name }
func (s *stubHandle) SetWorkDir(dir string) { s.dir = dir }
func (s *stubHandle) SetCommand(cmd string) { s.command = cmd }

func (s *stubHandle) PrepareInput(coords *mat.Dense, atoms qcflow.AtomMultiCharger, conf settings.Resolved) error {
	s.conf = conf
	return s.prepErr
}

func (s *stubHandle) Run(wait bool) error { return s.runErr }

func (s *stubHandle) ParseOutput() (*engine.Result, error) {
	return s.parseRes, s.parseErr
}

func okResult() *engine.Result {
	e := -115.7175862
	return &engine.Result{Program: "stub", Terminated: true, Energy: &e, SCFEnergy: &e}
}

func testjob(Te *testing.T) *Job {
	top, err := qcflow.NewTopology([]*qcflow.Atom{{Symbol: "H"}, {Symbol: "H"}}, 0, 1)
	if err != nil {
		Te.Fatal(err)
	}
	mol, err := qcflow.NewMolecule(top, mat.NewDense(2, 3, []float64{0, 0, 0, 0, 0, 0.74}))
	if err != nil {
		Te.Fatal(err)
	}
	return &Job{
		Name:   "test run",
		Mol:    mol,
		Charge: 0,
		Multi:  1,
		Layers: []settings.Layer{{"xc": settings.Set("wb97xd")}},
		Fields: map[string]any{"source": "test"},
	}
}

//stubRunner returns a runner whose handles are all backed by stubs, plus
//access to the stubs in creation order.
func stubRunner(Te *testing.T, build func(i int) *stubHandle) (*Runner, *[]*stubHandle) {
	var created []*stubHandle
	r := NewCustomRunner("stub", func() engine.Handle {
		s := build(len(created))
		created = append(created, s)
		return s
	}, &Environment{ScratchRoot: Te.TempDir(), KeepScratch: true})
	r.SetLogger(zerolog.Nop())
	return r, &created
}

func TestRunSucceeds(Te *testing.T) {
	r, created := stubRunner(Te, func(int) *stubHandle {
		return &stubHandle{parseRes: okResult()}
	})
	job := testjob(Te)
	rec, err := r.Run(job)
	if err != nil {
		Te.Fatal(err)
	}
	if rec.Failed() || rec.Status != Succeeded {
		Te.Errorf("run reported as failed: %+v", rec)
	}
	if rec.ID == "" || rec.Name != "test run" || rec.Program != "stub" {
		Te.Errorf("bad envelope: %+v", rec)
	}
	if rec.Properties == nil || rec.Properties.Energy == nil {
		Te.Error("parsed properties not attached")
	}
	if rec.Diagnostic != "" {
		Te.Errorf("diagnostic on a successful run: %q", rec.Diagnostic)
	}
	if fi, err := os.Stat(rec.Dir); err != nil || !fi.IsDir() {
		Te.Errorf("working directory not retained: %v", err)
	}
	s := (*created)[0]
	if s.dir != rec.Dir {
		Te.Error("handle ran in a different directory than the record says")
	}
	if s.name != "test_run" {
		Te.Errorf("run name not sanitized for the filesystem: %q", s.name)
	}
	if s.conf.String("xc") != "wb97xd" {
		Te.Error("settings layers not resolved into the handle configuration")
	}
	rec.Fields["source"] = "mutated"
	if job.Fields["source"] != "test" {
		Te.Error("record fields alias the job's map")
	}
}

func TestRunValidation(Te *testing.T) {
	r, _ := stubRunner(Te, func(int) *stubHandle {
		return &stubHandle{parseRes: okResult()}
	})
	if _, err := r.Run(nil); !IsConfiguration(err) {
		Te.Errorf("nil job: %v", err)
	}
	job := testjob(Te)
	job.Mol = nil
	if _, err := r.Run(job); !IsConfiguration(err) {
		Te.Errorf("nil structure: %v", err)
	}
	job = testjob(Te)
	job.Multi = 0
	if _, err := r.Run(job); !IsConfiguration(err) {
		Te.Errorf("zero multiplicity: %v", err)
	}
}

func TestRunUnknownProgram(Te *testing.T) {
	if _, err := NewRunner("mopac", nil); !IsConfiguration(err) {
		Te.Errorf("unknown program accepted: %v", err)
	}
}

func TestRunEngineFailureIsData(Te *testing.T) {
	r, _ := stubRunner(Te, func(int) *stubHandle {
		return &stubHandle{
			runErr:   fmt.Errorf("exit status 1"),
			parseErr: fmt.Errorf("no output"),
		}
	})
	rec, err := r.Run(testjob(Te))
	if err != nil {
		Te.Fatalf("engine failure surfaced as an error instead of a record: %v", err)
	}
	if !rec.Failed() {
		Te.Error("record not marked failed")
	}
	if rec.Diagnostic == "" {
		Te.Error("failed record carries no diagnostic")
	}
}

//A real Gaussian-class handle with a command that does not exist: the input
//gets written, the invocation fails, the log stays empty, and all of it must
//land in a failed record rather than an error.
func TestRunMissingArtifactIsData(Te *testing.T) {
	env := &Environment{
		GaussianCommand: "/definitely/not/a/real/binary",
		ScratchRoot:     Te.TempDir(),
		KeepScratch:     true,
	}
	r, err := NewRunner(engine.Gaussian, env)
	if err != nil {
		Te.Fatal(err)
	}
	r.SetLogger(zerolog.Nop())
	rec, err := r.Run(testjob(Te))
	if err != nil {
		Te.Fatalf("missing output surfaced as an error: %v", err)
	}
	if !rec.Failed() || rec.Diagnostic == "" {
		Te.Errorf("missing output not captured in the record: %+v", rec)
	}
}

func TestRunPartialResultSurvivesFailure(Te *testing.T) {
	partial := okResult()
	partial.Terminated = false
	r, _ := stubRunner(Te, func(int) *stubHandle {
		return &stubHandle{
			parseRes: partial,
			parseErr: fmt.Errorf("calculation did not terminate normally"),
		}
	})
	rec, err := r.Run(testjob(Te))
	if err != nil {
		Te.Fatal(err)
	}
	if !rec.Failed() {
		Te.Error("record not marked failed")
	}
	if rec.Properties == nil || rec.Properties.Energy == nil {
		Te.Error("partial properties dropped from the failed record")
	}
}

func TestRunScratchCleanup(Te *testing.T) {
	r := NewCustomRunner("stub", func() engine.Handle {
		return &stubHandle{parseRes: okResult()}
	}, &Environment{ScratchRoot: Te.TempDir(), KeepScratch: false})
	r.SetLogger(zerolog.Nop())
	rec, err := r.Run(testjob(Te))
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := os.Stat(rec.Dir); !os.IsNotExist(err) {
		Te.Errorf("working directory not removed: %v", err)
	}
}

func TestSequence(Te *testing.T) {
	r, created := stubRunner(Te, func(i int) *stubHandle {
		s := &stubHandle{parseRes: okResult()}
		if i == 1 {
			s.runErr = fmt.Errorf("exit status 1")
			s.parseRes = nil
			s.parseErr = fmt.Errorf("no output")
		}
		return s
	})
	job := testjob(Te)
	baseLayers := len(job.Layers)
	steps := []Step{
		{Label: "first", Name: "step one", Layer: settings.Layer{"opt": settings.Set("")}},
		{Label: "second", Name: "step two", Layer: settings.Layer{"freq": settings.Set("")}},
		{Label: "third", Name: "step three", Layer: settings.Layer{"sp": settings.Set("")}},
	}
	comp, err := r.Sequence("three step workflow", job, steps)
	if err != nil {
		Te.Fatal(err)
	}
	if len(comp.Order) != 3 || len(comp.Runs) != 3 {
		Te.Fatalf("composite incomplete after a sub-run failure: %+v", comp)
	}
	if comp.Order[0] != "first" || comp.Order[2] != "third" {
		Te.Errorf("steps not in execution order: %v", comp.Order)
	}
	if !comp.Failed() {
		Te.Error("composite does not report the failed sub-run")
	}
	if comp.Get("second") == nil || !comp.Get("second").Failed() {
		Te.Error("failed sub-run not present as a failed record")
	}
	if comp.Get("first").Failed() || comp.Get("third").Failed() {
		Te.Error("healthy sub-runs marked failed")
	}
	if comp.Get("first").Name != "step one" {
		Te.Errorf("step name not applied: %q", comp.Get("first").Name)
	}
	if comp.Get("first").Dir == comp.Get("third").Dir {
		Te.Error("sub-runs shared a working directory")
	}
	if len(job.Layers) != baseLayers {
		Te.Error("sequence mutated the job's layers")
	}
	if c := (*created)[0].conf; !c.Has("opt") || c.Has("freq") {
		Te.Errorf("step layer not applied on top of the job layers: %v", c.Keys())
	}
	if c := (*created)[2].conf; c.String("xc") != "wb97xd" || !c.Has("sp") {
		Te.Errorf("job layers lost under the step layer: %v", c.Keys())
	}
}

func TestSequenceNoSteps(Te *testing.T) {
	r, _ := stubRunner(Te, func(int) *stubHandle {
		return &stubHandle{parseRes: okResult()}
	})
	_, err := r.Sequence("empty", testjob(Te), nil)
	if !IsOrchestration(err) {
		Te.Errorf("empty sequence accepted: %v", err)
	}
}

func TestSequenceDuplicateLabels(Te *testing.T) {
	r, _ := stubRunner(Te, func(int) *stubHandle {
		return &stubHandle{parseRes: okResult()}
	})
	steps := []Step{
		{Label: "x", Name: "a"},
		{Label: "x", Name: "b"},
	}
	if _, err := r.Sequence("dup", testjob(Te), steps); !IsOrchestration(err) {
		Te.Errorf("duplicate labels accepted: %v", err)
	}
}

func TestSequenceConfigurationAborts(Te *testing.T) {
	r, created := stubRunner(Te, func(i int) *stubHandle {
		s := &stubHandle{parseRes: okResult()}
		if i == 1 {
			s.prepErr = fmt.Errorf("bad directive")
		}
		return s
	})
	steps := []Step{
		{Label: "a", Name: "a"},
		{Label: "b", Name: "b"},
		{Label: "c", Name: "c"},
	}
	if _, err := r.Sequence("aborting", testjob(Te), steps); err == nil {
		Te.Fatal("configuration error did not abort the sequence")
	}
	if len(*created) != 2 {
		Te.Errorf("sequence kept running after a configuration error: %d handles", len(*created))
	}
}

func TestFileSafe(Te *testing.T) {
	for in, want := range map[string]string{
		"Gaussian Forward IRC": "gaussian_forward_irc",
		"weird/../name":        "weirdname",
		"":                     "qcflow",
	} {
		if got := fileSafe(in); got != want {
			Te.Errorf("fileSafe(%q) = %q, want %q", in, got, want)
		}
	}
}
