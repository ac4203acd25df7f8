/*
 * composite.go, part of qcflow.
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

import "github.com/qcflow/qcflow/settings"

//Step is one sub-run of a sequence: the label it is keyed by in the
//composite, a run name for its own envelope, and the settings layer that
//distinguishes it from its siblings. The layer is applied on top of the
//job's layers; the job's own layers are never modified.
type Step struct {
	Label string
	Name  string
	Layer settings.Layer
}

//Composite is the outcome of a sequence of sub-runs, keyed by label, in the
//order they were executed. It exists only once every sub-run has been
//attempted: a failed sub-run is present with a failed Record, never omitted.
type Composite struct {
	Name  string
	Order []string
	Runs  map[string]*Record
}

//Get returns the record for label, or nil.
func (C *Composite) Get(label string) *Record {
	return C.Runs[label]
}

//Failed reports whether any sub-run failed.
func (C *Composite) Failed() bool {
	for _, rec := range C.Runs {
		if rec.Failed() {
			return true
		}
	}
	return false
}

//Sequence executes the steps strictly in order, each as its own Run with its
//own working directory, and combines the records into a Composite. A failed
//sub-run is data, not a reason to stop: the next step runs regardless, and
//the composite always contains one record per step. Only configuration
//errors abort the sequence, since they would apply to every remaining step
//as well. An empty step list is an orchestration error.
func (r *Runner) Sequence(name string, job *Job, steps []Step) (*Composite, error) {
	if len(steps) == 0 {
		return nil, Error{ErrNoSteps, name, "", []string{"Sequence"}}
	}
	seen := make(map[string]bool, len(steps))
	for _, s := range steps {
		if seen[s.Label] {
			return nil, Error{ErrDupLabel, name, s.Label, []string{"Sequence"}}
		}
		seen[s.Label] = true
	}
	comp := &Composite{
		Name: name,
		Runs: make(map[string]*Record, len(steps)),
	}
	for _, s := range steps {
		sub := *job
		sub.Name = s.Name
		sub.Layers = append(append([]settings.Layer{}, job.Layers...), s.Layer)
		rec, err := r.Run(&sub)
		if err != nil {
			return nil, err
		}
		comp.Order = append(comp.Order, s.Label)
		comp.Runs[s.Label] = rec
	}
	return comp, nil
}
