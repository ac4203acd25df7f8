/*
 * errors.go, part of qcflow.
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
	"errors"
	"fmt"
)

const (
	ErrUnknownProgram = "unknown engine program"
	ErrNilStructure   = "missing molecular structure"
	ErrBadMulti       = "spin multiplicity must be positive"
	ErrScratch        = "cannot acquire scratch directory"
	ErrStaging        = "cannot stage files into run directory"
	ErrNoSteps        = "refusing to combine zero sub-runs"
	ErrDupLabel       = "duplicate sub-run label"
)

//Error is the error type for the run package. Configuration errors are
//raised before the external program starts and are fatal to the call;
//orchestration errors mean a structural invariant of a composite was
//violated.
type Error struct {
	message    string
	name       string //job or workflow name, if known
	additional string
	deco       []string
}

func (err Error) Error() string {
	s := fmt.Sprintf("run %q: %s", err.name, err.message)
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

func (err Error) Critical() bool { return true }

//IsConfiguration reports whether err is a pre-invocation configuration
//problem: malformed job, unknown program, staging or scratch failure.
func IsConfiguration(err error) bool {
	var e Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.message {
	case ErrUnknownProgram, ErrNilStructure, ErrBadMulti, ErrScratch, ErrStaging:
		return true
	}
	return false
}

//IsOrchestration reports whether err is a violated composite invariant.
func IsOrchestration(err error) bool {
	var e Error
	if !errors.As(err, &e) {
		return false
	}
	return e.message == ErrNoSteps || e.message == ErrDupLabel
}
