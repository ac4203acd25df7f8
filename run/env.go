/*
 * env.go, part of qcflow.
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

	"github.com/BurntSushi/toml"
)

//Environment describes where the external programs and the scratch space
//live. It is deliberately small: anything about a particular calculation
//belongs in settings layers, not here.
type Environment struct {
	GaussianCommand string `toml:"gaussian_command"`
	OrcaCommand     string `toml:"orca_command"`
	ScratchRoot     string `toml:"scratch_root"` //empty means the system temp dir
	KeepScratch     bool   `toml:"keep_scratch"` //retain run directories after completion
}

//DefaultEnvironment resolves commands the way the engine handles do:
//$GAUSSIAN_CMD falling back to g16, and $ORCA_PATH/orca. Run directories are
//retained, since results usually live next to the output.
func DefaultEnvironment() *Environment {
	env := &Environment{KeepScratch: true}
	env.fill()
	return env
}

//LoadEnvironment reads a TOML environment file, fills unset fields with the
//defaults and validates the result.
func LoadEnvironment(path string) (*Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("environment load failed (%s): %w", path, err)
	}
	env := &Environment{KeepScratch: true}
	if err := toml.Unmarshal(data, env); err != nil {
		return nil, fmt.Errorf("environment parse failed (%s): %w", path, err)
	}
	env.fill()
	if env.ScratchRoot != "" {
		if fi, err := os.Stat(env.ScratchRoot); err == nil && !fi.IsDir() {
			return nil, fmt.Errorf("environment (%s): scratch_root %q is not a directory", path, env.ScratchRoot)
		}
	}
	return env, nil
}

func (env *Environment) fill() {
	if env.GaussianCommand == "" {
		env.GaussianCommand = os.Getenv("GAUSSIAN_CMD")
	}
	if env.GaussianCommand == "" {
		env.GaussianCommand = "g16"
	}
	if env.OrcaCommand == "" {
		env.OrcaCommand = os.ExpandEnv("${ORCA_PATH}/orca")
		if env.OrcaCommand == "/orca" {
			env.OrcaCommand = "./orca"
		}
	}
}
