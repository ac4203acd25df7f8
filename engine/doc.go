/*
 * doc.go, part of qcflow.
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

//Package engine implements communication with external quantum-chemistry
//programs, in such a way that the resolved calculation settings are as
//separated as possible from the choice of program performing the calculation.
//Each supported program gets a Handle: it writes the program's native input
//from a resolved configuration, invokes the program, and scans the program's
//output back into a uniform Result.
//
//The input writers are deterministic: identical structures and identical
//resolved configurations produce byte-identical input files, so callers can
//hash artifacts for caching or reproducibility.
package engine
