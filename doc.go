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

//Package qcflow provides the data model shared by the whole library: atoms,
//topologies and molecules, plus reading and writing of XYZ files. The actual
//communication with quantum-chemistry programs lives in the engine subpackage,
//calculation workflows in recipes, and run bookkeeping in run.
//
//Molecules handed to a workflow are owned by the caller and are never mutated
//by this library. Workflows that need a different total charge or multiplicity
//build their own shallow copy of the topology.
package qcflow
