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

//Package run executes single calculations and fixed sequences of them. A
//Runner owns the working-directory contract: every invocation gets its own
//scratch directory, staged copy-files, and a Record envelope describing how
//the calculation went. Engine crashes and unreadable outputs become failed
//Records, not errors; only configuration problems detected before the
//external program starts are returned as errors.
//
//Execution is synchronous and sequential. A working directory belongs to
//exactly one invocation; callers that run several workflows concurrently must
//give each one its own Runner or at least its own scratch root.
package run
