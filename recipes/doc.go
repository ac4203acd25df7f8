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

//Package recipes provides ready-made calculation workflows: single points,
//geometry optimizations, transition-state searches and bidirectional IRC
//path following. Each workflow builds three settings layers, in order of
//increasing precedence: its own built-in defaults, the method defaults from
//the caller's functional/basis choice, and the caller's keyword overrides
//(which may remove default keys with settings.Remove).
package recipes
