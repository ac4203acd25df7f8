/*
 * settings.go, part of qcflow.
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

//Package settings resolves layered calculation settings into the flat
//configuration handed to an engine. A workflow builds three layers per call:
//its built-in defaults, the method defaults derived from the caller's
//method/basis choice, and the caller's own overrides. Layers are applied in
//order; later layers win. A key set to Remove is deleted and stays deleted
//for the rest of the merge, no matter what later layers say. Scalar keys
//replace; list-valued keys are replaced wholesale by the last layer that sets
//them, never appended to.
//
//All functions here are pure: no input layer is ever mutated and list values
//are copied on the way in and out.
package settings

import "sort"

//Value is one setting in a layer: either a kept value or a removal marker.
type Value struct {
	val    any
	remove bool
}

//Remove marks a key for deletion from the merged configuration.
var Remove = Value{remove: true}

//Set wraps v as a kept value. v is normally a string, an int, a bool or a
//[]string; unknown keys and types are passed through untouched, engines
//decide what they accept.
func Set(v any) Value {
	return Value{val: v}
}

//List wraps items as a kept list value. List-valued keys are the ones an
//engine renders as multi-option directives, e.g. scf(maxcycle=250,xqc).
func List(items ...string) Value {
	l := make([]string, len(items))
	copy(l, items)
	return Value{val: l}
}

//IsRemove reports whether the value is a removal marker.
func (v Value) IsRemove() bool {
	return v.remove
}

//Interface returns the wrapped value, or nil for a removal marker.
//List values are copied.
func (v Value) Interface() any {
	if v.remove {
		return nil
	}
	if l, ok := v.val.([]string); ok {
		out := make([]string, len(l))
		copy(out, l)
		return out
	}
	return v.val
}

//Layer maps setting names to values or removal markers. Insertion order is
//irrelevant; only the layer-to-layer order matters.
type Layer map[string]Value

//Copy returns a copy of the layer. List values are copied too.
func (L Layer) Copy() Layer {
	out := make(Layer, len(L))
	for k, v := range L {
		if l, ok := v.val.([]string); ok {
			out[k] = List(l...)
			continue
		}
		out[k] = v
	}
	return out
}

//Squash folds layers left to right into a single layer, keeping removal
//markers. Once a key has been removed it stays a removal marker even if a
//later layer sets it again; removal is terminal. Because the marker is kept,
//Merge(a, b, c) always equals Merge(Squash(a, b), c).
func Squash(layers ...Layer) Layer {
	out := Layer{}
	for _, layer := range layers {
		for k, v := range layer {
			if prev, ok := out[k]; ok && prev.remove {
				continue
			}
			if v.remove {
				out[k] = Remove
				continue
			}
			if l, ok := v.val.([]string); ok {
				out[k] = List(l...)
				continue
			}
			out[k] = v
		}
	}
	return out
}

//Resolved is the final flat configuration handed to an engine. No removal
//markers remain in it.
type Resolved map[string]any

//Merge resolves base plus the override layers, in order, dropping every key
//that was marked for removal. It never fails: unknown keys are not an error
//here, validating them is the engine's job.
func Merge(base Layer, overrides ...Layer) Resolved {
	all := make([]Layer, 0, len(overrides)+1)
	if base != nil {
		all = append(all, base)
	}
	all = append(all, overrides...)
	squashed := Squash(all...)
	out := make(Resolved, len(squashed))
	for k, v := range squashed {
		if v.remove {
			continue
		}
		out[k] = v.Interface()
	}
	return out
}

//Has reports whether key is present in the resolved configuration.
func (R Resolved) Has(key string) bool {
	_, ok := R[key]
	return ok
}

//String returns the value of key if it is a string, or "".
func (R Resolved) String(key string) string {
	s, _ := R[key].(string)
	return s
}

//Strings returns the value of key if it is a list, or nil.
func (R Resolved) Strings(key string) []string {
	l, _ := R[key].([]string)
	return l
}

//Int returns the value of key if it is an int, or 0.
func (R Resolved) Int(key string) int {
	i, _ := R[key].(int)
	return i
}

//Bool returns the value of key if it is a bool, or false.
func (R Resolved) Bool(key string) bool {
	b, _ := R[key].(bool)
	return b
}

//Keys returns the keys of the resolved configuration, sorted. Engines iterate
//over this when rendering keys with no fixed position, so the artifact they
//write does not depend on map order.
func (R Resolved) Keys() []string {
	keys := make([]string, 0, len(R))
	for k := range R {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
