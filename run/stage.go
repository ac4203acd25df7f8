/*
 * stage.go, part of qcflow.
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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

//Staging maps a source directory to the file names to copy from it into a
//run directory before the calculation starts. A nil name slice means every
//regular file in the directory. Files ending in .gz or .zst are decompressed
//on the way in and staged without the suffix, e.g. a checkpoint from an
//archived earlier run.
type Staging map[string][]string

func stage(dst string, files Staging) error {
	for src, names := range files {
		if names == nil {
			entries, err := os.ReadDir(src)
			if err != nil {
				return err
			}
			for _, e := range entries {
				if e.Type().IsRegular() {
					names = append(names, e.Name())
				}
			}
		}
		for _, name := range names {
			if err := stageOne(filepath.Join(src, name), dst); err != nil {
				return err
			}
		}
	}
	return nil
}

func stageOne(src, dstdir string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	var r io.Reader = in
	name := filepath.Base(src)
	switch {
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(in)
		if err != nil {
			return err
		}
		defer gz.Close()
		r = gz
		name = strings.TrimSuffix(name, ".gz")
	case strings.HasSuffix(name, ".zst"):
		zr, err := zstd.NewReader(in)
		if err != nil {
			return err
		}
		defer zr.Close()
		r = zr
		name = strings.TrimSuffix(name, ".zst")
	}
	out, err := os.Create(filepath.Join(dstdir, name))
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, r)
	return err
}
