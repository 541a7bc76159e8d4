/*
 * codec.go, part of MEPS.
 *
 * Copyright 2025 zhangshd
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

package meps

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

//Codec reads and writes one structure file format. A format that cannot
//be written (Gaussian logs, say) returns an error from Write; there are
//no silent partial implementations.
type Codec interface {
	//Read parses the file at path into a structure.
	Read(path string) (*Structure, error)
	//Write renders the structure to the file at path.
	Write(path string, s *Structure) error
}

//codecs is the format registry. It is populated at init time by the
//format files of this package and never mutated afterwards, so lookups
//need no locking.
var codecs = map[string]Codec{}

//RegisterCodec adds a codec under a format name ("xyz", "pdb", ...).
//Later registrations of the same name replace earlier ones, which lets a
//caller swap in an alternative backend at configuration time.
func RegisterCodec(format string, c Codec) {
	codecs[strings.ToLower(format)] = c
}

//LookupCodec returns the codec for a format name. The error lists the
//registered formats, so a user can tell a typo from a missing backend.
func LookupCodec(format string) (Codec, error) {
	c, ok := codecs[strings.ToLower(format)]
	if !ok {
		known := make([]string, 0, len(codecs))
		for k := range codecs {
			known = append(known, k)
		}
		sort.Strings(known)
		return nil, fmt.Errorf("meps: no codec registered for format %q (have %s)",
			format, strings.Join(known, ", "))
	}
	return c, nil
}

//FormatForPath maps a file path to a registered format name via its
//extension. ".sdf" maps to the MOL codec and ".out" to the Gaussian log
//codec.
func FormatForPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xyz":
		return "xyz", nil
	case ".pdb":
		return "pdb", nil
	case ".mol", ".sdf":
		return "mol", nil
	case ".mol2":
		return "mol2", nil
	case ".log", ".out":
		return "gaussian", nil
	}
	return "", fmt.Errorf("meps: unsupported structure file extension %q", ext)
}

//ReadFile parses the structure file at path, picking the codec from the
//file extension.
func ReadFile(path string) (*Structure, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	c, err := LookupCodec(format)
	if err != nil {
		return nil, err
	}
	return c.Read(path)
}

//WriteFile writes the structure to path, picking the codec from the file
//extension.
func WriteFile(path string, s *Structure) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	c, err := LookupCodec(format)
	if err != nil {
		return err
	}
	return c.Write(path, s)
}
