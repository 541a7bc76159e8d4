/*
 * mol.go, part of MEPS.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

func init() {
	RegisterCodec("mol", molCodec{})
}

//molCodec handles MDL MOL/SDF files in V2000 connection-table form.
//Only the atom block is read; bonds and properties are skipped.
type molCodec struct{}

func (molCodec) Read(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := MOLRead(f)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.File = path
		}
		return nil, err
	}
	return s, nil
}

func (molCodec) Write(path string, s *Structure) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return MOLWrite(f, s)
}

//MOLRead parses the first molecule of a V2000 MOL or SDF stream. The
//counts line (line 4) fixes the number of atom lines to read.
func MOLRead(r io.Reader) (*Structure, error) {
	scanner := bufio.NewScanner(r)
	for i := 0; i < 3; i++ { //title, program, comment
		if !scanner.Scan() {
			return nil, &ParseError{Format: "mol", Line: i + 1, Reason: "truncated header"}
		}
	}
	if !scanner.Scan() {
		return nil, &ParseError{Format: "mol", Line: 4, Reason: "missing counts line"}
	}
	counts := scanner.Text()
	if len(counts) < 3 {
		return nil, &ParseError{Format: "mol", Line: 4, Reason: "counts line too short"}
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(counts[0:3]))
	if err != nil {
		return nil, &ParseError{Format: "mol", Line: 4, Reason: "atom count is not an integer"}
	}
	s := New()
	s.Atoms = make([]Atom, 0, natoms)
	for i := 0; i < natoms; i++ {
		if !scanner.Scan() {
			return nil, &ParseError{Format: "mol", Line: i + 5,
				Reason: fmt.Sprintf("counts line declares %d atoms, found %d", natoms, i)}
		}
		line := scanner.Text()
		if len(line) < 34 {
			return nil, &ParseError{Format: "mol", Line: i + 5, Reason: "atom line too short"}
		}
		var a Atom
		if a.X, err = strconv.ParseFloat(strings.TrimSpace(line[0:10]), 64); err == nil {
			if a.Y, err = strconv.ParseFloat(strings.TrimSpace(line[10:20]), 64); err == nil {
				a.Z, err = strconv.ParseFloat(strings.TrimSpace(line[20:30]), 64)
			}
		}
		if err != nil {
			return nil, &ParseError{Format: "mol", Line: i + 5, Reason: "non-numeric coordinate field"}
		}
		a.Symbol = normalizeElement(strings.TrimSpace(line[31:34]))
		if a.Symbol == "" {
			return nil, &ParseError{Format: "mol", Line: i + 5, Reason: "empty element field"}
		}
		s.Atoms = append(s.Atoms, a)
	}
	return s, scanner.Err()
}

//MOLWrite emits a minimal V2000 block with no bonds, which is enough
//for coordinate interchange.
func MOLWrite(w io.Writer, s *Structure) error {
	if _, err := fmt.Fprintf(w, "\n  MEPS\n\n%3d%3d  0  0  0  0  0  0  0  0999 V2000\n",
		len(s.Atoms), 0); err != nil {
		return err
	}
	for _, a := range s.Atoms {
		if _, err := fmt.Fprintf(w, "%10.4f%10.4f%10.4f %-3s 0  0  0  0  0  0  0  0  0  0  0  0\n",
			a.X, a.Y, a.Z, a.Symbol); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "M  END")
	return err
}
