/*
 * xyz.go, part of MEPS.
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
	RegisterCodec("xyz", xyzCodec{})
}

//xyzCodec reads and writes plain XYZ files: atom count, comment line,
//then one "symbol x y z" line per atom.
type xyzCodec struct{}

func (xyzCodec) Read(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := XYZRead(f)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.File = path
		}
		return nil, err
	}
	return s, nil
}

func (xyzCodec) Write(path string, s *Structure) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return XYZWrite(f, s, "")
}

//XYZRead parses an XYZ stream. The atom count declared in the header
//must match the coordinate lines found; a short file or a non-numeric
//coordinate is a ParseError.
func XYZRead(r io.Reader) (*Structure, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return nil, &ParseError{Format: "xyz", Line: 1, Reason: "empty file"}
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return nil, &ParseError{Format: "xyz", Line: 1, Reason: "atom count is not an integer"}
	}
	if !scanner.Scan() {
		return nil, &ParseError{Format: "xyz", Line: 2, Reason: "missing comment line"}
	}
	s := New()
	s.Atoms = make([]Atom, 0, natoms)
	for i := 0; i < natoms; i++ {
		if !scanner.Scan() {
			return nil, &ParseError{Format: "xyz", Line: i + 3,
				Reason: fmt.Sprintf("header declares %d atoms, found %d", natoms, i)}
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return nil, &ParseError{Format: "xyz", Line: i + 3, Reason: "expected symbol and 3 coordinates"}
		}
		var a Atom
		a.Symbol = fields[0]
		if a.X, err = strconv.ParseFloat(fields[1], 64); err == nil {
			if a.Y, err = strconv.ParseFloat(fields[2], 64); err == nil {
				a.Z, err = strconv.ParseFloat(fields[3], 64)
			}
		}
		if err != nil {
			return nil, &ParseError{Format: "xyz", Line: i + 3, Reason: "non-numeric coordinate field"}
		}
		s.Atoms = append(s.Atoms, a)
	}
	return s, scanner.Err()
}

//XYZWrite renders the structure as XYZ. Charge and multiplicity have no
//place in the format and are dropped.
func XYZWrite(w io.Writer, s *Structure, comment string) error {
	if _, err := fmt.Fprintf(w, "%d\n%s\n", len(s.Atoms), comment); err != nil {
		return err
	}
	for _, a := range s.Atoms {
		if _, err := fmt.Fprintf(w, "%-2s %12.6f %12.6f %12.6f\n", a.Symbol, a.X, a.Y, a.Z); err != nil {
			return err
		}
	}
	return nil
}
