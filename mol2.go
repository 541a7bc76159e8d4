/*
 * mol2.go, part of MEPS.
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
	RegisterCodec("mol2", mol2Codec{})
}

//mol2Codec handles TRIPOS MOL2 files. SYBYL atom types such as "C.ar"
//or "N.4" are reduced to their element on read.
type mol2Codec struct{}

func (mol2Codec) Read(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := MOL2Read(f)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.File = path
		}
		return nil, err
	}
	return s, nil
}

func (mol2Codec) Write(path string, s *Structure) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return MOL2Write(f, s)
}

//MOL2Read parses the ATOM section of the first molecule in the stream.
func MOL2Read(r io.Reader) (*Structure, error) {
	scanner := bufio.NewScanner(r)
	s := New()
	inAtoms := false
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "@<TRIPOS>") {
			if inAtoms {
				break //next section ends the atom block
			}
			inAtoms = trimmed == "@<TRIPOS>ATOM"
			continue
		}
		if !inAtoms || trimmed == "" {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) < 6 {
			return nil, &ParseError{Format: "mol2", Line: lineno, Reason: "atom record needs at least 6 fields"}
		}
		var a Atom
		var err error
		if a.X, err = strconv.ParseFloat(fields[2], 64); err == nil {
			if a.Y, err = strconv.ParseFloat(fields[3], 64); err == nil {
				a.Z, err = strconv.ParseFloat(fields[4], 64)
			}
		}
		if err != nil {
			return nil, &ParseError{Format: "mol2", Line: lineno, Reason: "non-numeric coordinate field"}
		}
		a.Symbol = sybylToSymbol(fields[5])
		if a.Symbol == "" {
			return nil, &ParseError{Format: "mol2", Line: lineno,
				Reason: fmt.Sprintf("cannot map SYBYL type %q to an element", fields[5])}
		}
		s.Atoms = append(s.Atoms, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(s.Atoms) == 0 {
		return nil, &ParseError{Format: "mol2", Line: lineno, Reason: "no @<TRIPOS>ATOM section found"}
	}
	return s, nil
}

//MOL2Write emits a SMALL-type molecule with NO_CHARGES and no bond
//section.
func MOL2Write(w io.Writer, s *Structure) error {
	_, err := fmt.Fprintf(w, "@<TRIPOS>MOLECULE\nMEPS\n%5d %5d     1     0     0\nSMALL\nNO_CHARGES\n\n@<TRIPOS>ATOM\n",
		len(s.Atoms), 0)
	if err != nil {
		return err
	}
	for i, a := range s.Atoms {
		_, err := fmt.Fprintf(w, "%7d %-4s %12.4f %12.4f %12.4f %-5s 1 MOL 0.0000\n",
			i+1, a.Symbol, a.X, a.Y, a.Z, a.Symbol)
		if err != nil {
			return err
		}
	}
	return nil
}

//sybylToSymbol strips the hybridization suffix from a SYBYL atom type
//and validates the element part. "Du" and "LP" carry no element.
func sybylToSymbol(sybyl string) string {
	base := sybyl
	if dot := strings.IndexByte(base, '.'); dot >= 0 {
		base = base[:dot]
	}
	base = normalizeElement(base)
	switch base {
	case "Du", "Lp", "Any", "Hev":
		return ""
	}
	if _, ok := AtomicNumberOf(base); !ok {
		return ""
	}
	return base
}
