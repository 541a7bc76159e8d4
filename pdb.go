/*
 * pdb.go, part of MEPS.
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
	"unicode"
)

func init() {
	RegisterCodec("pdb", pdbCodec{})
}

//pdbCodec reads ATOM/HETATM records from PDB files and writes minimal
//single-chain records. Connectivity and occupancy are ignored on read.
type pdbCodec struct{}

func (pdbCodec) Read(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := PDBRead(f)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.File = path
		}
		return nil, err
	}
	return s, nil
}

func (pdbCodec) Write(path string, s *Structure) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return PDBWrite(f, s)
}

//PDBRead collects every ATOM and HETATM record in order of appearance.
//The element is taken from columns 77-78 when present and falls back to
//the leading letters of the atom name.
func PDBRead(r io.Reader) (*Structure, error) {
	s := New()
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if !strings.HasPrefix(line, "ATOM") && !strings.HasPrefix(line, "HETATM") {
			continue
		}
		if len(line) < 54 {
			return nil, &ParseError{Format: "pdb", Line: lineno, Reason: "record too short for coordinates"}
		}
		var a Atom
		var err error
		if a.X, err = strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64); err == nil {
			if a.Y, err = strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64); err == nil {
				a.Z, err = strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
			}
		}
		if err != nil {
			return nil, &ParseError{Format: "pdb", Line: lineno, Reason: "non-numeric coordinate field"}
		}
		if len(line) >= 78 {
			a.Symbol = normalizeElement(strings.TrimSpace(line[76:78]))
		}
		if a.Symbol == "" {
			a.Symbol = elementFromName(strings.TrimSpace(line[12:16]))
		}
		if a.Symbol == "" {
			return nil, &ParseError{Format: "pdb", Line: lineno, Reason: "cannot determine element"}
		}
		s.Atoms = append(s.Atoms, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

//PDBWrite emits one HETATM record per atom in a single residue MOL on
//chain A, which is all the docking tools downstream need.
func PDBWrite(w io.Writer, s *Structure) error {
	for i, a := range s.Atoms {
		_, err := fmt.Fprintf(w, "HETATM%5d %-4s MOL A   1    %8.3f%8.3f%8.3f  1.00  0.00          %2s\n",
			i+1, a.Symbol, a.X, a.Y, a.Z, a.Symbol)
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "END")
	return err
}

//normalizeElement fixes the case of an element symbol ("CL" -> "Cl").
func normalizeElement(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
	return s
}

//elementFromName guesses the element from a PDB atom name by taking the
//leading letters, skipping any digit prefix ("1HB" is a hydrogen).
func elementFromName(name string) string {
	start := 0
	for start < len(name) && unicode.IsDigit(rune(name[start])) {
		start++
	}
	end := start
	for end < len(name) && unicode.IsLetter(rune(name[end])) {
		end++
	}
	letters := name[start:end]
	if letters == "" {
		return ""
	}
	//two-letter symbols only when the pair is a known element, so that
	//"CA" (an alpha carbon) stays carbon rather than becoming calcium
	if len(letters) >= 2 {
		two := normalizeElement(letters[:2])
		if _, ok := AtomicNumberOf(two); ok && two != "Ca" {
			return two
		}
	}
	return normalizeElement(letters[:1])
}
