/*
 * gausslog.go, part of MEPS.
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
	RegisterCodec("gaussian", gaussLogCodec{})
}

//gaussLogCodec reads the final geometry out of a Gaussian log file. It
//is read-only: Gaussian logs are program output, not something we emit.
type gaussLogCodec struct{}

func (gaussLogCodec) Read(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := GaussLogRead(f)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.File = path
		}
		return nil, err
	}
	return s, nil
}

func (gaussLogCodec) Write(path string, s *Structure) error {
	return fmt.Errorf("gaussian: log files are read-only, cannot write %s", path)
}

//GaussLogRead scans the whole log and returns the geometry of the last
//orientation table found, which for an optimization is the converged
//(or latest) geometry. "Standard orientation" blocks are preferred;
//"Input orientation" is used when NoSymm suppresses standardization.
func GaussLogRead(r io.Reader) (*Structure, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	var last *Structure
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if !strings.Contains(line, "Standard orientation:") &&
			!strings.Contains(line, "Input orientation:") {
			continue
		}
		blockStart := lineno
		s, consumed, err := readOrientationBlock(scanner)
		lineno += consumed
		if err != nil {
			if pe, ok := err.(*ParseError); ok {
				pe.Line += blockStart
			}
			return nil, err
		}
		last = s
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if last == nil {
		return nil, &ParseError{Format: "gaussian", Line: lineno, Reason: "no orientation block found"}
	}
	return last, nil
}

//readOrientationBlock consumes one orientation table. The scanner is
//positioned on the header line; the table proper starts after four
//separator and column-header lines and ends at a dashed line.
func readOrientationBlock(scanner *bufio.Scanner) (*Structure, int, error) {
	consumed := 0
	for i := 0; i < 4; i++ {
		if !scanner.Scan() {
			return nil, consumed, &ParseError{Format: "gaussian", Line: consumed, Reason: "truncated orientation header"}
		}
		consumed++
	}
	s := New()
	for scanner.Scan() {
		consumed++
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "----") {
			return s, consumed, nil
		}
		fields := strings.Fields(line)
		if len(fields) < 6 {
			return nil, consumed, &ParseError{Format: "gaussian", Line: consumed, Reason: "short row in orientation table"}
		}
		z, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, consumed, &ParseError{Format: "gaussian", Line: consumed, Reason: "atomic number is not an integer"}
		}
		sym, ok := SymbolOf(z)
		if !ok {
			return nil, consumed, &ParseError{Format: "gaussian", Line: consumed,
				Reason: fmt.Sprintf("no symbol known for atomic number %d", z)}
		}
		var a Atom
		a.Symbol = sym
		if a.X, err = strconv.ParseFloat(fields[3], 64); err == nil {
			if a.Y, err = strconv.ParseFloat(fields[4], 64); err == nil {
				a.Z, err = strconv.ParseFloat(fields[5], 64)
			}
		}
		if err != nil {
			return nil, consumed, &ParseError{Format: "gaussian", Line: consumed, Reason: "non-numeric coordinate field"}
		}
		s.Atoms = append(s.Atoms, a)
	}
	return nil, consumed, &ParseError{Format: "gaussian", Line: consumed, Reason: "orientation table not terminated"}
}
