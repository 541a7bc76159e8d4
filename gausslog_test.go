/*
 * gausslog_test.go, part of MEPS.
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
	"math"
	"strings"
	"testing"
)

func TestGaussLogLastBlockWins(t *testing.T) {
	s, err := ReadFile("test/water_opt.log")
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 3 {
		t.Fatalf("got %d atoms, want 3", s.Len())
	}
	if s.Atoms[0].Symbol != "O" || s.Atoms[1].Symbol != "H" {
		t.Fatalf("wrong elements: %+v", s.Atoms)
	}
	//the fixture has two orientation blocks, the second is converged
	if math.Abs(s.Atoms[0].Z-0.1173) > 1e-9 {
		t.Errorf("got z=%f from the wrong block, want 0.117300", s.Atoms[0].Z)
	}
}

func TestGaussLogNoBlock(t *testing.T) {
	in := " Entering Gaussian System\n Error termination via Lnk1e\n"
	_, err := GaussLogRead(strings.NewReader(in))
	if err == nil {
		t.Fatal("expected error when no orientation block exists")
	}
	if !strings.Contains(err.Error(), "no orientation block") {
		t.Errorf("unhelpful error: %v", err)
	}
}

func TestGaussLogUnknownAtomicNumber(t *testing.T) {
	in := `                         Standard orientation:
 ---------------------------------------------------------------------
 Center     Atomic      Atomic             Coordinates (Angstroms)
 Number     Number       Type             X           Y           Z
 ---------------------------------------------------------------------
      1         26           0        0.000000    0.000000    0.000000
 ---------------------------------------------------------------------
`
	_, err := GaussLogRead(strings.NewReader(in))
	if err == nil {
		t.Fatal("iron is outside the supported element set, expected an error")
	}
	if !strings.Contains(err.Error(), "atomic number 26") {
		t.Errorf("error does not name the offending atomic number: %v", err)
	}
}

func TestGaussLogWriteRefused(t *testing.T) {
	c, err := LookupCodec("gaussian")
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Write("out.log", water()); err == nil {
		t.Error("gaussian codec must refuse to write")
	}
}
