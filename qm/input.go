/*
 * input.go, part of MEPS.
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

package qm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	meps "github.com/zhangshd/MEPS"
)

//Job holds the level of theory and resources for one Gaussian input.
//Method and Basis are mandatory; Dispersion is written verbatim as the
//empiricaldispersion keyword when non-empty (e.g. "GD3BJ").
type Job struct {
	Name       string //base name, used for the %chk file
	Method     string
	Basis      string
	Dispersion string
	Freq       bool //also compute frequencies (monomer jobs only)
	Mem        string
	NProc      int
}

func (j *Job) route(extra string) string {
	var b strings.Builder
	kind := "opt"
	if j.Freq {
		kind = "opt freq"
	}
	fmt.Fprintf(&b, "#p %s %s/%s", kind, j.Method, j.Basis)
	if j.Dispersion != "" {
		fmt.Fprintf(&b, " empiricaldispersion=%s", j.Dispersion)
	}
	if extra != "" {
		b.WriteString(" " + extra)
	}
	return b.String()
}

func (j *Job) link0(w *strings.Builder) {
	fmt.Fprintf(w, "%%chk=%s.chk\n", j.Name)
	if j.Mem != "" {
		fmt.Fprintf(w, "%%mem=%s\n", j.Mem)
	}
	if j.NProc > 0 {
		fmt.Fprintf(w, "%%nprocshared=%d\n", j.NProc)
	}
}

//WriteOptInput writes a geometry-optimization input for a single
//molecule.
func WriteOptInput(path string, job Job, s *meps.Structure) error {
	if err := validateJob(&job, path); err != nil {
		return err
	}
	if s.Len() == 0 {
		return &meps.EmptyStructureError{Op: "WriteOptInput"}
	}
	var b strings.Builder
	job.link0(&b)
	b.WriteString(job.route("") + "\n\n")
	fmt.Fprintf(&b, "%s optimization\n\n", job.Name)
	fmt.Fprintf(&b, "%d %d\n", s.Charge, s.Multiplicity)
	for _, a := range s.Atoms {
		fmt.Fprintf(&b, " %-2s   %12.6f   %12.6f   %12.6f\n", a.Symbol, a.X, a.Y, a.Z)
	}
	b.WriteString("\n\n")
	return os.WriteFile(path, []byte(b.String()), 0644)
}

//WriteCounterpoiseInput writes an opt input for a two-fragment complex
//with Counterpoise=2. The first boundary atoms of s belong to fragment
//1, the rest to fragment 2; atom order is preserved exactly, since the
//complex geometry was assembled in that order.
//
//The complex multiplicity is fixed to singlet, which is correct for
//two closed-shell fragments. Frequencies are never requested here;
//freq combined with Counterpoise is unreliable, run it separately if
//needed.
func WriteCounterpoiseInput(path string, job Job, s *meps.Structure, boundary int,
	chargeA, multA, chargeB, multB int) error {
	if err := validateJob(&job, path); err != nil {
		return err
	}
	if boundary <= 0 || boundary >= s.Len() {
		return &meps.FragmentBoundaryError{Boundary: boundary, Atoms: s.Len()}
	}
	job.Freq = false
	var b strings.Builder
	job.link0(&b)
	b.WriteString(job.route("Counterpoise=2 NoSymm") + "\n\n")
	fmt.Fprintf(&b, "%s counterpoise optimization\n\n", job.Name)
	fmt.Fprintf(&b, "%d %d %d %d %d %d\n", chargeA+chargeB, 1, chargeA, multA, chargeB, multB)
	for i, a := range s.Atoms {
		frag := 1
		if i >= boundary {
			frag = 2
		}
		fmt.Fprintf(&b, " %s(Fragment=%d)  %12.6f %12.6f %12.6f\n", a.Symbol, frag, a.X, a.Y, a.Z)
	}
	b.WriteString("\n\n")
	return os.WriteFile(path, []byte(b.String()), 0644)
}

func validateJob(j *Job, path string) error {
	if j.Method == "" || j.Basis == "" {
		return fmt.Errorf("qm: job for %s needs both a method and a basis set", path)
	}
	if j.Name == "" {
		j.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return nil
}
