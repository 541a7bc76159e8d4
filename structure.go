/*
 * structure.go, part of MEPS.
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
	"math"
)

//Atom is one atom of a structure: a periodic-table element symbol and
//cartesian coordinates in Angstrom. Docking-tool type strings such as
//"C.ar" or "N.pl3" never appear here; format readers normalize them.
type Atom struct {
	Symbol  string
	X, Y, Z float64
}

//Structure is an ordered list of atoms plus the net charge and spin
//multiplicity of the molecule. The order of the atoms is significant:
//fragment extraction in the counterpoise stage works by atom count, so
//operations on structures preserve it.
type Structure struct {
	Atoms        []Atom
	Charge       int
	Multiplicity int
}

//New returns an empty structure with neutral charge and singlet
//multiplicity.
func New() *Structure {
	return &Structure{Multiplicity: 1}
}

//Len returns the number of atoms in the structure.
func (S *Structure) Len() int {
	return len(S.Atoms)
}

//Copy returns a deep copy of the structure.
func (S *Structure) Copy() *Structure {
	n := &Structure{
		Atoms:        make([]Atom, len(S.Atoms)),
		Charge:       S.Charge,
		Multiplicity: S.Multiplicity,
	}
	copy(n.Atoms, S.Atoms)
	return n
}

//SetChargeMultiplicity sets the net charge and spin multiplicity.
func (S *Structure) SetChargeMultiplicity(charge, multiplicity int) {
	S.Charge = charge
	S.Multiplicity = multiplicity
}

//AtomInfo returns a short human-readable label for the atom at index i,
//used in close-contact diagnostics.
func (S *Structure) AtomInfo(i int) string {
	if i < 0 || i >= len(S.Atoms) {
		return fmt.Sprintf("atom %d (out of range)", i+1)
	}
	a := S.Atoms[i]
	return fmt.Sprintf("%s%d (%.3f, %.3f, %.3f)", a.Symbol, i+1, a.X, a.Y, a.Z)
}

//CenterOfMass returns the mass-weighted centroid of the structure.
//It returns an EmptyStructureError for a structure without atoms.
func (S *Structure) CenterOfMass() (x, y, z float64, err error) {
	if len(S.Atoms) == 0 {
		return 0, 0, 0, &EmptyStructureError{Op: "CenterOfMass"}
	}
	var total float64
	for _, a := range S.Atoms {
		m := MassOf(a.Symbol)
		total += m
		x += m * a.X
		y += m * a.Y
		z += m * a.Z
	}
	return x / total, y / total, z / total, nil
}

//Translate displaces every atom by (dx, dy, dz), in place.
func (S *Structure) Translate(dx, dy, dz float64) {
	for i := range S.Atoms {
		S.Atoms[i].X += dx
		S.Atoms[i].Y += dy
		S.Atoms[i].Z += dz
	}
}

//CenterAtOrigin translates the structure so its center of mass sits at
//the origin.
func (S *Structure) CenterAtOrigin() error {
	x, y, z, err := S.CenterOfMass()
	if err != nil {
		return err
	}
	S.Translate(-x, -y, -z)
	return nil
}

//BoundingBox is the axis-aligned bounding box of a structure.
type BoundingBox struct {
	XMin, XMax float64
	YMin, YMax float64
	ZMin, ZMax float64
}

//Center returns the geometric center of the box.
func (b BoundingBox) Center() (x, y, z float64) {
	return (b.XMin + b.XMax) / 2, (b.YMin + b.YMax) / 2, (b.ZMin + b.ZMax) / 2
}

//Size returns the extents of the box along each axis.
func (b BoundingBox) Size() (x, y, z float64) {
	return b.XMax - b.XMin, b.YMax - b.YMin, b.ZMax - b.ZMin
}

//Bounds returns the axis-aligned bounding box of the structure. The box
//of an empty structure is the zero box.
func (S *Structure) Bounds() BoundingBox {
	if len(S.Atoms) == 0 {
		return BoundingBox{}
	}
	a := S.Atoms[0]
	b := BoundingBox{a.X, a.X, a.Y, a.Y, a.Z, a.Z}
	for _, at := range S.Atoms[1:] {
		b.XMin = math.Min(b.XMin, at.X)
		b.XMax = math.Max(b.XMax, at.X)
		b.YMin = math.Min(b.YMin, at.Y)
		b.YMax = math.Max(b.YMax, at.Y)
		b.ZMin = math.Min(b.ZMin, at.Z)
		b.ZMax = math.Max(b.ZMax, at.Z)
	}
	return b
}

//Merge returns a new structure containing S's atoms followed by other's
//atoms, in order. Charges add. The multiplicity of the merged structure
//is the larger of the two multiplicities; that is a simplifying
//approximation good enough for the closed-shell systems this workflow
//targets, not a spin-coupling rule.
func (S *Structure) Merge(other *Structure) *Structure {
	m := &Structure{
		Atoms:        make([]Atom, 0, len(S.Atoms)+len(other.Atoms)),
		Charge:       S.Charge + other.Charge,
		Multiplicity: S.Multiplicity,
	}
	if other.Multiplicity > m.Multiplicity {
		m.Multiplicity = other.Multiplicity
	}
	m.Atoms = append(m.Atoms, S.Atoms...)
	m.Atoms = append(m.Atoms, other.Atoms...)
	return m
}

//SplitAt partitions the structure at atom index n into a prefix fragment
//(the first n atoms) and a suffix fragment (the rest). The fragments get
//the charge and multiplicity passed for them, normally those of the
//original monomers. It returns a FragmentBoundaryError when n exceeds
//the atom count.
func (S *Structure) SplitAt(n int, chargeA, multA, chargeB, multB int) (a, b *Structure, err error) {
	//both fragments must be non-empty, a counterpoise fragment with
	//zero atoms is meaningless
	if n <= 0 || n >= len(S.Atoms) {
		return nil, nil, &FragmentBoundaryError{Boundary: n, Atoms: len(S.Atoms)}
	}
	a = &Structure{Atoms: make([]Atom, n), Charge: chargeA, Multiplicity: multA}
	copy(a.Atoms, S.Atoms[:n])
	b = &Structure{Atoms: make([]Atom, len(S.Atoms)-n), Charge: chargeB, Multiplicity: multB}
	copy(b.Atoms, S.Atoms[n:])
	return a, b, nil
}

//Contact is a pair of atoms closer than a distance threshold.
type Contact struct {
	I, J     int
	Distance float64
}

//CheckAtomDistances scans all atom pairs and returns every pair closer
//than min, not just the worst one, so callers can diagnose clashes after
//docking or merging. The scan is O(n^2), which is fine at the tens to
//low hundreds of atoms this pipeline handles. The bool is true when no
//pair violates the threshold.
func (S *Structure) CheckAtomDistances(min float64) (bool, []Contact) {
	var bad []Contact
	for i := 0; i < len(S.Atoms); i++ {
		for j := i + 1; j < len(S.Atoms); j++ {
			dx := S.Atoms[i].X - S.Atoms[j].X
			dy := S.Atoms[i].Y - S.Atoms[j].Y
			dz := S.Atoms[i].Z - S.Atoms[j].Z
			d := math.Sqrt(dx*dx + dy*dy + dz*dz)
			if d < min {
				bad = append(bad, Contact{I: i, J: j, Distance: d})
			}
		}
	}
	return len(bad) == 0, bad
}

//heavy reports whether an atom is a non-hydrogen.
func heavy(a Atom) bool {
	return a.Symbol != "H"
}
