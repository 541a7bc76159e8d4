/*
 * errors.go, part of MEPS.
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

import "fmt"

//ParseError reports a malformed structure file: a header atom count that
//disagrees with the coordinate lines actually found, a non-numeric
//coordinate field, an element the pipeline doesn't support, and the like.
type ParseError struct {
	Format string //format being parsed ("xyz", "mol2", ...)
	File   string //file path, may be empty when parsing a stream
	Line   int    //1-based line number, 0 when unknown
	Reason string
}

func (e *ParseError) Error() string {
	where := e.File
	if where == "" {
		where = e.Format
	}
	if e.Line > 0 {
		return fmt.Sprintf("meps: parsing %s line %d: %s", where, e.Line, e.Reason)
	}
	return fmt.Sprintf("meps: parsing %s: %s", where, e.Reason)
}

//EmptyStructureError reports an operation that is undefined on a
//structure with no atoms, such as the center of mass.
type EmptyStructureError struct {
	Op string
}

func (e *EmptyStructureError) Error() string {
	return fmt.Sprintf("meps: %s: structure has no atoms", e.Op)
}

//FragmentBoundaryError reports a fragment split point that exceeds the
//atom count of the structure being split. A wrong boundary corrupts the
//counterpoise calculation silently, so it is always checked.
type FragmentBoundaryError struct {
	Boundary int
	Atoms    int
}

func (e *FragmentBoundaryError) Error() string {
	return fmt.Sprintf("meps: fragment boundary %d exceeds atom count %d", e.Boundary, e.Atoms)
}

//DegradedAlignmentError reports a superposition that fell back to a
//centroid translation because the heavy-atom counts of the two
//structures differ. The structure was still moved; only the rotation
//is missing.
type DegradedAlignmentError struct {
	Have, Want int
}

func (e *DegradedAlignmentError) Error() string {
	return fmt.Sprintf("meps: heavy atom mismatch (%d vs %d), centroid translation only", e.Have, e.Want)
}
