/*
 * align.go, part of MEPS.
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

	"gonum.org/v1/gonum/mat"
)

//AlignTo rigidly superimposes S onto ref using the Kabsch algorithm on
//the heavy atoms of both structures, then applies the resulting
//rotation and translation to every atom of S, hydrogens included. S is
//modified in place.
//
//If the heavy-atom counts differ the structures cannot be put in
//correspondence; in that case S is only translated so that its
//heavy-atom centroid matches that of ref, and a *DegradedAlignmentError
//reports the approximation. Callers that can live with a translated
//but unrotated placement check for that type and continue. When either
//side has no heavy atoms at all there is nothing to superimpose on; S
//is left untouched and the same error type reports it.
func (S *Structure) AlignTo(ref *Structure) error {
	sh := heavyIndices(S)
	rh := heavyIndices(ref)
	if len(sh) == 0 || len(rh) == 0 {
		return &DegradedAlignmentError{Have: len(sh), Want: len(rh)}
	}
	scx, scy, scz := centroidOf(S, sh)
	rcx, rcy, rcz := centroidOf(ref, rh)
	if len(sh) != len(rh) {
		S.Translate(rcx-scx, rcy-scy, rcz-scz)
		return &DegradedAlignmentError{Have: len(sh), Want: len(rh)}
	}
	n := len(sh)
	P := mat.NewDense(n, 3, nil) //moving set, centered
	Q := mat.NewDense(n, 3, nil) //reference set, centered
	for k := 0; k < n; k++ {
		a := S.Atoms[sh[k]]
		b := ref.Atoms[rh[k]]
		P.SetRow(k, []float64{a.X - scx, a.Y - scy, a.Z - scz})
		Q.SetRow(k, []float64{b.X - rcx, b.Y - rcy, b.Z - rcz})
	}
	var H mat.Dense
	H.Mul(P.T(), Q)
	var svd mat.SVD
	if !svd.Factorize(&H, mat.SVDThin) {
		return fmt.Errorf("align: SVD of covariance matrix failed")
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	var R mat.Dense
	R.Mul(&V, U.T())
	//a negative determinant means an improper rotation (reflection);
	//flip the sign of the last column of V and rebuild
	if mat.Det(&R) < 0 {
		for i := 0; i < 3; i++ {
			V.Set(i, 2, -V.At(i, 2))
		}
		R.Mul(&V, U.T())
	}
	for i := range S.Atoms {
		x := S.Atoms[i].X - scx
		y := S.Atoms[i].Y - scy
		z := S.Atoms[i].Z - scz
		S.Atoms[i].X = R.At(0, 0)*x + R.At(0, 1)*y + R.At(0, 2)*z + rcx
		S.Atoms[i].Y = R.At(1, 0)*x + R.At(1, 1)*y + R.At(1, 2)*z + rcy
		S.Atoms[i].Z = R.At(2, 0)*x + R.At(2, 1)*y + R.At(2, 2)*z + rcz
	}
	return nil
}

//RMSD returns the heavy-atom root-mean-square deviation between S and
//other, assuming matching atom order. It does not superimpose first.
func (S *Structure) RMSD(other *Structure) (float64, error) {
	sh := heavyIndices(S)
	oh := heavyIndices(other)
	if len(sh) == 0 {
		return 0, &EmptyStructureError{Op: "RMSD"}
	}
	if len(sh) != len(oh) {
		return 0, fmt.Errorf("rmsd: heavy atom mismatch (%d vs %d)", len(sh), len(oh))
	}
	sum := 0.0
	for k := range sh {
		a := S.Atoms[sh[k]]
		b := other.Atoms[oh[k]]
		dx := a.X - b.X
		dy := a.Y - b.Y
		dz := a.Z - b.Z
		sum += dx*dx + dy*dy + dz*dz
	}
	return math.Sqrt(sum / float64(len(sh))), nil
}

func heavyIndices(s *Structure) []int {
	var idx []int
	for i, a := range s.Atoms {
		if heavy(a) {
			idx = append(idx, i)
		}
	}
	return idx
}

func centroidOf(s *Structure, idx []int) (x, y, z float64) {
	for _, i := range idx {
		x += s.Atoms[i].X
		y += s.Atoms[i].Y
		z += s.Atoms[i].Z
	}
	n := float64(len(idx))
	return x / n, y / n, z / n
}
