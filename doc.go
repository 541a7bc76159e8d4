/*
 * doc.go, part of MEPS.
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

//Package meps provides the molecular structure model for the MEPS
//interaction-energy pipeline: an ordered atom list with charge and spin
//multiplicity, readers and writers for the structure formats the pipeline
//exchanges with external programs (XYZ, PDB, MOL/SDF, MOL2 and Gaussian
//output logs), and the geometric operations the pipeline needs to carry
//state between stages (center of mass, bounding box, merging, rigid
//superposition and close-contact checks).
//
//Atom order is significant everywhere in this package: the counterpoise
//stage of the pipeline splits an assembled complex back into fragments by
//atom count, so every operation that produces a structure keeps the atoms
//of the first, "receptor" fragment as an exact prefix.
package meps
