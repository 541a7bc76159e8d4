/*
 * atomicdata.go, part of MEPS.
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

//A map for assigning mass to elements.
//Note that just the common "bio-elements" handled by the pipeline are
//present. Symbols absent from this map get the mass of carbon; the
//center of mass only needs a rough weighting.
var symbolMass = map[string]float64{
	"H":  1.008,
	"C":  12.011,
	"N":  14.007,
	"O":  15.999,
	"F":  18.998,
	"P":  30.974,
	"S":  32.065,
	"Cl": 35.453,
	"Br": 79.904,
	"I":  126.904,
}

//fallbackMass is used for symbols missing from symbolMass.
const fallbackMass = 12.011

//AtomicNumber maps element symbols to atomic numbers for the elements
//the pipeline supports in Gaussian input/output exchange.
var symbolNumber = map[string]int{
	"H":  1,
	"C":  6,
	"N":  7,
	"O":  8,
	"F":  9,
	"P":  15,
	"S":  16,
	"Cl": 17,
	"Br": 35,
	"I":  53,
}

//numberSymbol is the inverse of symbolNumber. Gaussian output logs carry
//atomic numbers, not symbols, so geometry read-back goes through this map.
//An atomic number missing here is a hard parse error: mislabeling an atom
//silently would corrupt every downstream stage.
var numberSymbol = map[int]string{
	1:  "H",
	6:  "C",
	7:  "N",
	8:  "O",
	9:  "F",
	15: "P",
	16: "S",
	17: "Cl",
	35: "Br",
	53: "I",
}

//MassOf returns the standard atomic mass for symbol, falling back to the
//mass of carbon for symbols outside the supported set.
func MassOf(symbol string) float64 {
	if m, ok := symbolMass[symbol]; ok {
		return m
	}
	return fallbackMass
}

//AtomicNumberOf returns the atomic number for symbol and whether the
//symbol belongs to the supported element set.
func AtomicNumberOf(symbol string) (int, bool) {
	n, ok := symbolNumber[symbol]
	return n, ok
}

//SymbolOf returns the element symbol for an atomic number and whether the
//number belongs to the supported element set.
func SymbolOf(number int) (string, bool) {
	s, ok := numberSymbol[number]
	return s, ok
}
