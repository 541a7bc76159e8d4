/*
 * extract.go, part of MEPS.
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

//Package results extracts interaction energies and optimization
//diagnostics from Gaussian counterpoise outputs and renders reports.
package results

import (
	"bufio"
	"os"
	"regexp"
	"strconv"
	"strings"
)

//CPStep is the counterpoise data Gaussian prints at one optimization
//step. The kcal/mol complexation energies come straight from the log;
//the Hartree quantities are what the convergence plot uses.
type CPStep struct {
	CPEnergy   float64 //counterpoise corrected energy, Hartree
	BSSE       float64 //Hartree
	RawEnergy  float64 //complexation energy (raw), kcal/mol
	CorrEnergy float64 //complexation energy (corrected), kcal/mol
}

//CPResult is the outcome of a counterpoise optimization. During an opt
//Gaussian prints a counterpoise block at every step; the final block
//is authoritative and the per-step history is kept for plotting.
type CPResult struct {
	CPEnergy   float64
	BSSE       float64
	RawEnergy  float64
	CorrEnergy float64
	Steps      []CPStep
	Converged  bool
}

var kcalRe = regexp.MustCompile(`([-+]?\d+\.\d+)\s+kcal/mole`)

//ExtractCounterpoise reads a counterpoise optimization log. It returns
//a zero-step result rather than an error when the log holds no
//counterpoise block, so the caller can distinguish "no data" from "bad
//file".
func ExtractCounterpoise(path string) (*CPResult, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	res := &CPResult{}
	for i, line := range lines {
		if strings.Contains(line, "Normal termination") {
			res.Converged = true
		}
		if !strings.Contains(line, "Counterpoise corrected energy") {
			continue
		}
		step := CPStep{}
		if v, ok := afterEquals(line); ok {
			step.CPEnergy = v
		} else {
			continue
		}
		//the companion lines follow within a few lines of the header
		for j := i + 1; j < len(lines) && j < i+10; j++ {
			l := lines[j]
			switch {
			case strings.Contains(l, "BSSE energy"):
				if v, ok := afterEquals(l); ok {
					step.BSSE = v
				}
			case strings.Contains(l, "complexation energy") && strings.Contains(l, "(raw)"):
				if m := kcalRe.FindStringSubmatch(l); m != nil {
					step.RawEnergy, _ = strconv.ParseFloat(m[1], 64)
				}
			case strings.Contains(l, "complexation energy") && strings.Contains(l, "(corrected)"):
				if m := kcalRe.FindStringSubmatch(l); m != nil {
					step.CorrEnergy, _ = strconv.ParseFloat(m[1], 64)
				}
			}
		}
		res.Steps = append(res.Steps, step)
	}
	if n := len(res.Steps); n > 0 {
		last := res.Steps[n-1]
		res.CPEnergy = last.CPEnergy
		res.BSSE = last.BSSE
		res.RawEnergy = last.RawEnergy
		res.CorrEnergy = last.CorrEnergy
	}
	return res, nil
}

//OptSummary describes how a Gaussian optimization went.
type OptSummary struct {
	Converged     bool
	Steps         int
	ImaginaryFreq int
	FinalEnergy   float64 //last SCF Done, Hartree
	HasEnergy     bool
}

//Summarize reads convergence, step count, imaginary frequencies and
//the final SCF energy from an optimization log.
func Summarize(path string) (*OptSummary, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	s := &OptSummary{}
	for _, line := range lines {
		switch {
		case strings.Contains(line, "Optimization completed"),
			strings.Contains(line, "Stationary point found"),
			strings.Contains(line, "Normal termination"):
			s.Converged = true
		case strings.Contains(line, "Step number"):
			s.Steps++
		case strings.Contains(line, "Frequencies --"):
			for _, f := range strings.Fields(line)[2:] {
				if v, err := strconv.ParseFloat(f, 64); err == nil && v < 0 {
					s.ImaginaryFreq++
				}
			}
		case strings.Contains(line, "SCF Done:"):
			if v, ok := scfEnergy(line); ok {
				s.FinalEnergy = v
				s.HasEnergy = true
			}
		}
	}
	return s, nil
}

//MonomerEnergy returns the last SCF energy of a monomer optimization
//log in Hartree. The bool is false when the log holds no SCF line.
func MonomerEnergy(path string) (float64, bool, error) {
	energies, err := SCFEnergies(path)
	if err != nil || len(energies) == 0 {
		return 0, false, err
	}
	return energies[len(energies)-1], true, nil
}

//SCFEnergies returns every SCF energy in the log, in order, for
//convergence monitoring.
func SCFEnergies(path string) ([]float64, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	var energies []float64
	for _, line := range lines {
		if !strings.Contains(line, "SCF Done:") {
			continue
		}
		if v, ok := scfEnergy(line); ok {
			energies = append(energies, v)
		}
	}
	return energies, nil
}

//Thermochemistry holds the correction block a freq job prints. All
//values are in Hartree. A field is zero when its line was absent; Found
//reports whether any thermochemistry was present at all.
type Thermochemistry struct {
	ZeroPoint       float64 //zero-point correction
	ThermalEnergy   float64 //thermal correction to Energy
	ThermalEnthalpy float64 //thermal correction to Enthalpy
	ThermalGibbs    float64 //thermal correction to Gibbs Free Energy
	EnergyZPE       float64 //sum of electronic and zero-point energies
	EnergyThermal   float64 //sum of electronic and thermal energies
	Enthalpy        float64 //sum of electronic and thermal enthalpies
	GibbsFreeEnergy float64 //sum of electronic and thermal free energies
	Found           bool
}

//ExtractThermochemistry reads the thermochemistry block of a freq log.
func ExtractThermochemistry(path string) (*Thermochemistry, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	th := &Thermochemistry{}
	//field index of the value differs per line, Gaussian pads these
	//labels unevenly
	grab := func(line string, idx int, dst *float64) {
		fields := strings.Fields(line)
		if idx < len(fields) {
			if v, err := strconv.ParseFloat(fields[idx], 64); err == nil {
				*dst = v
				th.Found = true
			}
		}
	}
	for _, line := range lines {
		switch {
		case strings.Contains(line, "Zero-point correction="):
			grab(line, 2, &th.ZeroPoint)
		case strings.Contains(line, "Thermal correction to Energy="):
			grab(line, 4, &th.ThermalEnergy)
		case strings.Contains(line, "Thermal correction to Enthalpy="):
			grab(line, 4, &th.ThermalEnthalpy)
		case strings.Contains(line, "Thermal correction to Gibbs Free Energy="):
			grab(line, 6, &th.ThermalGibbs)
		case strings.Contains(line, "Sum of electronic and zero-point Energies="):
			grab(line, 6, &th.EnergyZPE)
		case strings.Contains(line, "Sum of electronic and thermal Energies="):
			grab(line, 6, &th.EnergyThermal)
		case strings.Contains(line, "Sum of electronic and thermal Enthalpies="):
			grab(line, 6, &th.Enthalpy)
		case strings.Contains(line, "Sum of electronic and thermal Free Energies="):
			grab(line, 7, &th.GibbsFreeEnergy)
		}
	}
	return th, nil
}

//ErrorMessages collects error and warning lines from the log, verbatim.
func ErrorMessages(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	var msgs []string
	for _, line := range lines {
		if strings.Contains(line, "Error") || strings.Contains(line, "Warning") {
			msgs = append(msgs, strings.TrimSpace(line))
		}
	}
	return msgs, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

//afterEquals parses the float after the last "=" of the line, the form
//Gaussian uses for its counterpoise summary lines.
func afterEquals(line string) (float64, bool) {
	eq := strings.LastIndexByte(line, '=')
	if eq < 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(line[eq+1:]), 64)
	return v, err == nil
}

//scfEnergy picks the value after "=" in an "SCF Done:" line, which has
//trailing fields ("A.U. after N cycles") behind the number.
func scfEnergy(line string) (float64, bool) {
	fields := strings.Fields(line)
	for i, f := range fields {
		if f == "=" && i+1 < len(fields) {
			v, err := strconv.ParseFloat(fields[i+1], 64)
			return v, err == nil
		}
	}
	return 0, false
}
