/*
 * report.go, part of MEPS.
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

package results

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

//HartreeToKcal converts Hartree to kcal/mol.
const HartreeToKcal = 627.509

//Band classifies an interaction energy by magnitude. Thresholds are in
//kcal/mol and compared against the corrected complexation energy.
type Band struct {
	Name string
	Max  float64 //interaction counts as this band while E < Max
}

//DefaultBands is the conventional reading of BSSE-corrected
//interaction energies for small-molecule complexes. Callers with
//domain-specific conventions pass their own bands.
var DefaultBands = []Band{
	{Name: "strong", Max: -10.0},
	{Name: "moderate", Max: -5.0},
	{Name: "weak", Max: -1.0},
	{Name: "negligible", Max: 0.0},
}

//Classify returns the band name for a corrected interaction energy. A
//positive energy means the complex is unbound.
func Classify(corrKcal float64, bands []Band) string {
	if len(bands) == 0 {
		bands = DefaultBands
	}
	for _, b := range bands {
		if corrKcal < b.Max {
			return b.Name
		}
	}
	return "unbound"
}

//Report bundles everything extracted from one complex log.
type Report struct {
	Name       string      `json:"name"`
	CP         *CPResult   `json:"counterpoise"`
	Opt        *OptSummary `json:"optimization"`
	Errors     []string    `json:"errors,omitempty"`
	Band       string      `json:"band"`
	BSSEInKcal float64     `json:"bsse_kcal_mol"`
}

//Collect extracts a full report from a counterpoise optimization log.
func Collect(name, logPath string, bands []Band) (*Report, error) {
	cp, err := ExtractCounterpoise(logPath)
	if err != nil {
		return nil, err
	}
	opt, err := Summarize(logPath)
	if err != nil {
		return nil, err
	}
	errs, err := ErrorMessages(logPath)
	if err != nil {
		return nil, err
	}
	return &Report{
		Name:       name,
		CP:         cp,
		Opt:        opt,
		Errors:     errs,
		Band:       Classify(cp.CorrEnergy, bands),
		BSSEInKcal: cp.BSSE * HartreeToKcal,
	}, nil
}

//WriteJSON saves the report for machine consumption.
func (r *Report) WriteJSON(path string) error {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

//WriteText renders a human-readable summary in the layout the
//interactive runs print.
func (r *Report) WriteText(path string) error {
	var b strings.Builder
	rule := strings.Repeat("=", 80)
	fmt.Fprintf(&b, "%s\nInteraction energy report: %s\n%s\n\n", rule, r.Name, rule)
	fmt.Fprintf(&b, "Optimization\n")
	fmt.Fprintf(&b, "  converged:       %v\n", r.Opt.Converged)
	fmt.Fprintf(&b, "  steps:           %d\n", r.Opt.Steps)
	if r.Opt.ImaginaryFreq > 0 {
		fmt.Fprintf(&b, "  imaginary freqs: %d\n", r.Opt.ImaginaryFreq)
	} else {
		fmt.Fprintf(&b, "  imaginary freqs: none\n")
	}
	if r.Opt.HasEnergy {
		fmt.Fprintf(&b, "  final energy:    %.8f Hartree\n", r.Opt.FinalEnergy)
	}
	b.WriteString("\n")
	if len(r.CP.Steps) > 0 {
		fmt.Fprintf(&b, "Interaction energy\n")
		fmt.Fprintf(&b, "  raw:             %.2f kcal/mol\n", r.CP.RawEnergy)
		fmt.Fprintf(&b, "  BSSE corrected:  %.2f kcal/mol (%s)\n", r.CP.CorrEnergy, r.Band)
		fmt.Fprintf(&b, "  BSSE:            %.8f Hartree (%.2f kcal/mol)\n", r.CP.BSSE, r.BSSEInKcal)
		fmt.Fprintf(&b, "  CP energy:       %.8f Hartree\n\n", r.CP.CPEnergy)
		fmt.Fprintf(&b, "Steps (%d)\n", len(r.CP.Steps))
		fmt.Fprintf(&b, "  %4s  %16s  %16s  %12s\n", "step", "CP (Hartree)", "BSSE (Hartree)", "E (kcal/mol)")
		for i, st := range r.CP.Steps {
			fmt.Fprintf(&b, "  %4d  %16.8f  %16.8f  %12.2f\n", i+1, st.CPEnergy, st.BSSE, st.CorrEnergy)
		}
		b.WriteString("\n")
	}
	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "Diagnostics\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
		b.WriteString("\n")
	}
	b.WriteString(rule + "\n")
	return os.WriteFile(path, []byte(b.String()), 0644)
}
