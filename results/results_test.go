/*
 * results_test.go, part of MEPS.
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
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractCounterpoiseLastStepWins(t *testing.T) {
	cp, err := ExtractCounterpoise("test/cp_opt.log")
	if err != nil {
		t.Fatal(err)
	}
	if len(cp.Steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(cp.Steps))
	}
	if !cp.Converged {
		t.Error("normal termination not detected")
	}
	if math.Abs(cp.CPEnergy-(-116.423955201848)) > 1e-12 {
		t.Errorf("CP energy %f is not from the last step", cp.CPEnergy)
	}
	if math.Abs(cp.BSSE-0.001987120010) > 1e-12 {
		t.Errorf("BSSE %f is not from the last step", cp.BSSE)
	}
	if cp.RawEnergy != -4.84 || cp.CorrEnergy != -3.60 {
		t.Errorf("complexation energies %f/%f, want -4.84/-3.60", cp.RawEnergy, cp.CorrEnergy)
	}
	//the first step must be preserved in the history
	if cp.Steps[0].CorrEnergy != -2.29 {
		t.Errorf("step history lost: %+v", cp.Steps[0])
	}
}

func TestExtractCounterpoiseNoData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.log")
	if err := os.WriteFile(path, []byte(" SCF Done:  E(RB3LYP) =  -76.4  A.U. after 8 cycles\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cp, err := ExtractCounterpoise(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cp.Steps) != 0 {
		t.Errorf("a log without counterpoise blocks must yield no steps, got %d", len(cp.Steps))
	}
}

func TestSummarize(t *testing.T) {
	s, err := Summarize("test/cp_opt.log")
	if err != nil {
		t.Fatal(err)
	}
	if !s.Converged {
		t.Error("convergence not detected")
	}
	if s.Steps != 2 {
		t.Errorf("steps %d, want 2", s.Steps)
	}
	if !s.HasEnergy || math.Abs(s.FinalEnergy-(-116.4231)) > 1e-9 {
		t.Errorf("final energy %f, want -116.4231", s.FinalEnergy)
	}
	if s.ImaginaryFreq != 0 {
		t.Errorf("phantom imaginary frequencies: %d", s.ImaginaryFreq)
	}
}

func TestImaginaryFrequencies(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "freq.log")
	content := " Frequencies --   -45.1234   112.0000   250.9000\n" +
		" Frequencies --   300.0000   410.0000   520.0000\n" +
		" Normal termination of Gaussian 16.\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := Summarize(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.ImaginaryFreq != 1 {
		t.Errorf("imaginary count %d, want 1", s.ImaginaryFreq)
	}
}

func TestExtractThermochemistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thermo.log")
	content := " Zero-point correction=                           0.021388 (Hartree/Particle)\n" +
		" Thermal correction to Energy=                    0.024227\n" +
		" Thermal correction to Enthalpy=                  0.025171\n" +
		" Thermal correction to Gibbs Free Energy=         0.002794\n" +
		" Sum of electronic and zero-point Energies=            -76.402004\n" +
		" Sum of electronic and thermal Energies=               -76.399165\n" +
		" Sum of electronic and thermal Enthalpies=             -76.398221\n" +
		" Sum of electronic and thermal Free Energies=          -76.420598\n" +
		" Normal termination of Gaussian 16.\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	th, err := ExtractThermochemistry(path)
	if err != nil {
		t.Fatal(err)
	}
	if !th.Found {
		t.Fatal("thermochemistry block not detected")
	}
	if math.Abs(th.ZeroPoint-0.021388) > 1e-12 {
		t.Errorf("zero-point correction %f, want 0.021388", th.ZeroPoint)
	}
	if math.Abs(th.ThermalGibbs-0.002794) > 1e-12 {
		t.Errorf("Gibbs correction %f, want 0.002794", th.ThermalGibbs)
	}
	if math.Abs(th.GibbsFreeEnergy-(-76.420598)) > 1e-12 {
		t.Errorf("free energy %f, want -76.420598", th.GibbsFreeEnergy)
	}
	if math.Abs(th.Enthalpy-(-76.398221)) > 1e-12 {
		t.Errorf("enthalpy %f, want -76.398221", th.Enthalpy)
	}
}

func TestExtractThermochemistryAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "noth.log")
	if err := os.WriteFile(path, []byte(" SCF Done:  E(RB3LYP) =  -76.4  A.U. after 8 cycles\n"), 0644); err != nil {
		t.Fatal(err)
	}
	th, err := ExtractThermochemistry(path)
	if err != nil {
		t.Fatal(err)
	}
	if th.Found {
		t.Error("thermochemistry reported for a log without it")
	}
}

func TestSCFEnergies(t *testing.T) {
	energies, err := SCFEnergies("test/cp_opt.log")
	if err != nil {
		t.Fatal(err)
	}
	if len(energies) != 2 {
		t.Fatalf("got %d energies, want 2", len(energies))
	}
	if energies[1] >= energies[0] {
		t.Errorf("optimization energies should descend: %v", energies)
	}
	e, ok, err := MonomerEnergy("test/cp_opt.log")
	if err != nil || !ok {
		t.Fatal(err)
	}
	if e != energies[1] {
		t.Errorf("monomer energy %f is not the last SCF energy %f", e, energies[1])
	}
}

func TestClassify(t *testing.T) {
	cases := map[float64]string{
		-15.0: "strong",
		-7.0:  "moderate",
		-3.0:  "weak",
		-0.5:  "negligible",
		1.2:   "unbound",
	}
	for e, want := range cases {
		if got := Classify(e, nil); got != want {
			t.Errorf("Classify(%f) = %q, want %q", e, got, want)
		}
	}
	custom := []Band{{Name: "tight", Max: -20}}
	if got := Classify(-25, custom); got != "tight" {
		t.Errorf("custom bands ignored: %q", got)
	}
}

func TestCollectAndWrite(t *testing.T) {
	r, err := Collect("water_methane", "test/cp_opt.log", nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Band != "weak" {
		t.Errorf("band %q for -3.60 kcal/mol, want weak", r.Band)
	}
	if math.Abs(r.BSSEInKcal-0.001987120010*HartreeToKcal) > 1e-9 {
		t.Errorf("BSSE conversion wrong: %f", r.BSSEInKcal)
	}
	dir := t.TempDir()
	txt := filepath.Join(dir, "r.txt")
	if err := r.WriteText(txt); err != nil {
		t.Fatal(err)
	}
	raw, _ := os.ReadFile(txt)
	text := string(raw)
	for _, want := range []string{"BSSE corrected:  -3.60", "weak", "Steps (2)"} {
		if !strings.Contains(text, want) {
			t.Errorf("text report missing %q:\n%s", want, text)
		}
	}
	jsonPath := filepath.Join(dir, "r.json")
	if err := r.WriteJSON(jsonPath); err != nil {
		t.Fatal(err)
	}
	raw, _ = os.ReadFile(jsonPath)
	if !strings.Contains(string(raw), "\"bsse_kcal_mol\"") {
		t.Error("json report missing bsse field")
	}
}

func TestPlotEnergyHistory(t *testing.T) {
	cp, err := ExtractCounterpoise("test/cp_opt.log")
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "history.png")
	if err := PlotEnergyHistory(cp, "water_methane", path); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Error("plot file not written")
	}
	if err := PlotEnergyHistory(&CPResult{}, "empty", path); err == nil {
		t.Error("plotting an empty history must fail")
	}
}
