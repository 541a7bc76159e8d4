/*
 * vina.go, part of MEPS.
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

//Package dock wraps AutoDock Vina and Open Babel to produce docked
//two-molecule complexes whose geometry is ready for quantum-chemistry
//input generation.
package dock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	meps "github.com/zhangshd/MEPS"
)

//Config for a Vina docking handle. Empty command names default to the
//bare binaries resolved through PATH.
type Config struct {
	VinaCmd   string
	ObabelCmd string
	WorkDir   string //scratch directory for pdbqt intermediates

	Exhaustiveness int     //search effort, Vina default is 8
	NumModes       int     //poses to generate
	EnergyRange    float64 //kcal/mol window above the best pose, Vina default is 3
	Padding        float64 //search-box padding in Angstrom per side
}

//Vina docks a ligand against a receptor. Build one with NewVina.
type Vina struct {
	vina   string
	obabel string
	wd     string
	exh    int
	modes  int
	erange float64
	pad    float64
}

//Mode is one docked pose from the Vina results table. Mode numbers are
//1-based, as Vina prints them. The RMSD columns are distances to the
//best pose, lower and upper bound, and are zero for the first mode.
type Mode struct {
	Mode     int
	Affinity float64 //kcal/mol
	RMSDLb   float64 //Angstrom
	RMSDUb   float64 //Angstrom
}

//Result of a docking run.
type Result struct {
	Modes        []Mode
	BestAffinity float64 //affinity of the first mode
	OutputPDBQT  string
	Clashes      []meps.Contact //atom pairs closer than the clash cutoff in the assembled complex
}

//DockingError wraps a failure of vina or obabel with the captured
//stderr, which is where both tools explain themselves.
type DockingError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *DockingError) Error() string {
	return fmt.Sprintf("dock: %s failed: %v: %s", e.Tool, e.Err, strings.TrimSpace(e.Stderr))
}

func (e *DockingError) Unwrap() error { return e.Err }

func NewVina(cfg Config) (*Vina, error) {
	v := &Vina{
		vina:   cfg.VinaCmd,
		obabel: cfg.ObabelCmd,
		wd:     cfg.WorkDir,
		exh:    cfg.Exhaustiveness,
		modes:  cfg.NumModes,
		erange: cfg.EnergyRange,
		pad:    cfg.Padding,
	}
	if v.vina == "" {
		v.vina = "vina"
	}
	if v.obabel == "" {
		v.obabel = "obabel"
	}
	if v.wd == "" {
		v.wd = "."
	}
	if v.exh <= 0 {
		v.exh = 8
	}
	if v.modes <= 0 {
		v.modes = 9
	}
	if v.erange <= 0 {
		v.erange = 3.0
	}
	if v.pad <= 0 {
		v.pad = 10.0
	}
	if err := os.MkdirAll(v.wd, 0755); err != nil {
		return nil, err
	}
	return v, nil
}

//PrepareReceptor converts a structure to rigid PDBQT via obabel. The
//-xr flag strips the torsion tree so the receptor stays fixed.
func (V *Vina) PrepareReceptor(ctx context.Context, s *meps.Structure, out string) error {
	pdb := strings.TrimSuffix(out, filepath.Ext(out)) + ".pdb"
	if err := meps.WriteFile(pdb, s); err != nil {
		return err
	}
	return V.runObabel(ctx, pdb, "-O", out, "-xr")
}

//PrepareLigand converts a structure to flexible PDBQT. Torsions are
//kept so Vina can sample conformers, Gasteiger charges are assigned and
//hydrogens completed.
func (V *Vina) PrepareLigand(ctx context.Context, s *meps.Structure, out string) error {
	pdb := strings.TrimSuffix(out, filepath.Ext(out)) + ".pdb"
	if err := meps.WriteFile(pdb, s); err != nil {
		return err
	}
	return V.runObabel(ctx, pdb, "-O", out, "--partialcharge", "gasteiger", "-h")
}

//Box is a Vina search box.
type Box struct {
	CX, CY, CZ float64 //center
	SX, SY, SZ float64 //size per axis
}

//SearchBox spans the merged bounding box of both molecules plus the
//configured padding on every side, so the ligand can reach any face of
//the receptor.
func (V *Vina) SearchBox(a, b *meps.Structure) Box {
	bb := a.Merge(b).Bounds()
	cx, cy, cz := bb.Center()
	sx, sy, sz := bb.Size()
	return Box{
		CX: cx, CY: cy, CZ: cz,
		SX: sx + 2*V.pad, SY: sy + 2*V.pad, SZ: sz + 2*V.pad,
	}
}

//Dock runs Vina on prepared PDBQT files and parses the results table
//from its stdout. The docked poses land in outPDBQT.
func (V *Vina) Dock(ctx context.Context, receptorPDBQT, ligandPDBQT, outPDBQT string, box Box) (*Result, error) {
	args := []string{
		"--receptor", receptorPDBQT,
		"--ligand", ligandPDBQT,
		"--out", outPDBQT,
		"--center_x", ftoa(box.CX), "--center_y", ftoa(box.CY), "--center_z", ftoa(box.CZ),
		"--size_x", ftoa(box.SX), "--size_y", ftoa(box.SY), "--size_z", ftoa(box.SZ),
		"--exhaustiveness", strconv.Itoa(V.exh),
		"--num_modes", strconv.Itoa(V.modes),
		"--energy_range", ftoa(V.erange),
	}
	command := exec.CommandContext(ctx, V.vina, args...)
	var stdout, stderr strings.Builder
	command.Stdout = &stdout
	command.Stderr = &stderr
	if err := command.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &DockingError{Tool: "vina", Stderr: stderr.String(), Err: err}
	}
	res, err := ParseVinaOutput(stdout.String())
	if err != nil {
		return nil, err
	}
	res.OutputPDBQT = outPDBQT
	return res, nil
}

//ParseVinaOutput reads the results table out of Vina's stdout. Mode
//rows are only accepted after the table header has been seen, and only
//when the leading token is a pure integer; Vina interleaves progress
//markers like "0%" and star gauges that would otherwise be mistaken
//for rows.
func ParseVinaOutput(output string) (*Result, error) {
	res := &Result{}
	inTable := false
	for _, line := range strings.Split(output, "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "mode |   affinity") || strings.Contains(lower, "kcal/mol") {
			inTable = true
			continue
		}
		if !inTable {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if strings.Contains(fields[0], "%") {
			continue
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		aff, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		m := Mode{Mode: n, Affinity: aff}
		if len(fields) >= 4 {
			m.RMSDLb, _ = strconv.ParseFloat(fields[2], 64)
			m.RMSDUb, _ = strconv.ParseFloat(fields[3], 64)
		}
		res.Modes = append(res.Modes, m)
	}
	if len(res.Modes) == 0 {
		return nil, fmt.Errorf("dock: no poses in vina output")
	}
	res.BestAffinity = res.Modes[0].Affinity
	return res, nil
}

//ExtractPose pulls one pose out of a multi-model docked PDBQT using
//obabel and reads it back as a structure. Hydrogens are not added; the
//pose carries only the heavy atoms Vina placed.
func (V *Vina) ExtractPose(ctx context.Context, dockedPDBQT string, mode int) (*meps.Structure, error) {
	out := filepath.Join(V.wd, fmt.Sprintf("pose_%d.pdb", mode))
	err := V.runObabel(ctx, dockedPDBQT, "-O", out,
		fmt.Sprintf("-f%d", mode), fmt.Sprintf("-l%d", mode))
	if err != nil {
		return nil, err
	}
	return meps.ReadFile(out)
}

//DockPair docks ligand b against receptor a and assembles the full
//complex. The docked pose has lost its hydrogens in the PDBQT round
//trip, so the original hydrogen-complete ligand is rigidly aligned
//onto the pose and that aligned copy is merged, keeping every atom and
//the original atom order within each fragment.
//
//Contacts closer than 0.5 Angstrom are returned with the result so the
//caller can warn before a doomed Gaussian job is submitted.
func (V *Vina) DockPair(ctx context.Context, a, b *meps.Structure) (*meps.Structure, *Result, []meps.Contact, error) {
	receptor := filepath.Join(V.wd, "receptor.pdbqt")
	ligand := filepath.Join(V.wd, "ligand.pdbqt")
	docked := filepath.Join(V.wd, "docked.pdbqt")
	if err := V.PrepareReceptor(ctx, a, receptor); err != nil {
		return nil, nil, nil, err
	}
	if err := V.PrepareLigand(ctx, b, ligand); err != nil {
		return nil, nil, nil, err
	}
	res, err := V.Dock(ctx, receptor, ligand, docked, V.SearchBox(a, b))
	if err != nil {
		return nil, nil, nil, err
	}
	pose, err := V.ExtractPose(ctx, docked, 1)
	if err != nil {
		return nil, nil, nil, err
	}
	aligned := b.Copy()
	if err := aligned.AlignTo(pose); err != nil {
		//a centroid-only placement is usable, anything else is not
		var degraded *meps.DegradedAlignmentError
		if !errors.As(err, &degraded) {
			return nil, nil, nil, fmt.Errorf("dock: placing ligand on pose: %w", err)
		}
	}
	complexStructure := a.Merge(aligned)
	_, contacts := complexStructure.CheckAtomDistances(0.5)
	res.Clashes = contacts
	return complexStructure, res, contacts, nil
}

func (V *Vina) runObabel(ctx context.Context, args ...string) error {
	command := exec.CommandContext(ctx, V.obabel, args...)
	var stderr strings.Builder
	command.Stderr = &stderr
	if err := command.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &DockingError{Tool: "obabel", Stderr: stderr.String(), Err: err}
	}
	return nil
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}
