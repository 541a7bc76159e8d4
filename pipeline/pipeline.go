/*
 * pipeline.go, part of MEPS.
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

//Package pipeline chains monomer optimization, optional docking,
//complex assembly and counterpoise optimization into one interaction
//energy calculation, and runs batches of them.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	meps "github.com/zhangshd/MEPS"
	"github.com/zhangshd/MEPS/dock"
	"github.com/zhangshd/MEPS/qm"
	"github.com/zhangshd/MEPS/results"
)

//Stage names a step of the calculation, for logging and error
//reporting.
type Stage string

const (
	StageRead            Stage = "read_inputs"
	StageOptimizeMonomer Stage = "optimize_monomer"
	StageDock            Stage = "dock"
	StageAssemble        Stage = "assemble_complex"
	StageOptimizeComplex Stage = "optimize_complex"
	StageExtract         Stage = "extract_results"
)

//StageError wraps a failure with the stage it happened in, so a batch
//summary can say where each pair died.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

//Engine is the slice of the Gaussian driver the pipeline needs.
//*qm.Gaussian implements it; tests substitute a stub.
type Engine interface {
	Run(ctx context.Context, input string, wait bool) error
	Monitor(ctx context.Context, output string, interval, maxWait time.Duration) error
	Mem() string
	NProc() int
}

//Docker produces a docked complex from two monomers. *dock.Vina
//implements it.
type Docker interface {
	DockPair(ctx context.Context, a, b *meps.Structure) (*meps.Structure, *dock.Result, []meps.Contact, error)
}

//Options configure one interaction-energy calculation. Method and
//Basis are mandatory.
type Options struct {
	WorkDir    string
	Method     string
	Basis      string
	Dispersion string

	UseDocking bool

	ChargeA, MultA int
	ChargeB, MultB int

	MonitorInterval time.Duration
	MaxWait         time.Duration //ceiling per Gaussian job, 0 means none

	Bands []results.Band

	Logger *zap.Logger
}

//Pipeline runs the full calculation for one molecule pair.
type Pipeline struct {
	engine Engine
	docker Docker
	opt    Options
	log    *zap.Logger
}

//New builds a pipeline. docker may be nil when Options.UseDocking is
//false.
func New(engine Engine, docker Docker, opt Options) (*Pipeline, error) {
	if engine == nil {
		return nil, fmt.Errorf("pipeline: an Engine is required")
	}
	if opt.Method == "" || opt.Basis == "" {
		return nil, fmt.Errorf("pipeline: method and basis are required")
	}
	if opt.UseDocking && docker == nil {
		return nil, fmt.Errorf("pipeline: docking requested but no Docker given")
	}
	if opt.WorkDir == "" {
		opt.WorkDir = "."
	}
	if opt.MultA == 0 {
		opt.MultA = 1
	}
	if opt.MultB == 0 {
		opt.MultB = 1
	}
	if opt.MonitorInterval <= 0 {
		opt.MonitorInterval = 30 * time.Second
	}
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(opt.WorkDir, 0755); err != nil {
		return nil, err
	}
	return &Pipeline{engine: engine, docker: docker, opt: opt, log: log}, nil
}

//Outcome of one pair calculation.
type Outcome struct {
	Report     *results.Report
	ComplexLog string
	Contacts   []meps.Contact //sub-0.5 Angstrom pairs found after assembly
	Docking    *dock.Result   //nil when docking was skipped
}

//Run executes the whole calculation for the two input structure files.
//There is no automatic retry; a failed Gaussian job surfaces as a
//*StageError wrapping the termination diagnostics, and the operator
//decides what to adjust.
func (P *Pipeline) Run(ctx context.Context, fileA, fileB string) (*Outcome, error) {
	nameA := baseName(fileA)
	nameB := baseName(fileB)
	P.log.Info("reading inputs", zap.String("a", fileA), zap.String("b", fileB))
	a, err := meps.ReadFile(fileA)
	if err != nil {
		return nil, &StageError{Stage: StageRead, Err: err}
	}
	b, err := meps.ReadFile(fileB)
	if err != nil {
		return nil, &StageError{Stage: StageRead, Err: err}
	}
	a.SetChargeMultiplicity(P.opt.ChargeA, P.opt.MultA)
	b.SetChargeMultiplicity(P.opt.ChargeB, P.opt.MultB)

	//monomer optimizations are independent, run them together
	var wg sync.WaitGroup
	var optA, optB *meps.Structure
	var errA, errB error
	wg.Add(2)
	go func() {
		defer wg.Done()
		optA, errA = P.optimizeMonomer(ctx, "a", nameA, a)
	}()
	go func() {
		defer wg.Done()
		optB, errB = P.optimizeMonomer(ctx, "b", nameB, b)
	}()
	wg.Wait()
	if errA != nil {
		return nil, errA
	}
	if errB != nil {
		return nil, errB
	}

	out := &Outcome{}
	var complexStructure *meps.Structure
	if P.opt.UseDocking {
		P.log.Info("docking", zap.String("receptor", nameA), zap.String("ligand", nameB))
		cs, res, contacts, err := P.docker.DockPair(ctx, optA, optB)
		if err != nil {
			return nil, &StageError{Stage: StageDock, Err: err}
		}
		complexStructure = cs
		out.Docking = res
		out.Contacts = contacts
		P.log.Info("docking done", zap.Float64("best_affinity", res.BestAffinity),
			zap.Int("modes", len(res.Modes)))
	} else {
		P.log.Info("skipping docking, merging input geometries")
		complexStructure = optA.Merge(optB)
		_, out.Contacts = complexStructure.CheckAtomDistances(0.5)
	}
	for _, c := range out.Contacts {
		P.log.Warn("close contact in assembled complex",
			zap.String("a", complexStructure.AtomInfo(c.I)),
			zap.String("b", complexStructure.AtomInfo(c.J)),
			zap.Float64("distance", c.Distance))
	}

	pairName := nameA + "_" + nameB
	report, complexLog, err := P.optimizeComplex(ctx, pairName, complexStructure, optA.Len())
	if err != nil {
		return nil, err
	}
	out.Report = report
	out.ComplexLog = complexLog
	return out, nil
}

//optimizeMonomer writes the input, runs g16 to completion and reads
//the converged geometry back from the log, so the complex is built
//from relaxed monomers. Each monomer gets its own directory under
//monomers/, keyed by role and name; the two jobs run concurrently and
//a shared stem (the same file name on both sides of a batch) must not
//make them clobber each other's scratch files.
func (P *Pipeline) optimizeMonomer(ctx context.Context, role, name string, s *meps.Structure) (*meps.Structure, error) {
	dir := filepath.Join(P.opt.WorkDir, "monomers", role+"_"+name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &StageError{Stage: StageOptimizeMonomer, Err: err}
	}
	input := filepath.Join(dir, name+"_opt.gjf")
	job := qm.Job{
		Name:       name + "_opt",
		Method:     P.opt.Method,
		Basis:      P.opt.Basis,
		Dispersion: P.opt.Dispersion,
		Freq:       true,
		Mem:        P.engine.Mem(),
		NProc:      P.engine.NProc(),
	}
	if err := qm.WriteOptInput(input, job, s); err != nil {
		return nil, &StageError{Stage: StageOptimizeMonomer, Err: err}
	}
	P.log.Info("optimizing monomer", zap.String("name", name), zap.Int("atoms", s.Len()))
	logPath := strings.TrimSuffix(input, ".gjf") + ".log"
	if err := P.runAndMonitor(ctx, input, logPath); err != nil {
		return nil, &StageError{Stage: StageOptimizeMonomer, Err: err}
	}
	optimized, err := meps.ReadFile(logPath)
	if err != nil {
		return nil, &StageError{Stage: StageOptimizeMonomer, Err: err}
	}
	optimized.SetChargeMultiplicity(s.Charge, s.Multiplicity)
	return optimized, nil
}

//optimizeComplex runs the counterpoise job and extracts the report.
//The fragment boundary is the atom count of monomer A; Merge placed
//A's atoms first, and that invariant is what keeps the counterpoise
//fragments honest.
func (P *Pipeline) optimizeComplex(ctx context.Context, pairName string, s *meps.Structure, boundary int) (*results.Report, string, error) {
	input := filepath.Join(P.opt.WorkDir, pairName+"_complex.gjf")
	job := qm.Job{
		Name:       pairName + "_complex",
		Method:     P.opt.Method,
		Basis:      P.opt.Basis,
		Dispersion: P.opt.Dispersion,
		Mem:        P.engine.Mem(),
		NProc:      P.engine.NProc(),
	}
	err := qm.WriteCounterpoiseInput(input, job, s, boundary,
		P.opt.ChargeA, P.opt.MultA, P.opt.ChargeB, P.opt.MultB)
	if err != nil {
		return nil, "", &StageError{Stage: StageAssemble, Err: err}
	}
	P.log.Info("optimizing complex", zap.String("pair", pairName),
		zap.Int("atoms", s.Len()), zap.Int("boundary", boundary))
	logPath := strings.TrimSuffix(input, ".gjf") + ".log"
	if err := P.runAndMonitor(ctx, input, logPath); err != nil {
		return nil, "", &StageError{Stage: StageOptimizeComplex, Err: err}
	}
	report, err := results.Collect(pairName, logPath, P.opt.Bands)
	if err != nil {
		return nil, "", &StageError{Stage: StageExtract, Err: err}
	}
	P.log.Info("interaction energy extracted",
		zap.Float64("corrected_kcal_mol", report.CP.CorrEnergy),
		zap.String("band", report.Band),
		zap.Bool("converged", report.CP.Converged))
	return report, logPath, nil
}

func (P *Pipeline) runAndMonitor(ctx context.Context, input, logPath string) error {
	if err := P.engine.Run(ctx, input, false); err != nil {
		return err
	}
	return P.engine.Monitor(ctx, logPath, P.opt.MonitorInterval, P.opt.MaxWait)
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
