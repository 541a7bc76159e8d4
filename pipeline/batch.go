/*
 * batch.go, part of MEPS.
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

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

//structure file extensions recognized during discovery
var discoverExts = map[string]bool{
	".xyz": true, ".pdb": true, ".mol": true, ".sdf": true, ".mol2": true,
}

//Discover lists the structure files directly under dir, sorted by
//name, so pair enumeration is deterministic across runs.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if discoverExts[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

//Pair is one A-B combination of the batch.
type Pair struct {
	FileA, FileB string
	Name         string //<stemA>_<stemB>
}

//EmptyInputError reports a batch directory with no structure files,
//which would silently produce an empty batch.
type EmptyInputError struct {
	Dir string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("pipeline: no structure files in %s", e.Dir)
}

//EnumeratePairs builds the Cartesian product of the files in the two
//directories, A-major.
func EnumeratePairs(dirA, dirB string) ([]Pair, error) {
	filesA, err := Discover(dirA)
	if err != nil {
		return nil, err
	}
	if len(filesA) == 0 {
		return nil, &EmptyInputError{Dir: dirA}
	}
	filesB, err := Discover(dirB)
	if err != nil {
		return nil, err
	}
	if len(filesB) == 0 {
		return nil, &EmptyInputError{Dir: dirB}
	}
	pairs := make([]Pair, 0, len(filesA)*len(filesB))
	for _, fa := range filesA {
		for _, fb := range filesB {
			pairs = append(pairs, Pair{
				FileA: fa,
				FileB: fb,
				Name:  baseName(fa) + "_" + baseName(fb),
			})
		}
	}
	return pairs, nil
}

//Factory builds a pipeline rooted in the per-pair work directory.
//Batch runs get one pipeline per pair so their scratch files never
//collide.
type Factory func(workDir string) (*Pipeline, error)

//Batch runs the calculation over every pair with a bounded number of
//concurrent jobs.
type Batch struct {
	OutputDir   string
	NProcPerJob int //cores each Gaussian job uses, sizes the pool
	MaxParallel int //override for the worker count, 0 means derive
	ArchiveLogs bool

	Factory Factory
	Logger  *zap.Logger
}

//PairResult is the outcome of one pair within a batch.
type PairResult struct {
	Pair    string  `json:"pair"`
	OK      bool    `json:"ok"`
	Error   string  `json:"error,omitempty"`
	Corr    float64 `json:"corrected_kcal_mol,omitempty"`
	Band    string  `json:"band,omitempty"`
	Seconds float64 `json:"seconds"`
}

//Summary of a whole batch run.
type Summary struct {
	Timestamp string       `json:"timestamp"`
	Workers   int          `json:"workers"`
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Results   []PairResult `json:"results"`
}

//Workers returns the number of simultaneous pairs: the host CPU count
//divided by the cores one Gaussian job takes, floored at 1.
func (B *Batch) Workers() int {
	if B.MaxParallel > 0 {
		return B.MaxParallel
	}
	np := B.NProcPerJob
	if np < 1 {
		np = 1
	}
	w := runtime.NumCPU() / np
	if w < 1 {
		w = 1
	}
	return w
}

//RunAll executes every pair, at most Workers at a time. One pair
//failing, or even panicking, never takes the batch down: the failure
//is recorded in the summary and the remaining pairs proceed. Results
//arrive in input order regardless of scheduling. Cancelling ctx stops
//unstarted pairs; running ones see the cancellation through their
//pipeline.
func (B *Batch) RunAll(ctx context.Context, pairs []Pair) (*Summary, error) {
	if B.Factory == nil {
		return nil, fmt.Errorf("pipeline: batch needs a Factory")
	}
	log := B.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(B.OutputDir, 0755); err != nil {
		return nil, err
	}
	workers := B.Workers()
	log.Info("starting batch", zap.Int("pairs", len(pairs)), zap.Int("workers", workers))

	sem := make(chan struct{}, workers)
	out := make([]PairResult, len(pairs))
	var wg sync.WaitGroup
	for i, pair := range pairs {
		if ctx.Err() != nil {
			out[i] = PairResult{Pair: pair.Name, OK: false, Error: ctx.Err().Error()}
			continue
		}
		wg.Add(1)
		go func(i int, pair Pair) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			out[i] = B.runOne(ctx, pair, log)
		}(i, pair)
	}
	wg.Wait()

	s := &Summary{
		Timestamp: time.Now().Format(time.RFC3339),
		Workers:   workers,
		Total:     len(pairs),
		Results:   out,
	}
	for _, r := range out {
		if r.OK {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	log.Info("batch finished", zap.Int("succeeded", s.Succeeded), zap.Int("failed", s.Failed))
	if err := s.Write(filepath.Join(B.OutputDir, "batch_summary.json")); err != nil {
		return s, err
	}
	return s, nil
}

func (B *Batch) runOne(ctx context.Context, pair Pair, log *zap.Logger) (res PairResult) {
	start := time.Now()
	res.Pair = pair.Name
	defer func() {
		res.Seconds = time.Since(start).Seconds()
		if r := recover(); r != nil {
			res.OK = false
			res.Error = fmt.Sprintf("panic: %v", r)
			log.Error("pair panicked", zap.String("pair", pair.Name), zap.Any("panic", r))
		}
	}()
	workDir := filepath.Join(B.OutputDir, pair.Name)
	p, err := B.Factory(workDir)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	outcome, err := p.Run(ctx, pair.FileA, pair.FileB)
	if err != nil {
		res.Error = err.Error()
		log.Warn("pair failed", zap.String("pair", pair.Name), zap.Error(err))
		return res
	}
	res.OK = true
	res.Corr = outcome.Report.CP.CorrEnergy
	res.Band = outcome.Report.Band
	if err := outcome.Report.WriteJSON(filepath.Join(workDir, pair.Name+".json")); err != nil {
		log.Warn("could not write pair report", zap.String("pair", pair.Name), zap.Error(err))
	}
	if err := outcome.Report.WriteText(filepath.Join(workDir, pair.Name+".txt")); err != nil {
		log.Warn("could not write pair report", zap.String("pair", pair.Name), zap.Error(err))
	}
	if B.ArchiveLogs {
		if err := ArchiveLogs(workDir); err != nil {
			log.Warn("log archiving failed", zap.String("pair", pair.Name), zap.Error(err))
		}
	}
	return res
}

//Write saves the summary as indented JSON.
func (S *Summary) Write(path string) error {
	raw, err := json.MarshalIndent(S, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

//ArchiveLogs gzips every .log file under dir in place, replacing each
//with a .log.gz. The walk descends into the per-monomer directories a
//pipeline run leaves behind. Gaussian logs for large complexes run to
//hundreds of megabytes, and a batch keeps one per job.
func ArchiveLogs(dir string) error {
	return filepath.WalkDir(dir, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			return nil
		}
		if err := gzipFile(path); err != nil {
			return err
		}
		return os.Remove(path)
	})
}

func gzipFile(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer out.Close()
	zw := gzip.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
