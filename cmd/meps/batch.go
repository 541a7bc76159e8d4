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

package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhangshd/MEPS/dock"
	"github.com/zhangshd/MEPS/pipeline"
	"github.com/zhangshd/MEPS/qm"
)

func newBatchCommand(a *app) *cobra.Command {
	var (
		outDir      string
		useDocking  bool
		exhaust     int
		energyRange float64
		maxParallel int
		maxWait     time.Duration
		interval    time.Duration
		archive     bool
	)
	cmd := &cobra.Command{
		Use:   "batch <dirA> <dirB>",
		Short: "compute interaction energies for every A-B pair of two directories",
		Long: `batch enumerates the Cartesian product of the structure files in dirA and
dirB and runs the full pipeline for each pair, several pairs at a time.
The worker count is the host CPU count divided by --nproc unless
--max-jobs overrides it. One failing pair does not stop the batch; the
outcome of every pair lands in <out>/batch_summary.json.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := pipeline.EnumeratePairs(args[0], args[1])
			if err != nil {
				return &usageError{err: err}
			}
			engine, err := qm.NewGaussian(qm.Config{
				Root:  a.v.GetString("g16root"),
				Mem:   a.v.GetString("mem"),
				NProc: a.v.GetInt("nproc"),
			})
			if err != nil {
				return &usageError{err: err}
			}
			opts := pipeline.Options{
				Method:          a.v.GetString("method"),
				Basis:           a.v.GetString("basis"),
				Dispersion:      a.v.GetString("dispersion"),
				UseDocking:      useDocking,
				MonitorInterval: interval,
				MaxWait:         maxWait,
				Logger:          a.log,
			}
			b := &pipeline.Batch{
				OutputDir:   outDir,
				NProcPerJob: a.v.GetInt("nproc"),
				MaxParallel: maxParallel,
				ArchiveLogs: archive,
				Logger:      a.log,
				Factory: func(workDir string) (*pipeline.Pipeline, error) {
					o := opts
					o.WorkDir = workDir
					var docker pipeline.Docker
					if useDocking {
						v, err := dock.NewVina(dock.Config{
							WorkDir:        filepath.Join(workDir, "docking"),
							Exhaustiveness: exhaust,
							EnergyRange:    energyRange,
						})
						if err != nil {
							return nil, err
						}
						docker = v
					}
					return pipeline.New(engine, docker, o)
				},
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			summary, err := b.RunAll(ctx, pairs)
			if err != nil {
				return err
			}
			fmt.Printf("batch done: %d/%d succeeded\n", summary.Succeeded, summary.Total)
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d pairs failed, see %s",
					summary.Failed, summary.Total, filepath.Join(outDir, "batch_summary.json"))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&outDir, "out", "o", "meps_batch", "output directory")
	f.BoolVar(&useDocking, "dock", false, "use AutoDock Vina to place each ligand")
	f.IntVar(&exhaust, "exhaustiveness", 8, "Vina search effort")
	f.Float64Var(&energyRange, "energy-range", 3.0, "Vina energy window above the best pose, kcal/mol")
	f.IntVar(&maxParallel, "max-jobs", 0, "parallel pairs, 0 derives from CPU count and --nproc")
	f.DurationVar(&maxWait, "max-wait", 0, "per-job wall clock ceiling, 0 for none")
	f.DurationVar(&interval, "poll", 30*time.Second, "log polling interval")
	f.BoolVar(&archive, "gzip-logs", false, "gzip Gaussian logs after each pair")
	return cmd
}
