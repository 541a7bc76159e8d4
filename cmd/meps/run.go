/*
 * run.go, part of MEPS.
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
	"go.uber.org/zap"

	"github.com/zhangshd/MEPS/dock"
	"github.com/zhangshd/MEPS/pipeline"
	"github.com/zhangshd/MEPS/qm"
	"github.com/zhangshd/MEPS/results"
)

func newRunCommand(a *app) *cobra.Command {
	var (
		workDir     string
		useDocking  bool
		exhaust     int
		energyRange float64
		chargeA     int
		chargeB     int
		multA       int
		multB       int
		maxWait     time.Duration
		interval    time.Duration
		plotPath    string
	)
	cmd := &cobra.Command{
		Use:   "run <moleculeA> <moleculeB>",
		Short: "compute the interaction energy of one molecule pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := qm.NewGaussian(qm.Config{
				Root:  a.v.GetString("g16root"),
				Mem:   a.v.GetString("mem"),
				NProc: a.v.GetInt("nproc"),
			})
			if err != nil {
				return &usageError{err: err}
			}
			var docker pipeline.Docker
			if useDocking {
				v, err := dock.NewVina(dock.Config{
					WorkDir:        filepath.Join(workDir, "docking"),
					Exhaustiveness: exhaust,
					EnergyRange:    energyRange,
				})
				if err != nil {
					return &usageError{err: err}
				}
				docker = v
			}
			p, err := pipeline.New(engine, docker, pipeline.Options{
				WorkDir:         workDir,
				Method:          a.v.GetString("method"),
				Basis:           a.v.GetString("basis"),
				Dispersion:      a.v.GetString("dispersion"),
				UseDocking:      useDocking,
				ChargeA:         chargeA,
				MultA:           multA,
				ChargeB:         chargeB,
				MultB:           multB,
				MonitorInterval: interval,
				MaxWait:         maxWait,
				Logger:          a.log,
			})
			if err != nil {
				return &usageError{err: err}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			out, err := p.Run(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("interaction energy: %.2f kcal/mol (%s), BSSE %.2f kcal/mol\n",
				out.Report.CP.CorrEnergy, out.Report.Band, out.Report.BSSEInKcal)
			if plotPath != "" {
				if err := results.PlotEnergyHistory(out.Report.CP, out.Report.Name, plotPath); err != nil {
					a.log.Warn("could not plot energy history", zap.Error(err))
				}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&workDir, "workdir", "w", "meps_work", "scratch and output directory")
	f.BoolVar(&useDocking, "dock", false, "use AutoDock Vina to place the ligand")
	f.IntVar(&exhaust, "exhaustiveness", 8, "Vina search effort")
	f.Float64Var(&energyRange, "energy-range", 3.0, "Vina energy window above the best pose, kcal/mol")
	f.IntVar(&chargeA, "charge-a", 0, "charge of molecule A")
	f.IntVar(&chargeB, "charge-b", 0, "charge of molecule B")
	f.IntVar(&multA, "mult-a", 1, "multiplicity of molecule A")
	f.IntVar(&multB, "mult-b", 1, "multiplicity of molecule B")
	f.DurationVar(&maxWait, "max-wait", 0, "per-job wall clock ceiling, 0 for none")
	f.DurationVar(&interval, "poll", 30*time.Second, "log polling interval")
	f.StringVar(&plotPath, "plot", "", "write an energy-history plot to this file")
	return cmd
}
