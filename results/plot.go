/*
 * plot.go, part of MEPS.
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
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//PlotEnergyHistory draws the corrected interaction energy against the
//optimization step and saves the figure to path (format taken from the
//extension, .png or .svg).
func PlotEnergyHistory(cp *CPResult, title, path string) error {
	if len(cp.Steps) == 0 {
		return fmt.Errorf("results: no counterpoise steps to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = 3 * vg.Millimeter
	p.X.Label.Text = "optimization step"
	p.Y.Label.Text = "interaction energy (kcal/mol)"
	p.Add(plotter.NewGrid())
	pts := make(plotter.XYs, len(cp.Steps))
	for i, st := range cp.Steps {
		pts[i].X = float64(i + 1)
		pts[i].Y = st.CorrEnergy
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	p.Add(line, points)
	return p.Save(14*vg.Centimeter, 10*vg.Centimeter, path)
}

//PlotSCFHistory draws the SCF energy trace of an optimization, for
//eyeballing convergence trouble.
func PlotSCFHistory(energies []float64, title, path string) error {
	if len(energies) == 0 {
		return fmt.Errorf("results: no SCF energies to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "SCF evaluation"
	p.Y.Label.Text = "energy (Hartree)"
	p.Add(plotter.NewGrid())
	pts := make(plotter.XYs, len(energies))
	for i, e := range energies {
		pts[i].X = float64(i + 1)
		pts[i].Y = e
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)
	return p.Save(14*vg.Centimeter, 10*vg.Centimeter, path)
}
