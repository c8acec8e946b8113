/*
 * ceplot.go, part of goCE.
 *
 * Copyright 2023 The goCE developers
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

//Package ceplot draws quick-look figures from sampling runs: enthalpy
//traces over Monte Carlo steps and formation-energy hull diagrams. The
//plots go to png files named after the plotname argument.
package ceplot

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/tsaari/goce/mc"
)

func basicPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

//EnergyTrace plots the enthalpy of each record against its Monte Carlo
//step, one line per temperature rung, and saves the figure as
//plotname.png.
func EnergyTrace(recs []mc.Record, title, plotname string) error {
	if len(recs) == 0 {
		return newConstraintError("ceplot.EnergyTrace: no records to plot")
	}
	p := basicPlot(title, "MC step", "Enthalpy (eV)")
	//consecutive records at one temperature form one rung
	var rungs []plotter.XYs
	var temps []float64
	for _, r := range recs {
		if len(temps) == 0 || temps[len(temps)-1] != r.Temperature {
			temps = append(temps, r.Temperature)
			rungs = append(rungs, nil)
		}
		last := len(rungs) - 1
		rungs[last] = append(rungs[last], plotter.XY{X: float64(r.Step), Y: r.Enthalpy})
	}
	for key, xys := range rungs {
		l, err := plotter.NewLine(xys)
		if err != nil {
			return errDecorate(wrapDrawError(err), "EnergyTrace")
		}
		r, g, b := colors(key, len(rungs))
		l.LineStyle.Color = color.RGBA{R: r, G: g, B: b, A: 255}
		l.LineStyle.Width = vg.Points(1)
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("%g K", temps[key]), l)
	}
	if err := p.Save(5*vg.Inch, 4*vg.Inch, fmt.Sprintf("%s.png", plotname)); err != nil {
		return wrapDrawError(err)
	}
	return nil
}

//Hull plots every (x, y) point as a scatter, draws the lower hull
//through the vertices in hull (as returned by cestat.LowerHull) and
//marks the vertices. The figure is saved as plotname.png.
func Hull(x, y []float64, hull []int, title, plotname string) error {
	if len(x) != len(y) {
		return newConstraintError(fmt.Sprintf("ceplot.Hull: %d abscissae against %d ordinates", len(x), len(y)))
	}
	if len(x) == 0 {
		return newConstraintError("ceplot.Hull: no points to plot")
	}
	p := basicPlot(title, "Composition", "Energy (eV/site)")
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return errDecorate(wrapDrawError(err), "Hull")
	}
	s.GlyphStyle.Color = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	p.Add(s)
	p.Legend.Add("sampled", s)
	if len(hull) > 0 {
		hxy := make(plotter.XYs, 0, len(hull))
		for _, i := range hull {
			if i < 0 || i >= len(x) {
				return newConstraintError(fmt.Sprintf("ceplot.Hull: hull index %d outside the %d points", i, len(x)))
			}
			hxy = append(hxy, plotter.XY{X: x[i], Y: y[i]})
		}
		l, err := plotter.NewLine(hxy)
		if err != nil {
			return errDecorate(wrapDrawError(err), "Hull")
		}
		l.LineStyle.Color = color.RGBA{R: 178, G: 34, B: 34, A: 255}
		l.LineStyle.Width = vg.Points(1.5)
		v, err := plotter.NewScatter(hxy)
		if err != nil {
			return errDecorate(wrapDrawError(err), "Hull")
		}
		v.GlyphStyle.Shape = draw.PyramidGlyph{}
		v.GlyphStyle.Color = color.RGBA{R: 178, G: 34, B: 34, A: 255}
		v.GlyphStyle.Radius = vg.Points(3)
		p.Add(l, v)
		p.Legend.Add("hull", l)
	}
	p.Legend.Top = true
	if err := p.Save(5*vg.Inch, 4*vg.Inch, fmt.Sprintf("%s.png", plotname)); err != nil {
		return wrapDrawError(err)
	}
	return nil
}

//Histogram draws the binned series returned by cestat.Histogram and
//saves the figure as plotname.png.
func Histogram(dividers, counts []float64, title, plotname string) error {
	if len(dividers) != len(counts)+1 {
		return newConstraintError(fmt.Sprintf("ceplot.Histogram: %d dividers cannot bound %d bins", len(dividers), len(counts)))
	}
	if len(counts) == 0 {
		return newConstraintError("ceplot.Histogram: no bins to plot")
	}
	p := basicPlot(title, "Enthalpy (eV)", "Samples")
	//step outline through the bin tops
	xys := make(plotter.XYs, 0, 2*len(counts)+2)
	xys = append(xys, plotter.XY{X: dividers[0], Y: 0})
	for i, c := range counts {
		xys = append(xys, plotter.XY{X: dividers[i], Y: c})
		xys = append(xys, plotter.XY{X: dividers[i+1], Y: c})
	}
	xys = append(xys, plotter.XY{X: dividers[len(dividers)-1], Y: 0})
	l, err := plotter.NewLine(xys)
	if err != nil {
		return errDecorate(wrapDrawError(err), "Histogram")
	}
	r, g, b := colors(0, 1)
	l.LineStyle.Color = color.RGBA{R: r, G: g, B: b, A: 255}
	l.LineStyle.Width = vg.Points(1)
	p.Add(l)
	if err := p.Save(5*vg.Inch, 4*vg.Inch, fmt.Sprintf("%s.png", plotname)); err != nil {
		return wrapDrawError(err)
	}
	return nil
}
