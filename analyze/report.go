/*
 * report.go, part of loopbench.
 *
 * Copyright 2016 The loopbench authors
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
 */

package analyze

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//HistogramBins is the bin count of the per-loop RMSD histograms.
const HistogramBins = 100

//Report renders the benchmark report into dir: a score-vs-RMSD scatter
//plot and an RMSD histogram per loop, plus a TSV summary table. Figures
//for different loops render concurrently.
func Report(b *Benchmark, dir string) error {
	sum, err := Summarize(b)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("analyze: report dir: %w", err)
	}

	var g errgroup.Group
	for _, l := range b.Loops {
		l := l
		g.Go(func() error {
			if err := scatterPlot(l, filepath.Join(dir, l.Tag+"_score_vs_rmsd.png")); err != nil {
				return err
			}
			if err := histogramPlot(l, filepath.Join(dir, l.Tag+"_rmsd_hist.png")); err != nil {
				return err
			}
			return writeHistogramTSV(l, filepath.Join(dir, l.Tag+"_rmsd_hist.tsv"))
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := writeBoxplotTSV(b, filepath.Join(dir, "boxplot.tsv")); err != nil {
		return err
	}
	return writeSummaryTSV(sum, b, filepath.Join(dir, "summary.tsv"))
}

//writeBoxplotTSV writes the Tukey box-and-whisker parameters of every
//loop's RMSD distribution, one row per loop.
func writeBoxplotTSV(b *Benchmark, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("analyze: boxplot: %w", err)
	}
	defer f.Close()

	fmt.Fprintln(f, "tag\tlower\tq1\tmedian\tq3\tupper\toutliers")
	for _, l := range b.Loops {
		tk, err := NewTukey(l.RMSDs())
		if err != nil {
			return fmt.Errorf("analyze: boxplot %s: %w", l.Tag, err)
		}
		fmt.Fprintf(f, "%s\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%d\n",
			l.Tag, tk.Lower, tk.Q1, tk.Median, tk.Q3, tk.Upper, len(tk.Outliers))
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("analyze: boxplot: %w", err)
	}
	return nil
}

//writeHistogramTSV writes the binned RMSD distribution behind a loop's
//histogram figure, one "bin_start count" row per bin.
func writeHistogramTSV(l *Loop, path string) error {
	bins := HistogramBins
	if len(l.Models) < bins {
		bins = len(l.Models)
	}
	h, err := NewHistogram(l.RMSDs(), bins)
	if err != nil {
		return fmt.Errorf("analyze: histogram data %s: %w", l.Tag, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("analyze: histogram data %s: %w", l.Tag, err)
	}
	defer f.Close()

	fmt.Fprintln(f, "bin_start\tcount")
	for i, c := range h.Counts {
		fmt.Fprintf(f, "%.4f\t%d\n", h.Min+float64(i)*h.Width, c)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("analyze: histogram data %s: %w", l.Tag, err)
	}
	return nil
}

//scatterPlot draws the score funnel of one loop: RMSD against score,
//one point per model. A well-behaved score function shows a funnel
//narrowing toward low RMSD.
func scatterPlot(l *Loop, path string) error {
	pts := make(plotter.XYs, len(l.Models))
	for i, m := range l.Models {
		pts[i].X = m.RMSD
		pts[i].Y = m.Score
	}
	p := plot.New()
	p.Title.Text = l.Tag
	p.X.Label.Text = "backbone loop RMSD (Å)"
	p.Y.Label.Text = "Rosetta score"
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("analyze: scatter %s: %w", l.Tag, err)
	}
	sc.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(sc, plotter.NewGrid())
	if err := p.Save(14*vg.Centimeter, 10*vg.Centimeter, path); err != nil {
		return fmt.Errorf("analyze: scatter %s: %w", l.Tag, err)
	}
	return nil
}

//histogramPlot draws the RMSD distribution of one loop.
func histogramPlot(l *Loop, path string) error {
	vals := make(plotter.Values, len(l.Models))
	for i, m := range l.Models {
		vals[i] = m.RMSD
	}
	bins := HistogramBins
	if len(vals) < bins {
		bins = len(vals)
	}
	p := plot.New()
	p.Title.Text = l.Tag
	p.X.Label.Text = "backbone loop RMSD (Å)"
	p.Y.Label.Text = "models"
	h, err := plotter.NewHist(vals, bins)
	if err != nil {
		return fmt.Errorf("analyze: histogram %s: %w", l.Tag, err)
	}
	p.Add(h)
	if err := p.Save(14*vg.Centimeter, 10*vg.Centimeter, path); err != nil {
		return fmt.Errorf("analyze: histogram %s: %w", l.Tag, err)
	}
	return nil
}

//writeSummaryTSV writes the per-loop selection table and the benchmark
//medians.
func writeSummaryTSV(s *Summary, b *Benchmark, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("analyze: summary: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "# benchmark %s\n", b.Name)
	fmt.Fprintln(f, "tag\tmodels\tbest_top5_rmsd\tlowest_score_rmsd\tlowest_rmsd\tpct_subangstrom\tmedian_runtime_s")
	for _, row := range s.Loops {
		fmt.Fprintf(f, "%s\t%d\t%.3f\t%.3f\t%.3f\t%.1f\t%.0f\n",
			row.Tag, row.Models, row.BestTopRMSD, row.LowestScoreRMSD,
			row.LowestRMSD, row.PctSubangstrom, row.MedianRuntimeSecs)
	}
	fmt.Fprintf(f, "median\t\t%.3f\t%.3f\t%.3f\t%.1f\t\n",
		s.MedianBestTopRMSD, s.MedianLowestScoreRMSD, s.MedianLowestRMSD,
		s.MedianPctSubangstrom)
	if err := f.Close(); err != nil {
		return fmt.Errorf("analyze: summary: %w", err)
	}
	return nil
}
