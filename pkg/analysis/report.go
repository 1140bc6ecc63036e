package analysis

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"mrimetrics/pkg/metrics"
)

// ReportRow is one line of the statistics report
type ReportRow struct {
	Variant            string  `csv:"variant"`
	Lower              float64 `csv:"lower_threshold"`
	Upper              float64 `csv:"upper_threshold"`
	ForegroundCount    int     `csv:"foreground_count"`
	ForegroundMean     float64 `csv:"foreground_mean"`
	BackgroundCount    int     `csv:"background_count"`
	BackgroundMean     float64 `csv:"background_mean"`
	BackgroundVariance float64 `csv:"background_variance"`
	BackgroundStdDev   float64 `csv:"background_stddev"`
	SNR                float64 `csv:"snr"`
}

// ReportRows flattens the statistics of the last Process call
func (a *Analyzer) ReportRows() []*ReportRow {
	rows := make([]*ReportRow, 0, len(a.stats))
	for _, s := range a.stats {
		rows = append(rows, newReportRow(s, a))
	}
	return rows
}

func newReportRow(s metrics.VariantStats, a *Analyzer) *ReportRow {
	return &ReportRow{
		Variant:            s.Variant.String(),
		Lower:              a.interval.Lower,
		Upper:              a.interval.Upper,
		ForegroundCount:    s.ForegroundCount,
		ForegroundMean:     s.ForegroundMean,
		BackgroundCount:    s.BackgroundCount,
		BackgroundMean:     s.BackgroundMean,
		BackgroundVariance: s.BackgroundVariance,
		BackgroundStdDev:   s.BackgroundStdDev,
		SNR:                s.SNR,
	}
}

// WriteReport prints a human readable statistics table
func (a *Analyzer) WriteReport(w io.Writer) error {
	sum := a.summary
	if _, err := fmt.Fprintf(w, "Volume: min=%.3f max=%.3f mean=%.3f std=%.3f median=%.3f\n",
		sum.Min, sum.Max, sum.Mean, sum.StdDev, sum.Median); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Threshold: [%g, %g], segmented %.2f%% of voxels\n\n",
		a.interval.Lower, a.interval.Upper, 100*a.SegmentedFraction()); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%-10s %10s %14s %10s %14s %14s %14s %12s\n",
		"Variant", "FG count", "FG mean", "BG count", "BG mean", "BG variance", "BG std", "SNR"); err != nil {
		return err
	}
	for _, row := range a.ReportRows() {
		if _, err := fmt.Fprintf(w, "%-10s %10d %14.4f %10d %14.4f %14.4f %14.4f %12.4f\n",
			row.Variant, row.ForegroundCount, row.ForegroundMean, row.BackgroundCount,
			row.BackgroundMean, row.BackgroundVariance, row.BackgroundStdDev, row.SNR); err != nil {
			return err
		}
	}

	return nil
}

// SaveReportCSV writes the statistics report to a CSV file
func (a *Analyzer) SaveReportCSV(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(a.ReportRows(), file); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}
