package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"shelf-dcs/internal/dcs"
	"shelf-dcs/internal/export"
	"shelf-dcs/internal/visuals"
)

var (
	outPath    string
	openReport bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the planogram as CSV or Excel",
}

var exportShelfCmd = &cobra.Command{
	Use:   "shelf FIXTURE",
	Short: "Export one gondola as CSV with change markers against the last import",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := svc.Snapshot()
		if err != nil {
			return err
		}
		f, err := snap.Fixture(args[0])
		if err != nil {
			return err
		}
		baseline, err := svc.Baseline()
		if err != nil {
			return err
		}
		w, err := openOutput(cmd, outPath)
		if err != nil {
			return err
		}
		defer w.Close()
		return export.WriteShelfCSV(w, f, baseline.Fixtures[args[0]])
	},
}

var exportAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Export every gondola as one CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := svc.Snapshot()
		if err != nil {
			return err
		}
		w, err := openOutput(cmd, outPath)
		if err != nil {
			return err
		}
		defer w.Close()
		return export.WriteAllFixturesCSV(w, snap)
	},
}

var exportXLSXCmd = &cobra.Command{
	Use:   "xlsx",
	Short: "Export planogram, changes and DCS proposals as an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		if outPath == "" || outPath == "-" {
			return fmt.Errorf("--out is required for workbook exports")
		}
		snap, err := svc.Snapshot()
		if err != nil {
			return err
		}
		baseline, err := svc.Baseline()
		if err != nil {
			return err
		}
		in := export.WorkbookInput{Snapshot: snap, Baseline: baseline}
		ev, err := svc.Evaluation()
		switch {
		case err == nil:
			in.Proposals = ev.Proposals.Sorted()
		case !errors.Is(err, dcs.ErrNoEvaluation):
			return err
		}

		w, err := openOutput(cmd, outPath)
		if err != nil {
			return err
		}
		defer w.Close()
		if err := export.WriteWorkbook(w, in); err != nil {
			return err
		}
		log.Info().Str("path", outPath).Int("proposals", len(in.Proposals)).Msg("Workbook exported")
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write an HTML report with occupancy and DCS charts",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := svc.Snapshot()
		if err != nil {
			return err
		}
		var evp *dcs.Evaluation
		ev, err := svc.Evaluation()
		switch {
		case err == nil:
			evp = &ev
		case !errors.Is(err, dcs.ErrNoEvaluation):
			return err
		}

		w, err := openOutput(cmd, outPath)
		if err != nil {
			return err
		}
		err = visuals.WriteHTML(w, visuals.BuildReport(snap, evp, time.Now()))
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		if openReport && outPath != "" && outPath != "-" {
			if err := browser.OpenFile(outPath); err != nil {
				log.Warn().Err(err).Str("path", outPath).Msg("Failed to open report in browser")
			}
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{exportShelfCmd, exportAllCmd, exportXLSXCmd, reportCmd} {
		c.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")
	}
	reportCmd.Flags().BoolVar(&openReport, "open", false, "open the report in the default browser")

	exportCmd.AddCommand(exportShelfCmd, exportAllCmd, exportXLSXCmd)
	rootCmd.AddCommand(exportCmd, reportCmd)
}
