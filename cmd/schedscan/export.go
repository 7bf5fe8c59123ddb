package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"schedscan/internal/ics"
	appLog "schedscan/internal/log"
	"schedscan/internal/schedule"
)

var (
	exportRender    bool
	exportOutput    string
	exportTermStart string
	exportTermEnd   string
	exportName      string
)

var exportCmd = &cobra.Command{
	Use:   "export <file|url>",
	Short: "Extract events and write them as an iCalendar file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		term, err := exportTerm(exportTermStart, exportTermEnd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		snap, err := loadTarget(ctx, args[0], exportRender)
		if err != nil {
			return err
		}

		strategy, res := schedule.Extract(snap, nil)
		if len(res.Events) == 0 {
			return eris.Errorf("no events found in %s", args[0])
		}

		cal, skipped, err := ics.Export(res.Events, ics.ExportOptions{Term: term, Name: exportName})
		if err != nil {
			return err
		}
		logSkipped(skipped)

		out, closeOut, err := openOutput(exportOutput)
		if err != nil {
			return eris.Wrap(err, "open output")
		}
		if err := ics.Write(out, cal); err != nil {
			_ = closeOut()
			return err
		}
		if err := closeOut(); err != nil {
			return eris.Wrap(err, "close output")
		}

		appLog.Info("calendar exported",
			"strategy", strategy.String(),
			"events", len(res.Events)-len(skipped),
			"skipped", len(skipped),
			"output", exportOutput,
			"term_start", term.Start.Format("2006-01-02"),
			"term_end", term.End.AddDate(0, 0, -1).Format("2006-01-02"),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().BoolVar(&exportRender, "render", false, "render the URL in headless Chromium before extracting")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "schedule.ics", "output file (- for stdout)")
	exportCmd.Flags().StringVar(&exportTermStart, "term-start", "", "first day of the term, YYYY-MM-DD (overrides config)")
	exportCmd.Flags().StringVar(&exportTermEnd, "term-end", "", "last day of the term, YYYY-MM-DD (overrides config)")
	exportCmd.Flags().StringVar(&exportName, "name", "", "calendar name")
	rootCmd.AddCommand(exportCmd)
}
