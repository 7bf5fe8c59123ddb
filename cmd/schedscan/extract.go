package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"schedscan/internal/ics"
	appLog "schedscan/internal/log"
	"schedscan/internal/schedule"
)

var (
	extractRender bool
	extractFormat string
	extractOutput string
)

var extractCmd = &cobra.Command{
	Use:   "extract <file|url>",
	Short: "Extract events from a schedule page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if extractFormat != "json" && extractFormat != "ics" {
			return eris.Errorf("unknown format %q (want json or ics)", extractFormat)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		snap, err := loadTarget(ctx, args[0], extractRender)
		if err != nil {
			return err
		}

		strategy, res := schedule.Extract(snap, nil)
		appLog.Info("extraction finished",
			"strategy", strategy.String(),
			"confidence", res.Confidence,
			"event_count", len(res.Events),
		)

		var write func(io.Writer) error
		switch extractFormat {
		case "ics":
			term, err := exportTerm("", "")
			if err != nil {
				return err
			}
			cal, skipped, err := ics.Export(res.Events, ics.ExportOptions{Term: term})
			if err != nil {
				return err
			}
			logSkipped(skipped)
			write = func(w io.Writer) error { return ics.Write(w, cal) }
		default:
			write = func(w io.Writer) error {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return eris.Wrap(enc.Encode(res), "encode result")
			}
		}

		out, closeOut, err := openOutput(extractOutput)
		if err != nil {
			return eris.Wrap(err, "open output")
		}
		if err := write(out); err != nil {
			_ = closeOut()
			return err
		}
		return eris.Wrap(closeOut(), "close output")
	},
}

func logSkipped(skipped []ics.Skipped) {
	for _, s := range skipped {
		appLog.Info("event not exported", "title", s.Event.Title, "reason", s.Reason)
	}
}

func init() {
	extractCmd.Flags().BoolVar(&extractRender, "render", false, "render the URL in headless Chromium before extracting")
	extractCmd.Flags().StringVar(&extractFormat, "format", "json", "output format: json or ics")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "-", "output file (- for stdout)")
	rootCmd.AddCommand(extractCmd)
}
