package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fitpull/fitpull/internal/store"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all stored metrics to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		metrics, err := st.ListMetrics(cmd.Context())
		if err != nil {
			return err
		}

		out := exportOutput
		if out == "" {
			out = "fitbit_metrics." + exportFormat
		}
		f, err := os.Create(out)
		if err != nil {
			return eris.Wrapf(err, "create %s", out)
		}
		defer f.Close()

		switch exportFormat {
		case "csv":
			err = store.WriteCSV(f, metrics)
		case "json":
			err = store.WriteJSON(f, metrics)
		case "xlsx":
			err = store.WriteXLSX(f, metrics)
		default:
			return eris.Errorf("unsupported export format: %s", exportFormat)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Wrote %d records to %s.\n", len(metrics), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "export format: csv, json, or xlsx")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default fitbit_metrics.<format>)")
	rootCmd.AddCommand(exportCmd)
}
