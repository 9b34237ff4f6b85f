package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Inspect stored weekly metrics",
}

var metricsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored weekly metrics",
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
		if len(metrics) == 0 {
			fmt.Println("No metrics stored yet.")
			return nil
		}

		p := message.NewPrinter(language.English)

		tw := table.NewWriter()
		tw.SetOutputMirror(cmd.OutOrStdout())
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"ID", "Week", "Steps", "Steps Δ", "Miles", "Cal/day", "AZM", "Sleep", "HR"})
		for _, m := range metrics {
			tw.AppendRow(table.Row{
				m.ID,
				m.DateRange,
				p.Sprintf("%d", m.TotalSteps),
				p.Sprintf("%+.0f", m.StepsVariance),
				p.Sprintf("%.1f", m.TotalMiles),
				p.Sprintf("%.0f", m.AvgDailyCalorieBurn),
				p.Sprintf("%d", m.TotalActiveZoneMinutes),
				m.AvgRestfulSleep,
				m.AvgRestingHeartRate,
			})
		}
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignRight},
			{Number: 3, Align: text.AlignRight},
			{Number: 4, Align: text.AlignRight},
			{Number: 5, Align: text.AlignRight},
			{Number: 6, Align: text.AlignRight},
			{Number: 7, Align: text.AlignRight},
			{Number: 9, Align: text.AlignRight},
		})
		tw.Render()
		return nil
	},
}

var metricsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one metric record by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Errorf("invalid metric id: %s", args[0])
		}

		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteMetric(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted metric %d.\n", id)
		return nil
	},
}

func init() {
	metricsCmd.AddCommand(metricsListCmd)
	metricsCmd.AddCommand(metricsDeleteCmd)
	rootCmd.AddCommand(metricsCmd)
}
