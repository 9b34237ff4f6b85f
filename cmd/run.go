package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fitpull/fitpull/internal/agent"
	"github.com/fitpull/fitpull/internal/model"
)

var runStartDate string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one extraction synchronously from the terminal",
	Long:  "Opens a browser window, waits for webmail login, and extracts report emails. The command blocks until the run reaches a terminal status.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		st := env.Pipeline.Run(cmd.Context(), uuid.New().String(), runStartDate)

		if st.Status != model.StatusComplete {
			return eris.Errorf("run finished with status %s: %s", st.Status, st.Err)
		}

		fmt.Printf("Extracted %d emails, saved %d records.\n", len(st.Extracted), len(st.SavedIDs))
		if st.Summary != "" {
			fmt.Println()
			fmt.Println(st.Summary)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runStartDate, "start-date", agent.DefaultStartDate,
		"search for report emails after this date (YYYY/MM/DD)")
	rootCmd.AddCommand(runCmd)
}
