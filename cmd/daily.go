package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sharppicks/parlay-engine/internal/model"
)

var (
	dailyDate   string
	dailyForce  bool
	dailySports []string
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Generate the daily safe/balanced/risky picks",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		date := dailyDate
		if date == "" {
			date = time.Now().UTC().Format("2006-01-02")
		}
		sports := dailySports
		if len(sports) == 0 {
			sports = cfg.Daily.Sports
		}

		outcomes, err := env.Generator.RunDaily(cmd.Context(), sports, date, dailyForce)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Date     string               `json:"date"`
			Outcomes []model.DailyOutcome `json:"outcomes"`
		}{Date: date, Outcomes: outcomes})
	},
}

func init() {
	dailyCmd.Flags().StringVar(&dailyDate, "date", "", "cycle date YYYY-MM-DD (default today UTC)")
	dailyCmd.Flags().BoolVar(&dailyForce, "force", false, "clear and rebuild an existing cycle")
	dailyCmd.Flags().StringSliceVar(&dailySports, "sports", nil, "provider sport keys (default from config)")
	rootCmd.AddCommand(dailyCmd)
}
