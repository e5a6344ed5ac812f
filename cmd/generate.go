package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sharppicks/parlay-engine/internal/model"
)

var (
	generateRisk     int
	generateLegs     int
	generateSports   []string
	generateBetTypes []string
	generateUser     string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build one parlay from live odds",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		betTypes, err := parseBetTypes(generateBetTypes)
		if err != nil {
			return err
		}

		res, err := env.Generator.Generate(cmd.Context(), model.GenerationRequest{
			UserID:    generateUser,
			RiskLevel: generateRisk,
			NumLegs:   generateLegs,
			Sports:    generateSports,
			BetTypes:  betTypes,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func parseBetTypes(labels []string) ([]model.BetType, error) {
	out := make([]model.BetType, 0, len(labels))
	for _, l := range labels {
		bt, ok := model.NormalizeBetType(l)
		if !ok {
			return nil, eris.Errorf("unknown bet type %q (want moneyline, spread, totals, or player_props)", l)
		}
		out = append(out, bt)
	}
	return out, nil
}

func init() {
	generateCmd.Flags().IntVar(&generateRisk, "risk", 5, "risk level 1-10")
	generateCmd.Flags().IntVar(&generateLegs, "legs", 3, "number of legs")
	generateCmd.Flags().StringSliceVar(&generateSports, "sports", []string{"basketball_nba"}, "provider sport keys")
	generateCmd.Flags().StringSliceVar(&generateBetTypes, "bet-types", []string{"moneyline"}, "allowed bet types")
	generateCmd.Flags().StringVar(&generateUser, "user", "", "owning user id")
	rootCmd.AddCommand(generateCmd)
}
