package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/climate-rank/internal/profile"
)

var profilesFilePath string

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List built-in profiles or validate a profile file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if profilesFilePath != "" {
			p, err := profile.LoadFile(profilesFilePath)
			if err != nil {
				return err
			}
			fmt.Printf("Profile %q is valid (config %s)\n", p.Name, p.Hash())
			return nil
		}

		for _, name := range profile.Names() {
			p, err := profile.Builtin(name)
			if err != nil {
				return err
			}
			fmt.Printf("%-14s third=%-11s weights=%.2f/%.2f/%.2f thresholds=%.2f/%.2f penalties=%d\n",
				p.Name, p.Third,
				p.Weights.Emissions, p.Weights.Trend, p.Weights.Third,
				p.Thresholds.Finance, p.Thresholds.Monitor,
				len(p.Penalties),
			)
		}
		return nil
	},
}

func init() {
	profilesCmd.Flags().StringVar(&profilesFilePath, "file", "", "validate a profile YAML file instead of listing built-ins")
	rootCmd.AddCommand(profilesCmd)
}
