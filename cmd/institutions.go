package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/criswit/moni-bridge/provider"
)

var countryCode string

// institutionsCmd represents the institutions command
var institutionsCmd = &cobra.Command{
	Use:   "institutions",
	Short: "List the institutions the selected provider connects to",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		gw, err := buildGateway(ctx)
		if err != nil {
			return fmt.Errorf("failed to build gateway: %w", err)
		}

		institutions, err := gw.GetInstitutions(ctx, provider.InstitutionsParams{CountryCode: countryCode})
		if err != nil {
			return fmt.Errorf("failed to get institutions: %w", err)
		}

		if outputFormat == "json" {
			return printJSON(institutions)
		}

		fmt.Printf("Found %d institution(s):\n", len(institutions))
		for _, inst := range institutions {
			fmt.Printf("%-40s %s\n", inst.ID, inst.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(institutionsCmd)
	institutionsCmd.Flags().StringVar(&countryCode, "country", "", "ISO country code filter (GoCardless, Plaid)")
}
