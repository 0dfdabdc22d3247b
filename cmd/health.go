package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/criswit/moni-bridge/model"
)

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe all vendors concurrently and print the composite status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		gw, err := buildGateway(ctx)
		if err != nil {
			return fmt.Errorf("failed to build gateway: %w", err)
		}

		report := gw.GetHealthCheck(ctx)
		if outputFormat == "json" {
			return printJSON(report)
		}

		print := func(name string, h *model.ProviderHealth) {
			if h == nil {
				return
			}
			status := "healthy"
			if !h.Healthy {
				status = "unhealthy"
			}
			fmt.Printf("%-12s %s\n", name, status)
		}
		print("gocardless", report.GoCardless)
		print("plaid", report.Plaid)
		print("teller", report.Teller)
		print("stripe", report.Stripe)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
