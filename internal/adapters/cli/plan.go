package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Nadrieril/rustorio/internal/application/production"
	"github.com/Nadrieril/rustorio/internal/domain/catalog"
	"github.com/Nadrieril/rustorio/internal/domain/inventory"
)

// NewPlanCommand creates the plan command
func NewPlanCommand() *cobra.Command {
	var (
		catalogPath  string
		scenarioPath string
		noColor      bool
	)

	cmd := &cobra.Command{
		Use:   "plan <resource> <quantity>",
		Short: "Preview how a request would decompose, without running it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resource := catalog.ResourceType(args[0])
			quantity, err := strconv.Atoi(args[1])
			if err != nil || quantity <= 0 {
				return fmt.Errorf("quantity must be a positive integer, got %q", args[1])
			}

			var stock inventory.Stock = inventory.NewMemoryStock(nil)
			if scenarioPath != "" {
				scenario, err := LoadScenario(scenarioPath)
				if err != nil {
					return err
				}
				if catalogPath == "" {
					catalogPath = scenario.Catalog
				}
				stock = scenario.InitialStock()
			}
			if catalogPath == "" {
				return fmt.Errorf("either --catalog or --scenario is required")
			}

			cat, err := catalog.LoadFile(catalogPath)
			if err != nil {
				return err
			}

			root, err := production.Plan(cat, stock, resource, quantity)
			if err != nil {
				return err
			}

			formatter := NewTreeFormatter(!noColor)
			fmt.Print(formatter.FormatTree(root))
			fmt.Println(formatter.FormatTreeSummary(root))
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to catalog file")
	cmd.Flags().StringVar(&scenarioPath, "scenario", "",
		"Scenario file supplying catalog and starting stock")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}
