package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Nadrieril/rustorio/internal/domain/catalog"
)

// NewCatalogCommand creates the catalog command group
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate recipe catalogs",
	}
	cmd.AddCommand(newCatalogValidateCommand())
	cmd.AddCommand(newCatalogListCommand())
	return cmd
}

func newCatalogValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <catalog-file>",
		Short: "Check a catalog for invalid recipes and dependency cycles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("OK: %d recipe(s), %d entity type(s), max chain depth %d\n",
				len(cat.Resources()), len(cat.EntityTypes()), cat.MaxChainDepth())
			return nil
		},
	}
}

func newCatalogListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <catalog-file>",
		Short: "List the recipes in a catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}
			for _, res := range cat.Resources() {
				recipe, err := cat.RecipeFor(res)
				if err != nil {
					return err
				}
				fmt.Printf("%s x%d @ %s (%d tick(s))\n",
					recipe.Output, recipe.OutputQuantity, recipe.Entity, recipe.Duration)
				for _, input := range recipe.Inputs {
					fmt.Printf("  <- %s x%d\n", input.Resource, input.Quantity)
				}
			}
			return nil
		},
	}
}
