package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/kilupskalvis/catalogd/internal/models"
	"github.com/spf13/cobra"
)

var itemsKeyword string

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "List the catalog from the terminal",
	Run: func(_ *cobra.Command, _ []string) {
		cctx := initContext()
		defer cctx.Close()

		ctx := context.Background()
		items, err := listOrSearch(ctx, cctx)
		if err != nil {
			exitError("%v", err)
		}

		if len(items) == 0 {
			fmt.Println("no items")
			return
		}

		cyan := color.New(color.FgCyan)
		yellow := color.New(color.FgYellow)
		for _, item := range items {
			cyan.Printf("%4d  ", item.ID)
			fmt.Printf("%-30s ", item.Name)
			if item.Category != "" {
				yellow.Printf("%-15s ", item.Category)
			} else {
				fmt.Printf("%-15s ", "-")
			}
			fmt.Println(item.Image)
		}
	},
}

func listOrSearch(ctx context.Context, cctx *cmdContext) ([]models.Item, error) {
	if itemsKeyword != "" {
		return cctx.Repo.SearchByName(ctx, itemsKeyword)
	}
	return cctx.Repo.ListAll(ctx)
}

func init() {
	itemsCmd.Flags().StringVar(&itemsKeyword, "search", "", "Only show items whose name contains this keyword")
}
