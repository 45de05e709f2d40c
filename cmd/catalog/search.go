package main

import (
	"fmt"
	"strings"

	"ai-shopping-assistant-be/internal/config"
	"ai-shopping-assistant-be/internal/dto"

	"github.com/spf13/cobra"
)

var (
	searchCategory string
	searchLimit    int
	searchSort     string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog the way the API does",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := openCatalog(config.Load())
		if err != nil {
			return err
		}

		req := &dto.ProductSearchRequest{
			Category: searchCategory,
			Limit:    searchLimit,
			SortBy:   strings.ToUpper(searchSort),
		}
		if len(args) == 1 {
			req.Query = args[0]
		}

		res, err := catalog.Products.Search(cmd.Context(), req)
		if err != nil {
			failure("Search failed: %v", err)
			return err
		}

		if len(res.Products) == 0 {
			warn("No products matched")
			return nil
		}
		for i, p := range res.Products {
			score := ""
			if p.Similarity != nil {
				score = dimColor.Sprintf(" (similarity %.3f)", *p.Similarity)
			}
			fmt.Printf("%2d. %s  $%.2f  [%s]%s\n", i+1, successColor.Sprint(p.Name), p.Price, p.Category, score)
		}
		dimColor.Printf("%d of %d shown\n", len(res.Products), res.Total)
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "restrict to one category")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum results")
	searchCmd.Flags().StringVar(&searchSort, "sort", "", "RELEVANCE, PRICE_LOW_TO_HIGH, PRICE_HIGH_TO_LOW, NEWEST, POPULAR or RATING")
}
