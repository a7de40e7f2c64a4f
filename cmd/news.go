package main

import (
	"github.com/spf13/cobra"
)

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Manage scraped news articles",
	Long:  "Imports and lists news articles produced by the external headline scraper.",
}

func init() {
	rootCmd.AddCommand(newsCmd)
}
