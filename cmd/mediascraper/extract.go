package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"mediascraper/internal/assembler"
	"mediascraper/internal/domain"
	"mediascraper/internal/monitoring"
)

var flagCut bool

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Extract one post and print the JSON payload",
	Args:  cobra.ExactArgs(1),
	RunE:  extractRun,
}

func init() {
	extractCmd.Flags().BoolVar(&flagCut, "cut", false, "Print the structured content/author/media shape")
}

func extractRun(cmd *cobra.Command, args []string) error {
	scraper, cleanup, err := buildScraper(cfg, monitoring.NewMetrics(), logger)
	if err != nil {
		return err
	}
	defer cleanup()

	var (
		status  int
		payload any
	)
	res, scrapeErr := scraper.Scrape(cmd.Context(), args[0], domain.ModeFromFlag(flagCut))
	if scrapeErr != nil {
		status, payload = assembler.RenderError(scrapeErr)
	} else {
		status, payload = assembler.Render(res)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("extraction failed with status %d: %w", status, scrapeErr)
	}
	return nil
}
