package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"campusmap/internal/display"
	"campusmap/internal/models"
	"campusmap/pkg/graceful"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var listCmd = &cobra.Command{
	Use:   "list [filter]",
	Short: "Print the buildings whose name contains filter",
	Long: `Loads the buildings once and prints those whose name contains the filter,
ignoring case. Without a filter every building is printed, in feed order.

Example:
  campusmap list clough
  campusmap list --json tech`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	ctx, cancel := graceful.Context(cmd.Context(), logger)
	defer cancel()

	if err := a.load(ctx); err != nil {
		return err
	}

	filter := ""
	if len(args) == 1 {
		filter = args[0]
	}
	matches := display.Match(a.store.Places(), filter)
	logger.Debug("listing buildings", zap.String("filter", filter), zap.Int("matches", len(matches)))

	out := cmd.OutOrStdout()
	if asJSON {
		buildings := make([]models.Building, len(matches))
		for i, p := range matches {
			buildings[i] = p.Building
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(buildings)
	}

	if len(matches) == 0 {
		fmt.Fprintf(out, "no buildings match %q\n", filter)
		return nil
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "ADDRESS", "PHONE", "LAT", "LON")
	for _, p := range matches {
		t.Row(p.Name, p.Address, p.PhoneNum, coord(p.Position.Lat, p.Position.Valid()), coord(p.Position.Lon, p.Position.Valid()))
	}
	fmt.Fprintln(out, t.Render())
	return nil
}

func coord(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
