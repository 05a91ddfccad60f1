package main

import (
	"errors"

	"campusmap/internal/surface/terminal"
	"campusmap/pkg/graceful"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Show the map in the terminal",
	Long: `Loads the buildings and draws them on a character grid.

Keys: type to filter, tab to move between filter, list and map, ctrl+l to
show or hide the building list, arrows and enter to select, ctrl+c to quit.
Logs go to --log-file, or nowhere.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	ctx, cancel := graceful.Context(cmd.Context(), logger)
	defer cancel()

	stopProducer := a.startProducer(ctx)
	defer stopProducer()

	sess := a.newSession()
	surface := terminal.NewSurface()
	defer surface.Close()

	program := tea.NewProgram(
		terminal.NewModel(sess, surface),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	var sessionErr error
	g := new(errgroup.Group)
	g.Go(func() error {
		sessionErr = a.runSession(ctx, sess, surface.Open, surface.Fail)
		return nil
	})
	g.Go(func() error {
		// quitting the UI ends the session
		defer cancel()
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return sessionErr
}
