package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Nadrieril/rustorio/internal/adapters/persistence"
	"github.com/Nadrieril/rustorio/internal/infrastructure/config"
	"github.com/Nadrieril/rustorio/internal/infrastructure/database"
)

// NewHistoryCommand creates the history command group
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the request journal of past runs",
	}
	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryShowCommand())
	return cmd
}

func openJournal() (*persistence.GormRequestJournal, func(), error) {
	cfg := config.LoadConfigOrDefault(configPath)
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		database.Close(db)
		return nil, nil, err
	}
	cleanup := func() { database.Close(db) }
	return persistence.NewGormRequestJournal(db), cleanup, nil
}

func newHistoryListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journalled requests, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, cleanup, err := openJournal()
			if err != nil {
				return err
			}
			defer cleanup()

			requests, err := journal.ListRequests(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(requests) == 0 {
				fmt.Println("No journalled requests.")
				return nil
			}
			for _, r := range requests {
				line := fmt.Sprintf("%s  %-12s %s x%d  ticks %d..%d",
					r.ID, r.State, r.Resource, r.Quantity, r.CreatedAt, r.FinishedAt)
				if r.Failure != "" {
					line += fmt.Sprintf("  (%s)", r.Failure)
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum requests to list (0 for all)")
	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <request-id>",
		Short: "Show the task transitions of one request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, cleanup, err := openJournal()
			if err != nil {
				return err
			}
			defer cleanup()

			request, err := journal.FindRequest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if request == nil {
				return fmt.Errorf("request %s not found in journal", args[0])
			}

			fmt.Printf("%s  %s x%d  %s\n", request.ID, request.Resource, request.Quantity, request.State)
			if request.Failure != "" {
				fmt.Printf("failure: %s\n", request.Failure)
			}

			transitions, err := journal.TransitionsForRequest(cmd.Context(), request.ID)
			if err != nil {
				return err
			}
			for _, t := range transitions {
				short := t.TaskID
				if len(short) > 8 {
					short = short[:8]
				}
				line := fmt.Sprintf("  tick %4d  %s  %s -> %s", t.Tick, short, t.FromState, t.ToState)
				if t.Detail != "" {
					line += fmt.Sprintf("  (%s)", t.Detail)
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}
