package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "List the Jira tickets that go into the entry description",
	Args:  cobra.NoArgs,
	RunE:  runTickets,
}

func runTickets(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newJira(cfg, log)
	if err != nil {
		return err
	}

	tickets, err := client.SearchAssigned(cmd.Context())
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		fmt.Fprintln(ui.Out, "No tickets found.")
		return nil
	}

	table := ui.Table([]string{"Key", "Status", "Summary"})
	for _, t := range tickets {
		_ = table.Append([]string{t.ID, t.Status, t.Summary})
	}
	_ = table.Render()
	return nil
}
