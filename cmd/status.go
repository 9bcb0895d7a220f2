package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/riskdesk/internal/audit"
	"github.com/ziadkadry99/riskdesk/internal/chat"
)

var statusCmd = &cobra.Command{
	Use:   "status [event-id] [status]",
	Short: "Change the treatment status of an event",
	Long:  `Sets an event's status to aberto, em_andamento or resolvido and records the change in the audit trail.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, _ := cmd.Flags().GetString("actor")
		if actor == "" {
			actor = currentUser()
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		svc, err := a.newService(nil)
		if err != nil {
			return err
		}

		res := svc.UpdateStatus(context.Background(), args[0], chat.StatusRequest{
			Status: args[1],
			Actor:  actor,
		}, audit.ActorUser)
		if !res.Success {
			return errors.New(res.Reason)
		}

		fmt.Printf("%s: %s -> %s\n", res.EventID, res.Previous, res.Status)
		return nil
	},
}

func init() {
	statusCmd.Flags().String("actor", "", "name recorded in the audit trail (default $USER)")
	rootCmd.AddCommand(statusCmd)
}
