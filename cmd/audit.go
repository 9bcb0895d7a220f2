package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/riskdesk/internal/audit"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect or prune the audit trail",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent audit entries, newest first",
	RunE:  runAuditList,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete audit entries older than a number of days",
	RunE:  runAuditPrune,
}

func init() {
	auditListCmd.Flags().String("event", "", "only entries for this event id")
	auditListCmd.Flags().String("actor", "", "only entries by this actor")
	auditListCmd.Flags().Int("limit", 20, "maximum number of entries")
	auditListCmd.Flags().Bool("json", false, "output entries as JSON")
	auditPruneCmd.Flags().Int("days", 365, "keep entries newer than this many days")
	auditCmd.AddCommand(auditListCmd, auditPruneCmd)
	rootCmd.AddCommand(auditCmd)
}

func runAuditList(cmd *cobra.Command, args []string) error {
	eventID, _ := cmd.Flags().GetString("event")
	actor, _ := cmd.Flags().GetString("actor")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.audit.Query(context.Background(), audit.QueryFilter{
		ScopeID: eventID,
		ActorID: actor,
		Limit:   limit,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		if entries == nil {
			entries = []audit.Entry{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No audit entries.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%-16s %-8s %-12s %s\n", humanize.Time(e.Timestamp), e.ActorType, e.ActorID, e.Summary)
	}
	return nil
}

func runAuditPrune(cmd *cobra.Command, args []string) error {
	days, _ := cmd.Flags().GetInt("days")
	if days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cutoff := time.Now().AddDate(0, 0, -days)
	n, err := a.audit.DeleteBefore(context.Background(), cutoff)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %s audit entries older than %s\n", humanize.Comma(n), cutoff.Format(time.DateOnly))
	return nil
}
