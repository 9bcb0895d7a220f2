package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/riskdesk/internal/assistant"
	"github.com/ziadkadry99/riskdesk/internal/chat"
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Ask Yoyo a question from the terminal",
	Long: `Runs one assistant turn against the event base and prints the reply.
By default the turn skips onboarding; pass --state INICIO to start a new
conversation, or --session to continue a stored one.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("name", "", "user name to address")
	askCmd.Flags().String("state", string(assistant.StateActive), "conversation state: INICIO, AGUARDANDO_NOME or ATIVO")
	askCmd.Flags().String("session", "", "stored session id to continue")
	askCmd.Flags().Bool("json", false, "print the full turn result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name, _ := cmd.Flags().GetString("name")
	state, _ := cmd.Flags().GetString("state")
	sessionID, _ := cmd.Flags().GetString("session")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	generator, err := a.createGenerator(ctx)
	if err != nil {
		return err
	}
	svc, err := a.newService(generator)
	if err != nil {
		return err
	}

	req := chat.Request{
		Message:   strings.Join(args, " "),
		UserName:  name,
		SessionID: sessionID,
	}
	// A stored session carries its own state unless one is given explicitly.
	if sessionID == "" || cmd.Flags().Changed("state") {
		req.State = assistant.ConversationState(strings.ToUpper(state))
	}

	resp, err := svc.Chat(ctx, req)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Println(resp.Response)
	if !resp.Success {
		return fmt.Errorf("assistant turn failed (%s)", resp.Error)
	}
	return nil
}
