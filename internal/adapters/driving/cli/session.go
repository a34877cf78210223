package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect conversation sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionList,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show a session's conversation history",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionShow,
}

func init() {
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionList(cmd *cobra.Command, _ []string) error {
	if sessionStore == nil {
		return errors.New("session store not configured")
	}

	ids := sessionStore.List()
	if len(ids) == 0 {
		cmd.Println("No active sessions.")
		return nil
	}

	cmd.Println("Sessions:")
	for _, id := range ids {
		line := "  " + id
		if session, err := sessionStore.Get(id); err == nil {
			line += fmt.Sprintf("  document=%s turns=%d", session.DocumentID, len(session.History))
		}
		cmd.Println(line)
	}
	return nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	if sessionStore == nil {
		return errors.New("session store not configured")
	}

	session, err := sessionStore.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	cmd.Printf("Session: %s\n", session.ID)
	cmd.Printf("Document: %s\n\n", session.DocumentID)

	if len(session.History) == 0 {
		cmd.Println("No questions asked yet.")
		return nil
	}

	for _, entry := range session.History {
		cmd.Printf("Q: %s\n", entry.Question)
		cmd.Printf("A: %s\n\n", entry.Answer)
	}
	return nil
}
