package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/logger"
	"github.com/zhubert/messly/internal/session"
)

// logoutTimeout bounds the best-effort server logout.
const logoutTimeout = 5 * time.Second

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and delete the stored session",
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Close()

	client, err := api.New(cfg.GetServerURL())
	if err != nil {
		return err
	}
	store, err := session.DefaultStore()
	if err != nil {
		return fmt.Errorf("error locating session file: %w", err)
	}

	signedOut, err := logout(cmd.Context(), client, store)
	if err != nil {
		return err
	}
	if !signedOut {
		fmt.Println("Not signed in.")
		return nil
	}
	fmt.Println("Signed out.")
	return nil
}

// logout tells the server the token is done, then deletes the local session
// whatever the server said. It reports whether a session existed.
func logout(ctx context.Context, client authClient, store *session.Store) (bool, error) {
	s, loadErr := store.Load()
	if loadErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: stored session is unreadable: %v\n", loadErr)
	}
	if s.Valid() {
		ctx, cancel := context.WithTimeout(ctx, logoutTimeout)
		defer cancel()
		if err := client.Logout(ctx, s); err != nil {
			logger.WithComponent("cmd").Warn("server logout failed", "error", err)
		}
	}
	if err := store.Clear(); err != nil {
		return false, fmt.Errorf("error removing session: %w", err)
	}
	return s.Valid() || loadErr != nil, nil
}
