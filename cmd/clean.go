package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhubert/messly/internal/logger"
	"github.com/zhubert/messly/internal/session"
)

var skipConfirm bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the stored session and all log files",
	Long: `Deletes the stored session token and removes messly log files, including
the file named by --log-file. The config file is kept.

It will prompt for confirmation before proceeding unless the --yes flag is used.`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	store, err := session.DefaultStore()
	if err != nil {
		return fmt.Errorf("error locating session file: %w", err)
	}
	// Release the log file before removing it
	logger.Close()
	return runCleanWithReader(os.Stdin, os.Stdout, store, logFile)
}

// runCleanWithReader allows injecting input, output and paths for testing
func runCleanWithReader(input io.Reader, out io.Writer, store *session.Store, extraLogs ...string) error {
	s, err := store.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error reading session: %v\n", err)
	}
	hasSession := s.Valid() || err != nil

	fmt.Fprintln(out, "This will clean:")
	if hasSession {
		fmt.Fprintf(out, "  - The stored session in %s\n", store.Path())
	}
	fmt.Fprintln(out, "  - All messly log files in /tmp")
	for _, p := range extraLogs {
		if p != "" {
			fmt.Fprintf(out, "  - %s\n", p)
		}
	}

	if !skipConfirm {
		if !confirm(input, out, "Continue?") {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	if err := store.Clear(); err != nil {
		return fmt.Errorf("error removing session: %w", err)
	}

	logsCleared, err := logger.ClearLogs(extraLogs...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error clearing logs: %v\n", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Cleaned:")
	if hasSession {
		fmt.Fprintln(out, "  - session removed")
	}
	fmt.Fprintf(out, "  - %d log file(s) removed\n", logsCleared)
	return nil
}

// confirm prompts the user for y/n confirmation
func confirm(input io.Reader, out io.Writer, prompt string) bool {
	reader := bufio.NewReader(input)
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
