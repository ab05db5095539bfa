package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zhubert/messly/internal/api"
	"github.com/zhubert/messly/internal/logger"
	"github.com/zhubert/messly/internal/session"
)

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session for the next run",
	Long: `Signs in with an email and password and stores the session token in
~/.messly/session.json. The password is read from the terminal without echo,
or from the first line of stdin when stdin is not a terminal.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (defaults to the last email used)")
	rootCmd.AddCommand(loginCmd)
}

// authClient is the slice of the backend the login and logout commands use.
type authClient interface {
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
	Me(ctx context.Context, s *session.Session) (*api.Me, error)
	Logout(ctx context.Context, s *session.Session) error
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Close()

	email := loginEmail
	if email == "" {
		email = cfg.GetLastEmail()
	}
	if email == "" {
		return fmt.Errorf("--email is required")
	}

	password, err := readPassword(os.Stdin, fmt.Sprintf("Password for %s: ", email))
	if err != nil {
		return err
	}

	client, err := api.New(cfg.GetServerURL())
	if err != nil {
		return err
	}
	store, err := session.DefaultStore()
	if err != nil {
		return fmt.Errorf("error locating session file: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), api.DefaultTimeout)
	defer cancel()
	s, err := login(ctx, client, store, email, password)
	if err != nil {
		return err
	}

	cfg.SetLastEmail(email)
	if err := cfg.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error saving config: %v\n", err)
	}
	fmt.Printf("Signed in as %s (%s).\n", s.Username, s.Role)
	return nil
}

// login exchanges credentials for a token, confirms it against /me and
// stores the confirmed session.
func login(ctx context.Context, client authClient, store *session.Store, email, password string) (*session.Session, error) {
	res, err := client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s := &session.Session{Token: res.AccessToken, Username: res.Username}

	me, err := client.Me(ctx, s)
	if err != nil {
		return nil, err
	}
	s.Confirm(session.Identity{
		Username:       me.Username,
		Email:          me.Email,
		Role:           me.Role,
		ProfilePicture: me.ProfilePicture,
		Description:    me.Description,
	})

	if err := store.Save(s); err != nil {
		return nil, fmt.Errorf("error saving session: %w", err)
	}
	return s, nil
}

// readPassword reads without echo from a terminal, otherwise one line from input.
func readPassword(input *os.File, prompt string) (string, error) {
	fd := int(input.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("error reading password: %w", err)
		}
		return string(b), nil
	}
	return readLine(input)
}

func readLine(input io.Reader) (string, error) {
	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("error reading password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("password is required")
	}
	return line, nil
}
