package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"internpath/internal/api"
	"internpath/internal/auth"
)

var (
	authEmail     string
	authPassword  string
	authFirstName string
	authLastName  string
)

// loginCmd exchanges email and password for an access token.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the access token",
	Long: `Logs in with email and password and stores the access token in the
credentials file (auth.credentials_path).

The password is read from stdin when --password is omitted:
  echo "$PASSWORD" | internpath login --email me@example.com`,
	RunE: runLogin,
}

// signupCmd creates an account and logs in.
var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and store the access token",
	RunE:  runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE:  runWhoami,
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email (required)")
		c.Flags().StringVar(&authPassword, "password", "", "Password (default: read from stdin)")
		_ = c.MarkFlagRequired("email")
	}
	signupCmd.Flags().StringVar(&authFirstName, "first-name", "", "First name (required)")
	signupCmd.Flags().StringVar(&authLastName, "last-name", "", "Last name")
	_ = signupCmd.MarkFlagRequired("first-name")
}

func readPassword(cmd *cobra.Command) (string, error) {
	if authPassword != "" {
		return authPassword, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return "", fmt.Errorf("password is required")
	}
	return line, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}
	store, err := newStore()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	tok, err := newClient(store).Login(ctx, api.Credentials{Email: authEmail, Password: password})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return saveToken(cmd, store, tok, "Logged in")
}

func runSignup(cmd *cobra.Command, args []string) error {
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}
	store, err := newStore()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	tok, err := newClient(store).Signup(ctx, api.SignupRequest{
		FirstName:  authFirstName,
		SecondName: authLastName,
		Email:      authEmail,
		Password:   password,
	})
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}
	return saveToken(cmd, store, tok, "Account created")
}

func saveToken(cmd *cobra.Command, store *auth.Store, tok *api.TokenResponse, verb string) error {
	if tok.AccessToken == "" {
		return fmt.Errorf("backend returned no access token")
	}
	if err := store.Save(auth.Credentials{
		BaseURL:     cfg.API.BaseURL,
		Email:       authEmail,
		AccessToken: tok.AccessToken,
	}); err != nil {
		return err
	}
	logger.Info("credentials saved", zap.String("path", store.Path()), zap.String("email", authEmail))
	fmt.Fprintf(cmd.OutOrStdout(), "%s as %s\n", verb, authEmail)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}
	u, ok, err := store.User()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintln(out, "Not logged in")
		return nil
	}

	fmt.Fprintf(out, "User:    %s\n", displayName(u))
	if u.Email != "" {
		fmt.Fprintf(out, "Email:   %s\n", u.Email)
	}
	if u.ID != "" {
		fmt.Fprintf(out, "ID:      %s\n", u.ID)
	}
	if !u.ExpiresAt.IsZero() {
		state := "valid"
		if u.Expired(time.Now()) {
			state = "expired"
		}
		fmt.Fprintf(out, "Expires: %s (%s)\n", u.ExpiresAt.Local().Format(time.RFC1123), state)
	}
	fmt.Fprintf(out, "Server:  %s\n", store.Credentials().BaseURL)
	return nil
}
