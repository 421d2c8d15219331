package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brizzai/graph-mcp/internal/config"
	"github.com/brizzai/graph-mcp/internal/session"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Verify or issue fbs_<appId> session cookies",
	}
	cmd.PersistentFlags().String("app-id", "", "Application id (overrides app.id)")
	cmd.PersistentFlags().String("app-secret", "", "Application secret (overrides app.secret)")

	cmd.AddCommand(newSessionVerifyCmd(), newSessionSignCmd())
	return cmd
}

// appConfig loads app.* and applies the session command's flag overrides.
func appConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app := cfg.App
	if id, _ := cmd.Flags().GetString("app-id"); id != "" {
		app.ID = id
	}
	if secret, _ := cmd.Flags().GetString("app-secret"); secret != "" {
		app.Secret = secret
	}
	if app.ID == "" || app.Secret == "" {
		return nil, fmt.Errorf("app id and secret are required, use --app-id/--app-secret or GRAPH_MCP_APP_ID/GRAPH_MCP_APP_SECRET")
	}
	return &app, nil
}

func newSessionVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <cookie-value>",
		Short: "Validate the value of an fbs_<appId> cookie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appConfig(cmd)
			if err != nil {
				return err
			}

			v := session.NewValidator(app)
			s, err := v.Validate(map[string]string{session.CookieName(app.ID): args[0]})
			if err != nil {
				return fmt.Errorf("invalid session: %w", err)
			}

			expires := "never"
			if exp := s.ExpiresAt(); !exp.IsZero() {
				expires = exp.UTC().Format(time.RFC3339)
			}
			pterm.Success.Println("Session is valid")
			return pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
				{"Field", "Value"},
				{"uid", s.UID()},
				{"access_token", mask(s.AccessToken())},
				{"expires", expires},
			}).Render()
		},
	}
}

func newSessionSignCmd() *cobra.Command {
	var (
		uid         string
		accessToken string
		ttl         time.Duration
	)
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Issue a signed fbs_<appId> cookie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appConfig(cmd)
			if err != nil {
				return err
			}

			expires := "0"
			if ttl > 0 {
				expires = strconv.FormatInt(time.Now().Add(ttl).Unix(), 10)
			}
			value := session.Encode(map[string]string{
				session.KeyAccessToken: accessToken,
				session.KeyUID:         uid,
				session.KeyExpires:     expires,
			}, app.Secret)

			fmt.Printf("%s=%s\n", session.CookieName(app.ID), value)
			return nil
		},
	}
	cmd.Flags().StringVar(&uid, "uid", "", "User id")
	cmd.Flags().StringVar(&accessToken, "token", "", "Access token")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Lifetime of the session, 0 for a session that never expires")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}

// mask hides all but the last four characters of a token. Tokens of four
// characters or fewer are hidden completely.
func mask(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return fmt.Sprintf("%s%s", pterm.Gray("****"), token[len(token)-4:])
}
