package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/meisai/internal/cli"
	"github.com/Veraticus/meisai/internal/sheets"
)

func (a *app) sheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Google Sheets export setup",
	}
	cmd.AddCommand(a.sheetsAuthCmd())
	return cmd
}

func (a *app) sheetsAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2.

This command will:
1. Print a consent URL to open in your browser
2. Wait for Google to redirect back to a local callback
3. Print the refresh token to store as sheets.refresh_token

You'll need to run this once to set up Google Sheets export.`,
		Args: cobra.NoArgs,
		RunE: a.runSheetsAuth,
	}

	cmd.Flags().String("client-id", "", "OAuth2 client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 client secret (overrides config)")
	cmd.Flags().String("callback-addr", "localhost:8085", "address of the local redirect listener")
	cmd.Flags().Duration("timeout", 5*time.Minute, "how long to wait for the consent")

	return cmd
}

func (a *app) runSheetsAuth(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	clientID := a.v.GetString("sheets.client_id")
	clientSecret := a.v.GetString("sheets.client_secret")
	if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
		clientID = flagID
	}
	if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
		clientSecret = flagSecret
	}
	if clientID == "" {
		clientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("OAuth2 credentials not found. Please set sheets.client_id and sheets.client_secret in config or use --client-id and --client-secret flags")
	}

	callback, _ := cmd.Flags().GetString("callback-addr")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	token, err := sheets.AuthenticateOAuth2Interactive(cmd.Context(), sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		CallbackAddr: callback,
		Timeout:      timeout,
	}, func(url string) {
		fmt.Fprintln(out, cli.FormatInfo("Open this URL in your browser to authorize meisai:"))
		fmt.Fprintln(out, url)
	})
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	if token.RefreshToken == "" {
		return fmt.Errorf("authentication succeeded but Google returned no refresh token; revoke access and try again")
	}

	fmt.Fprintln(out, cli.FormatSuccess("Authentication successful!"))
	fmt.Fprintln(out, "Add this to your config.yaml:")
	fmt.Fprintf(out, "sheets:\n  refresh_token: %q\n", token.RefreshToken)
	return nil
}
