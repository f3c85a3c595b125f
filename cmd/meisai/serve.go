package main

import (
	"crypto/tls"
	"fmt"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Veraticus/meisai/internal/certs"
	"github.com/Veraticus/meisai/internal/config"
	"github.com/Veraticus/meisai/internal/server"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		useTLS  bool
		certDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API for the browser dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ws, cleanup, err := a.openWorkspace(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if a.v.GetString(config.KeyLogLevel) != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			var tlsConfig *tls.Config
			if useTLS {
				dir := config.ExpandPath(certDir)
				if dir == "" {
					dir = filepath.Join(filepath.Dir(ws.config.DatabasePath), "certs")
				}
				tlsConfig, err = certs.NewStore(dir).TLSConfig()
				if err != nil {
					return fmt.Errorf("failed to prepare TLS certificate: %w", err)
				}
			}

			srv := server.New(server.Config{
				Addr:           ws.config.ServerAddr,
				TLS:            tlsConfig,
				Version:        version,
				Language:       ws.config.Language,
				AllowedOrigins: ws.config.AllowedOrigins,
			}, ws.session, newLoader(ws.config.Encodings), nil)

			return srv.Run(ctx)
		},
	}

	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	_ = a.v.BindPFlag(config.KeyServerAddr, cmd.Flags().Lookup("addr"))
	cmd.Flags().BoolVar(&useTLS, "tls", false, "serve HTTPS with a self-signed localhost certificate")
	cmd.Flags().StringVar(&certDir, "cert-dir", "", "certificate directory (default: next to the database)")

	return cmd
}
