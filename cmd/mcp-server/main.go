// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	mcpserver "github.com/jhastrovio/azure-sharepoint-mcp-server/pkg/mcp-server"
)

var (
	rootCmd = &cobra.Command{
		Use:   "mcp-server",
		Short: "SharePoint MCP (Model Context Protocol) Server",
		Args:  cobra.OnlyValidArgs,
	}
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the service",
		Args:  cobra.ExactArgs(0),
		RunE:  cmdRun,
	}

	runCfg mcpserver.Config

	devMode bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.StringVar(&runCfg.Address, "address", envString("MCP_SERVER_ADDRESS", ":20110"), "address to serve HTTP requests")
	flags.BoolVar(&runCfg.InsecureDisableTLS, "insecure-disable-tls", envBool("MCP_SERVER_INSECURE_DISABLE_TLS", true), "listen using insecure connections only")
	flags.StringVar(&runCfg.CertFile, "cert-file", envString("MCP_SERVER_CERT_FILE", ""), "path to a TLS certificate file")
	flags.StringVar(&runCfg.KeyFile, "key-file", envString("MCP_SERVER_KEY_FILE", ""), "path to a TLS key file")
	flags.DurationVar(&runCfg.IdleTimeout, "idle-timeout", envDuration("MCP_SERVER_IDLE_TIMEOUT", time.Minute), "maximum time to wait for the next request")
	flags.DurationVar(&runCfg.ShutdownDelay, "shutdown-delay", envDuration("MCP_SERVER_SHUTDOWN_DELAY", time.Second), "time to delay shutdown while returning 503s on the health endpoint")
	flags.DurationVar(&runCfg.ShutdownTimeout, "shutdown-timeout", envDuration("MCP_SERVER_SHUTDOWN_TIMEOUT", 10*time.Second), "maximum time to wait for in-flight requests during shutdown")

	flags.StringVar(&runCfg.SharePoint.SiteURL, "site-url", envString("SHAREPOINT_SITE_URL", ""), "SharePoint site URL, e.g. https://contoso.sharepoint.com/sites/Engineering")
	flags.StringVar(&runCfg.SharePoint.GraphBaseURL, "graph-base-url", envString("SHAREPOINT_GRAPH_BASE_URL", ""), "Microsoft Graph endpoint override")
	flags.DurationVar(&runCfg.SharePoint.Timeout, "graph-timeout", envDuration("SHAREPOINT_GRAPH_TIMEOUT", 30*time.Second), "maximum duration of a single Graph request")
	flags.BoolVar(&runCfg.SharePoint.FolderExistsOK, "folder-exists-ok", envBool("SHAREPOINT_FOLDER_EXISTS_OK", false), "report success from create_folder when the folder already exists")

	flags.StringVar(&runCfg.Auth.TenantID, "tenant-id", envString("AZURE_TENANT_ID", ""), "Azure AD tenant ID")
	flags.StringVar(&runCfg.Auth.ClientID, "client-id", envString("AZURE_CLIENT_ID", ""), "Azure AD application client ID")
	flags.StringVar(&runCfg.Auth.ClientSecret, "client-secret", envString("AZURE_CLIENT_SECRET", ""), "Azure AD application client secret")
	flags.BoolVar(&runCfg.Auth.DisableCLI, "disable-cli-auth", envBool("AZURE_DISABLE_CLI_AUTH", false), "skip the Azure CLI credential strategy")

	flags.BoolVar(&devMode, "dev", false, "use human-readable development logging")
}

func cmdRun(cmd *cobra.Command, _ []string) (err error) {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting SharePoint MCP (Model Context Protocol) Server")

	if err := runCfg.Auth.Validate(); err != nil {
		return err
	}
	peer, err := mcpserver.New(log, runCfg)
	if err != nil {
		return err
	}

	// if peer.Run() fails, we want to ensure the context is canceled so we
	// don't hang on ctx.Done before closing the peer.
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return ignoreCanceled(peer.Close())
	})

	g.Go(func() error {
		return ignoreCanceled(peer.Run(ctx))
	})

	return g.Wait()
}

func newLogger() (*zap.Logger, error) {
	if devMode {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func ignoreCanceled(err error) error {
	if err == nil || err == context.Canceled {
		return nil
	}
	return err
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func main() {
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\n\n%s", err, cmd.UsageString())
	})
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
