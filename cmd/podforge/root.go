package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"podforge/internal/config"
)

type cliOptions struct {
	apiBase    string
	configPath string
}

// resolveBase returns the API base URL, falling back to the configured
// bind address when --api is not set.
func (o *cliOptions) resolveBase() (string, error) {
	if o.apiBase != "" {
		return normalizeBase(o.apiBase), nil
	}
	cfg, _, _, err := config.Load(o.configPath)
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	if cfg.Paths.APIBind == "" {
		return "", fmt.Errorf("no API address configured; pass --api or set api_bind")
	}
	bind := cfg.Paths.APIBind
	if strings.HasPrefix(bind, ":") {
		bind = "127.0.0.1" + bind
	}
	return normalizeBase(bind), nil
}

func normalizeBase(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimRight(addr, "/")
	}
	return "http://" + strings.TrimRight(addr, "/")
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}
	cmd := &cobra.Command{
		Use:           "podforge",
		Short:         "Control the podforge daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.apiBase, "api", "", "daemon API address (host:port or URL)")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")

	cmd.AddCommand(
		newStatusCommand(opts),
		newSubmitCommand(opts),
		newListCommand(opts),
		newShowCommand(opts),
		newVoicesCommand(opts),
		newPreviewCommand(opts),
	)
	return cmd
}
