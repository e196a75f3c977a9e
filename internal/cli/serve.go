package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/community-site/internal/server"
)

var flagAddr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site pages over HTTP",
		Long: `Serves every page at /{page} with its controller attached. POSTing to
/{page} fills and submits the page form and returns the resulting page.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	store, err := a.storage(false)
	if err != nil {
		return err
	}

	addr := flagAddr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(store, a.deps, a.log, a.metrics).ListenAndServe(ctx, addr)
}
