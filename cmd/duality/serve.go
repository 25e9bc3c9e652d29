package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-duality/internal/coop"
	"github.com/vovakirdan/tui-duality/internal/platform/tui"
	"github.com/vovakirdan/tui-duality/internal/registry"
	"github.com/vovakirdan/tui-duality/internal/transport/web"
)

var (
	flagSSHAddr     string
	flagHTTPAddr    string
	flagHostKey     string
	flagIdleTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH and HTTP servers",
	Long: `Start an SSH server for terminal play and an HTTP server with a JSON API
and websockets. Both share one set of co-op rooms and one database, so a
terminal player can host a room and a browser can join it.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.duality/host_key

Set an address to "off" to disable that server.

Examples:
  duality serve
  duality serve --ssh :2222 --http :9000
  duality serve --http off

Users can connect with:
  ssh localhost -p 2323`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (overrides config)")
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "HTTP server address (overrides config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (overrides config)")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout before disconnecting (overrides config)")
}

func runServe(_ *cobra.Command, _ []string) {
	a := setup(os.Stderr)
	defer a.close()

	srv := a.cfg.Server
	if flagSSHAddr != "" {
		srv.SSHAddr = flagSSHAddr
	}
	if flagHTTPAddr != "" {
		srv.HTTPAddr = flagHTTPAddr
	}
	if flagHostKey != "" {
		srv.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		srv.IdleTimeout = flagIdleTimeout
	}

	coordinator := coop.NewCoordinator(coop.Config{
		MaxRooms: srv.MaxRooms,
		RoomTTL:  srv.RoomTTL,
		Levels:   registry.Level,
		Logger:   a.log,
	}, nil)
	if a.store != nil {
		coordinator.SetRunSaver(a.store)
	}
	coordinator.Start()
	defer coordinator.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 2)
	var shutdowns []func(context.Context) error

	if srv.SSHAddr != "" && srv.SSHAddr != "off" {
		opts := a.options()
		opts.Coordinator = coordinator

		sshServer, err := tui.NewSSHServer(tui.SSHServerConfig{
			Address:     srv.SSHAddr,
			HostKeyPath: srv.HostKeyPath,
			IdleTimeout: srv.IdleTimeout,
		}, opts, a.log.WithPrefix("ssh"))
		if err != nil {
			fail("creating SSH server: %v", err)
		}
		shutdowns = append(shutdowns, sshServer.Shutdown)
		go func() { errs <- sshServer.ListenAndServe() }()
		a.log.Info("SSH server listening", "addr", sshServer.Addr())
	}

	if srv.HTTPAddr != "" && srv.HTTPAddr != "off" {
		httpServer := &http.Server{
			Addr: srv.HTTPAddr,
			Handler: web.NewServer(coordinator, web.Config{
				Store:  a.store,
				Timing: a.cfg.Input.Timing(),
				Logger: a.log,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		shutdowns = append(shutdowns, httpServer.Shutdown)
		go func() {
			err := httpServer.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
			errs <- err
		}()
		a.log.Info("HTTP server listening", "addr", srv.HTTPAddr)
	}

	if len(shutdowns) == 0 {
		fail("both servers are disabled")
	}

	select {
	case <-ctx.Done():
		a.log.Info("shutting down")
	case err := <-errs:
		if err != nil {
			a.log.Error("server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, shutdown := range shutdowns {
		if err := shutdown(shutdownCtx); err != nil {
			a.log.Warn("shutdown", "error", err)
		}
	}
}
