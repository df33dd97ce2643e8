package serve

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp-forge/workflowy/internal/cmd/base"
	"github.com/hashicorp-forge/workflowy/internal/proxy"
	"github.com/hashicorp-forge/workflowy/internal/server"
)

const shutdownTimeout = 10 * time.Second

type Command struct {
	*base.Command

	cfgFlags     base.ConfigFlags
	flagAddr     string
	flagBasePath string

	// Browser launch settings
	flagBrowser bool

	// ready receives the server URL once the listener is bound.
	ready chan string
}

func (c *Command) Synopsis() string {
	return "Run the Workflowy proxy server"
}

func (c *Command) Help() string {
	return `Usage: workflowy serve [options]

  Run an HTTP server that proxies the Workflowy API behind a uniform
  problem-details envelope.

  Routes (under the base path, default /WFAPI):
    GET    /node/{id}              Fetch a node
    GET    /nodes?parentId=        List children (top level when omitted)
    POST   /node                   Create a node
    POST   /node/{id}              Update a node
    DELETE /node/{id}              Delete a node
    POST   /node/{id}/complete     Complete a node
    POST   /node/{id}/uncomplete   Uncomplete a node
    POST   /node/{id}/move         Move a node
    GET    /export                 Export all nodes as a flat list
    GET    /tree                   Export all nodes as a nested outline

  GET /health is served outside the base path.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("serve", flag.ContinueOnError))
	c.cfgFlags.Register(f)

	f.StringVar(
		&c.flagAddr, "addr", "",
		"[WORKFLOWY_ADDR] Listen address (default: 127.0.0.1:8000)",
	)
	f.StringVar(
		&c.flagBasePath, "base-path", "",
		"Path prefix of the proxy routes (default: /WFAPI)",
	)
	f.BoolVar(
		&c.flagBrowser, "browser", false,
		"Open the tree endpoint in a browser once the server is ready",
	)

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	cfg, err := c.LoadConfig(&c.cfgFlags)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading configuration: %v", err))
		return 1
	}
	if c.flagAddr != "" {
		cfg.Server.Addr = c.flagAddr
	}
	if c.flagBasePath != "" {
		cfg.Server.BasePath = c.flagBasePath
	}

	client, err := c.NewClient(cfg)
	if err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	srv := server.Server{
		Workflowy: client,
		Config:    cfg,
		Logger:    c.Log.Named("proxy"),
	}
	basePath := cfg.NormalizedBasePath()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error listening on %s: %v", cfg.Server.Addr, err))
		return 1
	}

	httpSrv := &http.Server{
		Handler:           proxy.NewHandler(srv, basePath),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverURL := "http://" + ln.Addr().String()
	printBanner(c.UI, serverURL, basePath, cfg.Workflowy.BaseURL)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(ln)
	}()

	if c.ready != nil {
		c.ready <- serverURL
	}

	// Launch browser in background if enabled
	if c.flagBrowser {
		go func() {
			if err := waitForServer(ctx, serverURL, 10*time.Second); err != nil {
				c.UI.Warn(fmt.Sprintf("Server not ready, skipping browser launch: %v", err))
				return
			}
			if err := openBrowser(serverURL + basePath + "/tree"); err != nil {
				c.UI.Warn(fmt.Sprintf("Could not open browser: %v", err))
			}
		}()
	}

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.UI.Error(fmt.Sprintf("error serving: %v", err))
			return 1
		}
		return 0

	case <-ctx.Done():
		c.Log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			c.UI.Error(fmt.Sprintf("error shutting down server: %v", err))
			return 1
		}
		return 0
	}
}
