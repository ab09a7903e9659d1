// Command carrot-trail starts the Carrot Trail game.
//
// It supports three modes:
//  1. "server" (default) runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" plays a level in the terminal
//
// Flags control host/port, levels directory, debug logging, and optional
// ngrok tunneling for easy external access during development. Every flag
// can also be set from the environment or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/carrot-trail/api"
	"github.com/wricardo/carrot-trail/game/config"
	"github.com/wricardo/carrot-trail/game/engine"
	"github.com/wricardo/carrot-trail/game/service"
	"github.com/wricardo/carrot-trail/game/session"
	"github.com/wricardo/carrot-trail/transport/mcp"
	"github.com/wricardo/carrot-trail/transport/websocket"
	"github.com/wricardo/carrot-trail/tui"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Carrot Trail"
)

const (
	sessionCleanupInterval = time.Hour
	sessionMaxIdle         = 24 * time.Hour
)

// newCommand builds the CLI. Flags on the root are shared by all modes.
func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "carrot-trail",
		Usage:   "tile-grid puzzle game server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "levels-dir",
				Value:   "levels",
				Usage:   "directory containing level files",
				Sources: cli.EnvVars("LEVELS_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Before: setupLogging,
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action:  runServer,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "run MCP stdio server, using an internal HTTP server when none is running",
				Action:  runStdioMCP,
			},
			{
				Name:      "play",
				Usage:     "play a level in the terminal",
				ArgsUsage: "[level-id]",
				Action:    runPlay,
			},
		},
	}
}

// main loads .env, then runs the selected mode until interrupted.
func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Warn("error loading .env file")
		}
	} else {
		log.Info("loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if cmd.Bool("debug") {
		log.SetLevel(log.DebugLevel)
		log.SetReportCaller(true)
	}
	return ctx, nil
}

// runtime holds the wired services shared by the server modes.
type runtime struct {
	service  service.GameService
	sessions *session.Manager
	levels   *config.Manager
}

// initializeServices wires the session and level managers into the game service.
func initializeServices(levelsDir string) (*runtime, error) {
	levels, err := config.NewManager(levelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create level catalogue: %w", err)
	}

	sessions := session.NewManager()
	return &runtime{
		service:  service.NewGameService(sessions, levels),
		sessions: sessions,
		levels:   levels,
	}, nil
}

// mcpHandler serves MCP JSON-RPC messages over plain HTTP POST.
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newRouter mounts the REST API at the root and the MCP endpoint at /mcp.
func newRouter(apiServer *api.Server, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mainRouter
}

// runServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled it also provisions a public tunnel.
func runServer(ctx context.Context, cmd *cli.Command) error {
	rt, err := initializeServices(cmd.String("levels-dir"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go rt.sessions.RunCleanup(ctx, sessionCleanupInterval, sessionMaxIdle)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	mainRouter := newRouter(api.NewServer(rt.service, hub), mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.WithFields(log.Fields{
			"addr":      addr,
			"rest":      fmt.Sprintf("http://%s/api", addr),
			"websocket": fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp":       fmt.Sprintf("http://%s/mcp", addr),
			"version":   Version,
		}).Info("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), mainRouter)
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serverErr:
		cancel()
		wg.Wait()
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info("server stopped")
	return nil
}

// runNgrok serves handler through an ngrok tunnel until ctx is done.
func runNgrok(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	log.Info("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.WithField("domain", domain).Info("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.WithError(err).Error("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.WithFields(log.Fields{
		"url":       ngrokURL,
		"rest":      ngrokURL + "/api",
		"websocket": ngrokURL + "/ws?session=<session_id>",
		"mcp":       ngrokURL + "/mcp",
	}).Info("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.WithError(err).Error("ngrok server error")
	}
	log.Info("ngrok tunnel closed")
}

// externalAPIAvailable reports whether an API server answers at baseURL.
func externalAPIAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves the REST API on a random loopback port and
// returns its base URL.
func startInternalAPI(ctx context.Context, rt *runtime) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to get available port: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	httpServer := &http.Server{Handler: api.NewServer(rt.service, hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("internal HTTP server error")
		}
	}()
	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	return fmt.Sprintf("http://%s", listener.Addr().String()), nil
}

// runStdioMCP runs an MCP stdio server. It reuses an API server already
// listening on host:port; otherwise it starts an internal one.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	// stdout carries the MCP protocol
	log.SetOutput(os.Stderr)

	baseURL := fmt.Sprintf("http://%s:%d", cmd.String("host"), cmd.Int("port"))
	if externalAPIAvailable(ctx, baseURL) {
		log.WithField("url", baseURL).Info("external API server found, using it for MCP")
	} else {
		rt, err := initializeServices(cmd.String("levels-dir"))
		if err != nil {
			return err
		}
		go rt.sessions.RunCleanup(ctx, sessionCleanupInterval, sessionMaxIdle)

		baseURL, err = startInternalAPI(ctx, rt)
		if err != nil {
			return err
		}
		log.WithField("url", baseURL).Info("started internal HTTP server for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// loadPlayLevel returns the named level, or the catalogue default when
// id is empty. Without a levels directory the built-in level is used.
func loadPlayLevel(levelsDir, id string) (*engine.LevelConfig, error) {
	levels, err := config.NewManager(levelsDir)
	if err != nil {
		if id != "" {
			return nil, err
		}
		log.WithError(err).Warn("using the built-in level")
		return engine.DefaultLevelConfig(), nil
	}
	if id == "" {
		return levels.GetDefault(), nil
	}
	return levels.LoadConfig(id)
}

// runPlay runs the terminal front end on one level.
func runPlay(ctx context.Context, cmd *cli.Command) error {
	level, err := loadPlayLevel(cmd.String("levels-dir"), cmd.Args().First())
	if err != nil {
		return err
	}

	e, err := engine.NewEngine(level)
	if err != nil {
		return err
	}

	// The alt screen owns the terminal while playing.
	log.SetOutput(io.Discard)

	p := tea.NewProgram(tui.NewModel(e), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
