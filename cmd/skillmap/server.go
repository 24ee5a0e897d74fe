package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/skillmap/internal/api"
	"github.com/kalambet/skillmap/internal/assistant"
	"github.com/kalambet/skillmap/internal/auth"
	"github.com/kalambet/skillmap/internal/catalog"
	"github.com/kalambet/skillmap/internal/config"
	"github.com/kalambet/skillmap/internal/dashboard"
	"github.com/kalambet/skillmap/internal/extract"
	"github.com/kalambet/skillmap/internal/learning"
	"github.com/kalambet/skillmap/internal/logging"
	"github.com/kalambet/skillmap/internal/recommend"
	"github.com/kalambet/skillmap/internal/skillapi"
	"github.com/kalambet/skillmap/internal/storage"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the skillmap server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		withMCP, _ := cmd.Flags().GetBool("mcp")
		return runServer(withMCP)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running skillmap server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show skillmap system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func init() {
	serveCmd.Flags().Bool("mcp", false, "also serve MCP tools over stdin/stdout")
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "skillmap.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

// loadCatalog returns the catalog at path, or the embedded one when path is empty.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}

// newExtractor wires the remote classification service when it is enabled.
func newExtractor(cfg config.SkillAPIConfig, cat *catalog.Catalog) *extract.Extractor {
	var remote extract.Remote
	if cfg.Enabled && cfg.BaseURL != "" {
		remote = skillapi.New(cfg.BaseURL)
	}
	return extract.New(remote, cat, cfg.Timeout)
}

func runServer(withMCP bool) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	logCloser := logging.Setup(cfg.Log)
	defer logCloser.Close()
	slog.Info("skillmap starting", "version", version)

	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("skillmap is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("skillmap is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printStep("Opening storage in %s", cfg.Storage.DataDir)
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("closing storage", "error", err)
		}
	}()

	cat, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token issuer: %w", err)
	}

	extractor := newExtractor(cfg.SkillAPI, cat)
	slog.Info("skill extractor ready", "remote", cfg.SkillAPI.Enabled, "status", extractor.Status(ctx))

	sel := recommend.NewSelector(cat, recommend.NewRand(uint64(cfg.Assistant.Seed)))
	svc := assistant.NewService(assistant.NewDispatcher(cat, sel), assistant.NewLog(cfg.Assistant.HistoryLimit))
	analyzer := learning.NewAnalyzer(sel)

	handler := api.NewAppHandler(api.AppDeps{
		Store:          store,
		Issuer:         issuer,
		Catalog:        cat,
		Extractor:      extractor,
		Assistant:      svc,
		Selector:       sel,
		Analyzer:       analyzer,
		Dashboard:      dashboard.NewManager(store),
		AllowedOrigins: api.ParseOrigins(cfg.Server.AllowedOrigins),
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	printStep("Serving on %s", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	var extra []func(context.Context) error
	if withMCP {
		mcpSrv := api.NewMCPServer(api.MCPDeps{
			Store:     store,
			Catalog:   cat,
			Extractor: extractor,
			Assistant: svc,
			Selector:  sel,
			Analyzer:  analyzer,
		})
		stdioSrv := server.NewStdioServer(mcpSrv)
		extra = append(extra, func(ctx context.Context) error {
			slog.Info("MCP server started (stdio transport)")
			if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("MCP stdio server error", "error", err)
			}
			return nil
		})
	}

	return serveUntilDone(ctx, srv, extra...)
}

// serveUntilDone runs srv and every extra task until ctx is cancelled or
// the server fails, then shuts srv down gracefully.
func serveUntilDone(ctx context.Context, srv *http.Server, extra ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	for _, task := range extra {
		g.Go(func() error { return task(gctx) })
	}

	return g.Wait()
}

func stopServer() error {
	cfg, err := config.Load(envFile)
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("skillmap is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop skillmap (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to skillmap (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load(envFile)
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port))
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	if cfg.SkillAPI.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if skillapi.New(cfg.SkillAPI.BaseURL).Healthy(ctx) {
			printStatus("Skill API", "running at %s", cfg.SkillAPI.BaseURL)
		} else {
			printStatus("Skill API", "unreachable at %s (local fallback)", cfg.SkillAPI.BaseURL)
		}
	} else {
		printStatus("Skill API", "disabled (local classifier)")
	}

	catalogSource := "embedded"
	if cfg.Catalog.Path != "" {
		catalogSource = cfg.Catalog.Path
	}
	printStatus("Catalog", "%s", catalogSource)
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}
