package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/promptlab/promptlab/am"
	"github.com/promptlab/promptlab/errors"
	"github.com/promptlab/promptlab/logger"
	"github.com/promptlab/promptlab/ollama"
	"github.com/promptlab/promptlab/server"
)

// ServeCmd starts the PromptLab web server
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the PromptLab web server",
	Long: `Launch the PromptLab server: prompt library API, Ollama-backed
refinement and test runs, and the web frontend.`,
	RunE: runServe,
}

var (
	servePort      int
	serveHost      string
	serveWWW       string
	serveNoBrowser bool
	serveDBPath    string
)

func init() {
	ServeCmd.Flags().IntVar(&servePort, "port", 0, "Server port (overrides config)")
	ServeCmd.Flags().StringVar(&serveHost, "host", "", "Bind address (overrides config)")
	ServeCmd.Flags().StringVar(&serveWWW, "www", "", "Frontend assets directory (overrides config)")
	ServeCmd.Flags().BoolVar(&serveNoBrowser, "no-browser", false, "Disable automatic browser opening")
	ServeCmd.Flags().StringVar(&serveDBPath, "db-path", "", "Custom database path (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	verbosity, _ := cmd.Flags().GetCount("verbose")
	if verbosity == 0 {
		verbosity = 1
		if err := logger.Initialize(false, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if serveWWW != "" {
		cfg.Server.StaticDir = serveWWW
	}

	port := cfg.GetServerPort()
	if servePort != 0 {
		port = servePort
	}

	dbPath := serveDBPath
	if dbPath == "" {
		dbPath, err = resolveDatabasePath()
		if err != nil {
			return err
		}
	}

	database, err := openDatabase(dbPath)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer database.Close()

	// Meta-prompts with live reload on file changes
	metaPrompts, mpErr := am.LoadMetaPrompts(cfg.Prompts.Path)
	if mpErr != nil {
		logger.Warnw("Using built-in refinement template", "path", cfg.Prompts.Path, "error", mpErr)
	}

	ollamaClient := ollama.NewClient(ollama.Config{
		Endpoint:        cfg.Ollama.Endpoint,
		Model:           cfg.Ollama.Model,
		Temperature:     cfg.Ollama.Temperature,
		TimeoutSeconds:  cfg.Ollama.TimeoutSeconds,
		MaxRetries:      cfg.Ollama.MaxRetries,
		CacheTTLSeconds: cfg.Ollama.CacheTTLSeconds,
		MetaPrompts:     metaPrompts,
		Logger:          logger.Logger,
	})

	printStartupBanner(verbosity, dbPath)
	runStartupChecks(cfg, ollamaClient)

	srv := server.New(cfg, database, ollamaClient, logger.Logger)

	if cfg.Prompts.Path != "" {
		watcher, err := am.NewPromptsWatcher(metaPrompts)
		if err != nil {
			logger.Warnw("Prompts file watching disabled", "error", err)
		} else {
			watcher.OnReload(func(c *am.MetaPromptConfig) {
				logger.Infow("Refinement template reloaded", "path", metaPrompts.Path())
			})
			watcher.Start()
			srv.SetPromptsWatcher(watcher)
		}
	}

	var browserFunc func(string)
	if !serveNoBrowser {
		browserFunc = openBrowser
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(port, browserFunc)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return errors.Wrap(err, "server failed to start")
	case <-sigChan:
		pterm.Info.Println("\nShutting down gracefully (press Ctrl+C again to force)...")

		shutdownDone := make(chan error, 1)
		go func() {
			shutdownDone <- srv.Stop()
		}()

		select {
		case err := <-shutdownDone:
			if err != nil {
				return fmt.Errorf("shutdown error: %w", err)
			}
			pterm.Success.Println("Server stopped cleanly")
			return nil
		case <-sigChan:
			pterm.Warning.Println("\nForce shutdown - exiting immediately")
			os.Exit(1)
			return nil // unreachable
		}
	}
}

// runStartupChecks probes the Ollama server and warns about problems
// without blocking startup. The UI keeps working for library-only use
// when the model server is down.
func runStartupChecks(cfg *am.Config, client *ollama.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status := client.CheckConnection(ctx)
	if !status.Connected {
		pterm.Warning.Printf("Ollama is not reachable at %s\n", status.Endpoint)
		pterm.Warning.Println("Refinement and test runs will fail until it is started (try: ollama serve)")
		return
	}
	pterm.Success.Printf("Ollama connected at %s\n", status.Endpoint)

	if models, err := client.ListModels(ctx, true); err == nil {
		if len(models) == 0 {
			pterm.Warning.Printf("No models installed (try: ollama pull %s)\n", cfg.Ollama.Model)
		} else {
			pterm.Info.Printf("%d models available\n", len(models))
		}
	}

	checkServerVersion(ctx, cfg, client)
}

// checkServerVersion warns when the Ollama server is older than the
// configured minimum. Version problems never block startup.
func checkServerVersion(ctx context.Context, cfg *am.Config, client *ollama.Client) {
	if cfg.Ollama.MinServerVersion == "" {
		return
	}

	constraint, err := semver.NewConstraint(cfg.Ollama.MinServerVersion)
	if err != nil {
		logger.Warnw("Invalid min_server_version constraint", "constraint", cfg.Ollama.MinServerVersion, "error", err)
		return
	}

	versionStr, err := client.ServerVersion(ctx)
	if err != nil {
		logger.Debugw("Could not read Ollama server version", "error", err)
		return
	}

	serverVersion, err := semver.NewVersion(versionStr)
	if err != nil {
		logger.Debugw("Unparseable Ollama server version", "version", versionStr, "error", err)
		return
	}

	if !constraint.Check(serverVersion) {
		pterm.Warning.Printf("Ollama server %s is older than the supported minimum (%s)\n",
			versionStr, cfg.Ollama.MinServerVersion)
	}
}

// openBrowser attempts to open the URL in the default browser
func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "darwin":
		err = exec.Command("open", url).Start()
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("cmd", "/c", "start", url).Start()
	}
	// Silently ignore errors - user can manually open the URL
	_ = err
}
