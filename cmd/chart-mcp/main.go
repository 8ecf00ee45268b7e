package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/chart-digitizer-mcp/internal/config"
	"github.com/ironsheep/chart-digitizer-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("chart-digitizer-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("chart-digitizer-mcp - MCP server for digitizing bar charts")
			fmt.Println()
			fmt.Println("Usage: chart-digitizer-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from .env):")
			fmt.Printf("  %s=<file>     YAML configuration file\n", config.EnvConfigPath)
			fmt.Printf("  %s=debug   Enable debug logging\n", config.EnvLogLevel)
			fmt.Printf("  %s=<dir>    Tesseract tessdata directory\n", config.EnvTessdata)
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if cfg.Debug() {
		log.Printf("Chart Digitizer MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	server.Version = Version
	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Server setup failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Server error: %v", err)
	}
}
