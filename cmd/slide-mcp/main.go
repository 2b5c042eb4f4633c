// Command slide-mcp serves the slide tools over MCP on stdin/stdout.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/pflag"

	"github.com/dgallion1/slidedit/internal/mcptools"
	"github.com/dgallion1/slidedit/internal/schema"
)

var version = "dev"

func main() {
	// stdout carries the protocol, so logs go to stderr.
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	variantName := pflag.String("variant", envOr("SLIDE_VARIANT", string(schema.VariantNotes)), "default template variant: footer or notes")
	pflag.Parse()

	variant, err := schema.ParseVariant(*variantName)
	if err != nil {
		log.Error("invalid variant", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := mcp.NewServer(&mcp.Implementation{Name: "slidedit", Version: version}, nil)
	mcptools.Register(srv, variant)

	log.Info("starting slide-mcp", "variant", string(variant))
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
