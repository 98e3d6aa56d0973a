package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/user/linkcard/internal/app"
	"github.com/user/linkcard/internal/compile"
	"github.com/user/linkcard/pkg/config"
	"github.com/user/linkcard/pkg/logger"
)

func main() {
	var (
		input       = flag.String("in", ".", "Markdown file or directory to compile")
		output      = flag.String("out", "public", "Directory receiving the generated HTML")
		envFile     = flag.String("env", ".env", "Optional .env file with configuration")
		target      = flag.String("target", "", "Card link target (overrides LINKCARD_TARGET)")
		classPrefix = flag.String("class-prefix", "", "Class name prefix (overrides LINKCARD_CLASS_PREFIX)")
	)
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *target != "" {
		cfg.Target = *target
	}
	if *classPrefix != "" {
		cfg.ClassPrefix = *classPrefix
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer zl.Sync()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to initialise application", zap.Error(err))
	}
	defer a.Close()

	n, err := compile.New(a.Converter, zl).Tree(ctx, *input, *output)
	if err != nil {
		zl.Error("compilation failed", zap.Error(err))
		a.Close()
		os.Exit(1)
	}
	zl.Info("compilation finished", zap.Int("documents", n), zap.String("output", *output))
}
