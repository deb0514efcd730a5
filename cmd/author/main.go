// Command author pushes question and vocabulary sets written as YAML to
// the Hangeul Lab API.
//
//	author push -server https://api.hangeul.example -cookie-file ~/.hangeul/cookie -f set.yaml -scope 12
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hangeul-lab/authoring/internal/config"
	"github.com/hangeul-lab/authoring/internal/editor"
	"github.com/hangeul-lab/authoring/internal/platform/logger"
	"github.com/hangeul-lab/authoring/pkg/sdk"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "author:", err)
		os.Exit(1)
	}
}

// pushOptions are the flags of the push command.
type pushOptions struct {
	server     string
	cookieFile string
	file       string
	scope      int64
	configPath string
	verbose    bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] != "push" {
		return errors.New("usage: author push -f <file> [-server url] [-cookie-file path] [-scope class-id]")
	}

	opts, err := parsePushFlags(args[1:], stderr)
	if err != nil {
		return err
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	log, err := logger.Setup(logger.LoggerConfig{Level: level, Output: stderr})
	if err != nil {
		return err
	}

	clientCfg, autosave, err := loadSettings(opts.configPath)
	if err != nil {
		return err
	}
	if opts.server == "" {
		opts.server = clientCfg.BaseURL
	}
	if opts.server == "" {
		return errors.New("no server given: use -server or client.base_url")
	}

	doc, err := readDocument(opts.file)
	if err != nil {
		return err
	}

	client, err := sdk.New(opts.server,
		sdk.WithCookieSource(sdk.FileCookieStore{Path: opts.cookieFile}),
		sdk.WithTimeout(clientCfg.Timeout),
		sdk.WithRetryPolicy(sdk.RetryPolicy{
			Retries:    clientCfg.Retries,
			MinTimeout: clientCfg.MinTimeout,
			MaxTimeout: clientCfg.MaxTimeout,
			Factor:     clientCfg.Factor,
		}),
		sdk.WithLogger(log))
	if err != nil {
		return err
	}

	id, err := push(ctx, client, doc, opts.scope, editor.Config{
		Debounce:    autosave.Debounce,
		SettleAfter: autosave.SettleAfter,
		Logger:      log,
	})
	if err != nil {
		return err
	}
	log.Info("document pushed", slog.String("kind", doc.Kind), slog.Int64("id", id))
	fmt.Fprintf(stdout, "%s %d\n", doc.Kind, id)
	return nil
}

func parsePushFlags(args []string, stderr io.Writer) (pushOptions, error) {
	fs := flag.NewFlagSet("push", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := pushOptions{}
	fs.StringVar(&opts.server, "server", os.Getenv("HANGEUL_CLIENT_BASE_URL"), "API base URL")
	fs.StringVar(&opts.cookieFile, "cookie-file", defaultCookieFile(), "file holding the session cookie")
	fs.StringVar(&opts.file, "f", "", "authoring file to push (- for stdin)")
	fs.Int64Var(&opts.scope, "scope", 0, "class id new sets are created in (0 for none)")
	fs.StringVar(&opts.configPath, "config", "", "config file with client settings")
	fs.BoolVar(&opts.verbose, "v", false, "log requests and retries")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.file == "" {
		return opts, errors.New("-f is required")
	}
	if opts.scope < 0 {
		return opts, fmt.Errorf("invalid -scope %d", opts.scope)
	}
	return opts, nil
}

// loadSettings returns the client and autosave settings from the config
// file, or the SDK defaults when no file is given.
func loadSettings(path string) (config.ClientConfig, config.AutosaveConfig, error) {
	if path == "" {
		client := config.ClientConfig{
			Timeout:    sdk.DefaultTimeout,
			Retries:    sdk.DefaultRetries,
			MinTimeout: sdk.DefaultMinTimeout,
			MaxTimeout: sdk.DefaultMaxTimeout,
			Factor:     sdk.DefaultFactor,
		}
		// Saves run through the close guard; autosave stays idle.
		return client, config.AutosaveConfig{Debounce: time.Minute}, nil
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return config.ClientConfig{}, config.AutosaveConfig{}, err
	}
	return cfg.Client, cfg.Autosave, nil
}

func defaultCookieFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".hangeul-cookie"
	}
	return filepath.Join(dir, "hangeul", "cookie")
}
