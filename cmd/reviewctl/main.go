// Command reviewctl talks to the review board API from a terminal. Reads
// fall back to bundled sample reviews when the API is unreachable. The
// evidence command reads uploads straight from the configured store.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/uwdate/review-backend/internal/attachments"
	"github.com/uwdate/review-backend/internal/client"
	"github.com/uwdate/review-backend/internal/config"
	"github.com/uwdate/review-backend/internal/logging"
)

const usage = `usage: reviewctl [flags] <command> [args]

commands:
  list                              approved reviews, newest first
  search <name>                     reviews about a person (2+ characters)
  submit -f review.json [-evidence a.png,b.png]
  report [-reason r] [-details d] [-email e] <reviewId>
  stats                             approved and pending counts
  health                            server health
  evidence [-o file] <filename>     copy a stored evidence file

flags:
`

func main() {
	cfg := config.Load()
	slog.SetDefault(slog.New(logging.NewHandler(os.Stderr, cfg)))

	fs := flag.NewFlagSet("reviewctl", flag.ExitOnError)
	apiURL := fs.String("api", cfg.APIURL, "API base URL (default "+client.DefaultBaseURL+")")
	noFallback := fs.Bool("no-fallback", false, "fail instead of serving sample data when the API is down")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	policy := client.DefaultPolicy()
	if *noFallback {
		policy = client.Policy{}
	}
	api := client.WithFallback(
		client.NewHTTPClient(*apiURL),
		client.NewStaticProvider(client.SampleReviews()...),
		policy,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{
		api:    api,
		stdout: os.Stdout,
		evidence: func(ctx context.Context) (attachments.Store, error) {
			return attachments.NewStore(ctx, cfg)
		},
	}
	err := c.run(ctx, fs.Args())
	if !api.Online() {
		slog.Warn("api unreachable, output may come from sample data", "api", *apiURL)
	}
	if errors.Is(err, errUsage) {
		fs.Usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("command failed", "command", fs.Arg(0), "error", err)
		os.Exit(1)
	}
}
