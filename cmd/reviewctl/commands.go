package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/uwdate/review-backend/internal/attachments"
	"github.com/uwdate/review-backend/internal/client"
	"github.com/uwdate/review-backend/internal/dto"
)

var errUsage = errors.New("invalid usage")

type cli struct {
	api      client.Client
	stdout   io.Writer
	evidence func(ctx context.Context) (attachments.Store, error)
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "list":
		reviews, err := c.api.ListReviews(ctx)
		if err != nil {
			return err
		}
		return c.print(reviews)

	case "search":
		if len(rest) != 1 {
			return errUsage
		}
		result, err := c.api.SearchReviews(ctx, rest[0])
		if err != nil {
			return err
		}
		return c.print(result)

	case "submit":
		return c.submit(ctx, rest)

	case "report":
		return c.report(ctx, rest)

	case "stats":
		stats, err := c.api.Stats(ctx)
		if err != nil {
			return err
		}
		return c.print(stats)

	case "health":
		health, err := c.api.Health(ctx)
		if err != nil {
			return err
		}
		return c.print(health)

	case "evidence":
		return c.copyEvidence(ctx, rest)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func (c *cli) submit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	file := fs.String("f", "", "review fields as JSON")
	evidence := fs.String("evidence", "", "comma-separated image paths")
	if err := fs.Parse(args); err != nil || *file == "" {
		return errUsage
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	var s client.Submission
	if err := json.Unmarshal(raw, &s.Review); err != nil {
		return fmt.Errorf("decode %s: %w", *file, err)
	}
	for _, path := range strings.Split(*evidence, ",") {
		if path = strings.TrimSpace(path); path == "" {
			continue
		}
		f, err := readEvidence(path)
		if err != nil {
			return err
		}
		s.Evidence = append(s.Evidence, f)
	}

	resp, err := c.api.SubmitReview(ctx, s)
	if err != nil {
		return err
	}
	return c.print(resp)
}

func readEvidence(path string) (client.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return client.File{}, err
	}
	return client.File{
		Name:        filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}

func (c *cli) report(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var req dto.ReportReviewRequest
	fs.StringVar(&req.Reason, "reason", "", "why the review should be looked at")
	fs.StringVar(&req.Details, "details", "", "extra context")
	fs.StringVar(&req.ReporterEmail, "email", "", "reporter contact")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}

	resp, err := c.api.ReportReview(ctx, fs.Arg(0), req)
	if err != nil {
		return err
	}
	return c.print(resp)
}

func (c *cli) copyEvidence(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("evidence", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	out := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}

	s, err := c.evidence(ctx)
	if err != nil {
		return err
	}
	src, err := s.Open(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	defer src.Close()

	if *out == "" {
		_, err = io.Copy(c.stdout, src)
		return err
	}
	dst, err := os.Create(*out)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
