// Command ask runs the chat pipeline for prompts given on the command line or,
// without arguments, for each line read from stdin.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mapgpt/mapgpt-go/internal/app"
	"github.com/mapgpt/mapgpt-go/internal/buildinfo"
	"github.com/mapgpt/mapgpt-go/internal/chat"
	"github.com/mapgpt/mapgpt-go/internal/config"
	"github.com/mapgpt/mapgpt-go/internal/ctxutil"
	domerrors "github.com/mapgpt/mapgpt-go/internal/errors"
	"github.com/mapgpt/mapgpt-go/internal/logger"
	"github.com/mapgpt/mapgpt-go/internal/render"
)

// answerer is the part of the chat service the CLI uses.
type answerer interface {
	Answer(ctx context.Context, prompt string) (chat.Answer, error)
}

type options struct {
	html      bool
	showStage bool
	timeout   time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(buildService).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// buildService loads config and wires the same pipeline the server uses.
// Logs go to stderr so stdout only carries answers.
func buildService(ctx context.Context) (answerer, time.Duration, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, 0, err
	}
	log := logger.NewWithWriter(cfg.LogLevel, os.Stderr)
	pipeline, err := app.BuildPipeline(ctx, cfg, nil, log)
	if err != nil {
		return nil, 0, err
	}
	return pipeline.Service, cfg.RequestTimeout, nil
}

func newRootCmd(build func(context.Context) (answerer, time.Duration, error)) *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:     "ask [prompt]",
		Short:   "Ask MapGPT a question about Moshood Abiola Polytechnic",
		Long:    "Runs the MapGPT pipeline locally. With no prompt, reads one prompt per line from stdin.",
		Version: buildinfo.String(),
		// Failures are already descriptive; usage would only bury them.
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, timeout, err := build(cmd.Context())
			if err != nil {
				return err
			}
			if opts.timeout <= 0 {
				opts.timeout = timeout
			}

			if len(args) > 0 {
				return ask(cmd.Context(), cmd.OutOrStdout(), service, strings.Join(args, " "), opts)
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if err := ask(cmd.Context(), cmd.OutOrStdout(), service, line, opts); err != nil {
					// Bad input or a failed collaborator only affects this line.
					cmd.PrintErrln("Error:", err)
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().BoolVar(&opts.html, "html", false, "Print the answer rendered as sanitized HTML")
	cmd.Flags().BoolVar(&opts.showStage, "stage", false, "Print the pipeline stage before each answer")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Per-prompt timeout (default: MAPGPT_REQUEST_TIMEOUT)")
	return cmd
}

func ask(ctx context.Context, w io.Writer, service answerer, prompt string, opts options) error {
	ctx = ctxutil.WithChannel(ctx, ctxutil.ChannelCLI)
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	answer, err := service.Answer(ctx, prompt)
	if err != nil {
		return errors.New(domerrors.PublicMessage(err))
	}

	text := answer.Text
	if opts.html {
		text = render.ToHTML(text)
	}
	if opts.showStage {
		_, _ = fmt.Fprintf(w, "[%s] ", answer.Stage)
	}
	_, err = fmt.Fprintln(w, text)
	return err
}
