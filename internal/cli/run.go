package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/turtle"
	"github.com/aretw0/turtle/internal/presentation/tui"
	"github.com/aretw0/turtle/pkg/adapters/file"
	"github.com/aretw0/turtle/pkg/canvas"
	"github.com/aretw0/turtle/pkg/ports"
	"github.com/aretw0/turtle/pkg/runner"
	"github.com/aretw0/turtle/pkg/session"
)

// RunSession executes the interactive turtle loop.
//
// The host adapts to where it runs: JSON lines for tools, huh forms on a
// terminal, plain text on pipes, and configured answers when headless.
func RunSession(ctx context.Context, opts RunOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := createLogger(cfg)

	stores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	var (
		handler     runner.IOHandler
		interaction ports.Interaction
		extra       []turtle.Option
	)
	interactive := !opts.JSON && !opts.Headless && tui.Interactive()

	switch {
	case opts.JSON:
		handler = runner.NewJSONHandler(os.Stdin, os.Stdout)
	case interactive:
		handler = tui.NewFormHandler(tui.NewMessageRenderer(canvas.DefaultAbout))
	default:
		handler = runner.NewTextHandler(os.Stdin, os.Stdout,
			runner.WithTextHandlerRenderer(tui.NewMessageRenderer(canvas.DefaultAbout)))
	}

	switch {
	case opts.Headless:
		interaction = headlessInteraction(cfg)
	case interactive:
		interaction = &tui.FormInteraction{Names: stores.Names}
	default:
		interaction = runner.NewTextInteraction(handler)
	}
	extra = append(extra, turtle.WithInteraction(interaction))

	// JSON mode carries messages inside report records.
	if !opts.JSON {
		extra = append(extra, turtle.WithMessenger(runner.Messenger(ctx, handler)))
	}

	t := newTurtle(cfg, stores, logger, extra...)

	if opts.Script != "" {
		reports, err := replayFile(ctx, t.Session, opts.Script)
		if err != nil {
			return err
		}
		if w, ok := handler.(runner.ReportWriter); ok {
			for _, rep := range reports {
				if err := w.WriteReport(ctx, rep); err != nil {
					return fmt.Errorf("output error: %w", err)
				}
			}
		}
	}

	if !opts.Headless && !opts.JSON {
		tui.PrintBanner(os.Stdout, turtle.Version)
	}

	r := runner.NewRunner(
		runner.WithInputHandler(handler),
		runner.WithLogger(logger),
		runner.WithHeadless(opts.Headless || opts.JSON),
		runner.WithBanner("Type `about` for help, `exit` to quit."),
	)
	return r.Run(ctx, t.Session)
}

// replayFile runs every line of a script on disk through sess.
func replayFile(ctx context.Context, sess *session.Session, path string) ([]session.Report, error) {
	lines, err := readScript(ctx, path)
	if err != nil {
		return nil, err
	}
	return sess.Replay(ctx, lines), nil
}

// readScript loads a script given as a path rather than a store name.
func readScript(ctx context.Context, path string) ([]string, error) {
	store := file.NewScriptStore(filepath.Dir(path))
	lines, err := store.Load(ctx, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	return lines, nil
}
