package cli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/turtle/internal/config"
	"github.com/aretw0/turtle/pkg/adapters/file"
)

// RenderResult summarizes one script rendering.
type RenderResult struct {
	Lines    int
	Rejected int
	Output   string
}

// RunRender replays a script file headlessly and writes the canvas as PNG.
func RunRender(ctx context.Context, opts RunOptions, script, output string) (RenderResult, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return RenderResult{}, err
	}
	logger := createLogger(cfg)

	stores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return RenderResult{}, err
	}
	defer stores.Close()

	return render(ctx, cfg, stores, logger, script, output)
}

func render(ctx context.Context, cfg config.Config, stores *Stores, logger *slog.Logger, script, output string) (RenderResult, error) {
	if output == "" {
		output = defaultOutput(script)
	}

	t := newTurtle(cfg, stores, logger, turtleHeadless(cfg)...)
	reports, err := replayFile(ctx, t.Session, script)
	if err != nil {
		return RenderResult{}, err
	}

	res := RenderResult{Lines: len(reports), Output: output}
	for i, rep := range reports {
		if !rep.Accepted || rep.Err != nil {
			res.Rejected++
			logger.Warn("line failed", "script", script, "line", i+1, "text", rep.Line, "err", rep.Err)
		}
	}

	var buf bytes.Buffer
	if err := t.WritePNG(&buf); err != nil {
		return res, fmt.Errorf("failed to encode canvas: %w", err)
	}
	out := file.NewImageStore(filepath.Dir(output))
	if err := out.Save(ctx, filepath.Base(output), buf.Bytes()); err != nil {
		return res, fmt.Errorf("failed to write %s: %w", output, err)
	}
	logger.Debug("canvas rendered", "script", script, "output", output, "lines", res.Lines)
	return res, nil
}

// defaultOutput swaps the script extension for .png.
func defaultOutput(script string) string {
	ext := filepath.Ext(script)
	return script[:len(script)-len(ext)] + file.ImageExt
}
