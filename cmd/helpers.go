package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/maxkimambo/windmill/internal/catalog"
	"github.com/maxkimambo/windmill/internal/config"
	"github.com/maxkimambo/windmill/internal/graph"
	"github.com/maxkimambo/windmill/internal/logger"
)

// loadCatalog returns the configured catalog, or the built-in one.
func loadCatalog(c *config.Config) (*catalog.Catalog, error) {
	if c.Catalog.Path == "" {
		return catalog.Default()
	}
	logger.Op.Debugf("Loading catalog from %s", c.Catalog.Path)
	return catalog.LoadFile(c.Catalog.Path)
}

func layoutOptions(c *config.Config) graph.LayoutOptions {
	return graph.LayoutOptions{
		NodeWidth:     c.Layout.NodeWidth,
		NodeHeight:    c.Layout.NodeHeight,
		SpacingFactor: c.Layout.SpacingFactor,
	}
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.User.Successf("Wrote %s", path)
	return nil
}

// showSummary prints a summary box on stderr unless output is quiet or
// stderr is not a terminal.
func showSummary(render func() string) {
	if quiet || jsonLogs || !isatty.IsTerminal(os.Stderr.Fd()) {
		return
	}
	fmt.Fprintln(os.Stderr, render())
}
