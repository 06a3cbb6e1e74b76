package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/windmill/internal/batch"
	"github.com/maxkimambo/windmill/internal/catalog"
	"github.com/maxkimambo/windmill/internal/compiler"
	"github.com/maxkimambo/windmill/internal/decompiler"
	"github.com/maxkimambo/windmill/internal/document"
	werrors "github.com/maxkimambo/windmill/internal/errors"
	"github.com/maxkimambo/windmill/internal/utils"
	"github.com/maxkimambo/windmill/internal/workflow"
)

var checkWorkers int

var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Check workflow documents and programs without writing anything",
	Long: `Compiles every .wml document and decompiles every .star program given,
reporting one line per file. Files are checked concurrently.

Example:
windmill check flows/*.wml dags/*.star --workers 8`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().IntVarP(&checkWorkers, "workers", "w", 0, "Number of files checked at once (default from configuration)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	workers := cfg.Check.Workers
	if checkWorkers > 0 {
		workers = checkWorkers
	}

	c := compiler.New(cat, compiler.Options{LineWidth: cfg.Compiler.LineWidth})
	d := decompiler.New(cat, layoutOptions(cfg))
	results := batch.NewPool(workers).Run(cmd.Context(), args, func(ctx context.Context, path string) (string, error) {
		return checkFile(c, d, cat, path)
	})

	tbl := utils.NewTable("FILE", "STATUS", "DETAIL")
	for _, r := range results {
		if r.Err != nil {
			tbl.AddRow(r.Path, "FAIL", firstLine(r.Err))
			continue
		}
		tbl.AddRow(r.Path, "ok", r.Summary)
	}
	if _, err := fmt.Fprint(cmd.OutOrStdout(), tbl.String()); err != nil {
		return err
	}

	if failed := batch.Failed(results); failed > 0 {
		return fmt.Errorf("%d of %d files failed the check", failed, len(results))
	}
	return nil
}

func checkFile(c *compiler.Compiler, d *decompiler.Decompiler, cat *catalog.Catalog, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".star", ".py":
		src, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read program: %w", err)
		}
		doc, err := d.DecompileSource(path, src)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d tasks, %d links", doc.Nodes.Len(), doc.Links.Len()), nil
	default:
		doc, err := document.ReadFile(path)
		if err != nil {
			return "", err
		}
		wf, err := workflow.FromDocument(doc, cat)
		if err != nil {
			return "", err
		}
		if _, err := c.CompileWorkflow(wf); err != nil {
			return "", err
		}
		return fmt.Sprintf("%d tasks, %d chains", len(wf.Tasks), len(wf.Links.Chains())), nil
	}
}

// firstLine keeps table rows on one line.
func firstLine(err error) string {
	msg := werrors.DisplayErrorSummary(err)
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}
