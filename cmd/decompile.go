package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/windmill/internal/decompiler"
	"github.com/maxkimambo/windmill/internal/document"
	"github.com/maxkimambo/windmill/internal/logger"
	"github.com/maxkimambo/windmill/internal/utils"
)

var decompileOutput string

var decompileCmd = &cobra.Command{
	Use:   "decompile <program.star>",
	Short: "Rebuild a workflow document from a program",
	Long: `Loads a workflow program and converts it back into a document the editor
can open. Node positions are recomputed with the layered layout.

The document is written to stdout unless --output is given.

Example:
windmill decompile dags/nightly.star -o flows/nightly.wml`,
	Args: cobra.ExactArgs(1),
	RunE: runDecompile,
}

func init() {
	decompileCmd.Flags().StringVarP(&decompileOutput, "output", "o", "", "File to write the document to (default stdout)")
}

func runDecompile(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	src, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	if decompileOutput != "" {
		logger.User.Decompilef("Decompiling %s", args[0])
	}
	d := decompiler.New(cat, layoutOptions(cfg))
	doc, err := d.DecompileSource(args[0], src)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := document.Write(&buf, doc); err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), decompileOutput, buf.Bytes()); err != nil {
		return err
	}

	showSummary(func() string {
		return utils.NewBox(utils.SuccessBox, fmt.Sprintf("Decompiled %s", args[0])).
			AddField("Workflow", doc.DAG.Name).
			AddField("Nodes", strconv.Itoa(doc.Nodes.Len())).
			AddField("Links", strconv.Itoa(doc.Links.Len())).
			Render()
	})
	return nil
}
