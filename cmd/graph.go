package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/windmill/internal/document"
	"github.com/maxkimambo/windmill/internal/graph"
	"github.com/maxkimambo/windmill/internal/workflow"
)

var graphFormat string

var graphCmd = &cobra.Command{
	Use:   "graph <document.wml>",
	Short: "Show the task graph of a workflow document",
	Long: `Prints the dependency graph of a document as the compiler sees it: tasks by
program identifier, their levels and the chains the links are written as.

Example:
windmill graph flows/nightly.wml --format dot | dot -Tsvg > nightly.svg`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		switch graphFormat {
		case "text", "dot", "json":
			return nil
		}
		return fmt.Errorf("--format must be text, dot or json, got %s", graphFormat)
	},
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().StringVarP(&graphFormat, "format", "f", "text", "Output format: text, dot or json")
}

func runGraph(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	doc, err := document.ReadFile(args[0])
	if err != nil {
		return err
	}
	wf, err := workflow.FromDocument(doc, cat)
	if err != nil {
		return err
	}

	labels := make(map[string]string, len(wf.Tasks))
	for _, t := range wf.Tasks {
		labels[t.Name] = t.TypeName
	}
	info := graph.Describe(wf.Links.Graph, labels)

	switch graphFormat {
	case "json":
		return writeJSON(cmd, info)
	case "dot":
		_, err = fmt.Fprint(cmd.OutOrStdout(), info.DOT(wf.RawID()))
	default:
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Workflow %s\n\n%s", wf.RawID(), info.Text())
	}
	return err
}
