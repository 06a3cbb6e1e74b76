package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/windmill/internal/compiler"
	"github.com/maxkimambo/windmill/internal/document"
	"github.com/maxkimambo/windmill/internal/logger"
	"github.com/maxkimambo/windmill/internal/utils"
	"github.com/maxkimambo/windmill/internal/workflow"
)

var (
	compileOutput   string
	compileSkipLoad bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <document.wml>",
	Short: "Compile a workflow document into a program",
	Long: `Validates a workflow document against the task catalog, renders it as a
workflow program and loads the program to make sure it is valid.

The program is written to stdout unless --output is given.

Example:
windmill compile flows/nightly.wml -o dags/nightly.star`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "File to write the program to (default stdout)")
	compileCmd.Flags().BoolVar(&compileSkipLoad, "skip-load", false, "Do not load the rendered program")
}

func runCompile(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	doc, err := document.ReadFile(args[0])
	if err != nil {
		return err
	}

	if compileOutput != "" {
		logger.User.Compilef("Compiling %s", args[0])
	}
	wf, err := workflow.FromDocument(doc, cat)
	if err != nil {
		return err
	}
	c := compiler.New(cat, compiler.Options{
		LineWidth: cfg.Compiler.LineWidth,
		SkipLoad:  cfg.Compiler.SkipLoad || compileSkipLoad,
	})
	src, err := c.CompileWorkflow(wf)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), compileOutput, []byte(src)); err != nil {
		return err
	}

	target := compileOutput
	if target == "" {
		target = "stdout"
	}
	showSummary(func() string {
		return utils.NewBox(utils.SuccessBox, fmt.Sprintf("Compiled %s", args[0])).
			AddField("Workflow", wf.RawID()).
			AddField("Tasks", strconv.Itoa(len(wf.Tasks))).
			AddField("Chains", strconv.Itoa(len(wf.Links.Chains()))).
			AddField("Written to", target).
			Render()
	})
	return nil
}
