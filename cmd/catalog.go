package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/windmill/internal/catalog"
	"github.com/maxkimambo/windmill/internal/utils"
)

var catalogFormat string

var catalogCmd = &cobra.Command{
	Use:   "catalog [type]",
	Short: "List the task types a workflow may use",
	Long: `Prints the task catalog. With a type name, prints the parameters of that
type instead.

Example:
windmill catalog
windmill catalog BashOperator --format json`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if catalogFormat != "table" && catalogFormat != "json" {
			return fmt.Errorf("--format must be table or json, got %s", catalogFormat)
		}
		return nil
	},
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().StringVarP(&catalogFormat, "format", "f", "table", "Output format: table or json")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		descs := append([]*catalog.Descriptor{cat.Workflow()}, cat.Descriptors()...)
		if catalogFormat == "json" {
			return writeJSON(cmd, descs)
		}
		tbl := utils.NewTable("TYPE", "MODULE", "PARAMETERS", "DESCRIPTION")
		for _, d := range descs {
			tbl.AddRow(d.Type, d.Module, fmt.Sprint(len(d.Parameters)), d.Description)
		}
		_, err := fmt.Fprint(out, tbl.String())
		return err
	}

	desc, err := lookupAny(cat, args[0])
	if err != nil {
		return err
	}
	if catalogFormat == "json" {
		return writeJSON(cmd, desc)
	}
	tbl := utils.NewTable("PARAMETER", "TYPE", "REQUIRED", "DEFAULT", "FROM")
	for _, p := range desc.Parameters {
		required := ""
		if p.Required || contains(desc.Requires, p.ID) {
			required = "yes"
		}
		def := ""
		if p.Default != nil {
			def = fmt.Sprint(p.Default)
		}
		tbl.AddRow(p.ID, p.Type, required, def, p.InheritedFrom)
	}
	_, err = fmt.Fprintf(out, "%s (%s)\n\n%s", desc.Type, desc.Module, tbl.String())
	return err
}

// lookupAny finds a task type, or the workflow type by its name.
func lookupAny(cat *catalog.Catalog, name string) (*catalog.Descriptor, error) {
	if wf := cat.Workflow(); strings.EqualFold(wf.Type, name) {
		return wf, nil
	}
	return cat.Lookup(name)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
