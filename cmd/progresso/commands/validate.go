package commands

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	progresso "github.com/axondata/go-progresso"
	"github.com/axondata/go-progresso/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Parse a target document and show the planned actions",
	Long: `Parse a target document strictly and list, for every entry, the action
a run would take. Nothing is started or stopped.

Without an argument the configured input document is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		path = cfg.Input
	}

	doc, err := progresso.LoadTargets(path, progresso.LoadOptions{Strict: true})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d service(s)\n", path, doc.Len())
	if doc.Len() == 0 {
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"#", "Name", "End mode", "Action"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for i := range doc.Services {
		svc := &doc.Services[i]
		action := svc.Intent().String()
		if !svc.HasName() {
			action = "skip (no name)"
		}
		table.Append([]string{strconv.Itoa(i + 1), svc.Name, svc.EndMode, action})
	}
	table.Render()
	return nil
}
