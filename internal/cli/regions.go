package cli

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	mimecast "github.com/gh-tking/mimecast-sdk"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the regional API grids",
	Run: func(cmd *cobra.Command, args []string) {
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Code", "Region", "Base URL"})
		for _, r := range mimecast.Regions() {
			t.AppendRow(table.Row{string(r), r.Description(), r.BaseURL()})
		}
		t.Render()
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)
}
