package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/axiom-sh/axiom/internal/screen"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "List displays detected by the capture backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		monitors, err := screen.OSBackend{}.Monitors()
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetTitle("axiom displays")
		t.AppendHeader(table.Row{"index", "left", "top", "width", "height"})
		for i, m := range monitors {
			t.AppendRow(table.Row{i, m.Left, m.Top, m.Width, m.Height})
		}
		t.Render()

		if len(monitors) > 1 {
			fmt.Println("Tip: use --display N (1..N) to capture a specific display.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
