package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/axiom-sh/axiom/internal/proc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the driver is running",
	Long:  "Check whether the driver is running.\n\nExit codes:\n  0: running\n  1: not running (or missing pidfile)",
	RunE: func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")

		pidfile, err := pidfileFromFlags(cmd)
		if err != nil {
			return err
		}

		st := proc.CheckStatus(pidfile, proc.OSProbe{})
		if st.Running {
			if !quiet {
				fmt.Printf("RUNNING pid=%d pidfile=%s\n", st.PID, st.Pidfile)
			}
			return nil
		}

		if !quiet {
			switch {
			case st.PID == 0:
				fmt.Printf("NOT RUNNING (pidfile missing/empty) pidfile=%s\n", st.Pidfile)
			case st.Stale:
				fmt.Printf("NOT RUNNING (stale pidfile) pid=%d pidfile=%s\n", st.PID, st.Pidfile)
			default:
				fmt.Printf("NOT RUNNING pidfile=%s\n", st.Pidfile)
			}
		}
		os.Exit(1)
		return nil
	},
}

func init() {
	statusCmd.Flags().String("pidfile", "", "Pidfile path to check (defaults to $AXIOM_PIDFILE or <dir>/axiom.pid)")
	statusCmd.Flags().String("dir", "", "Output directory used to derive the default pidfile")
	statusCmd.Flags().BoolP("quiet", "q", false, "Only use the exit code; print nothing")
	rootCmd.AddCommand(statusCmd)
}
