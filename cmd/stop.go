package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/axiom-sh/axiom/internal/durations"
	"github.com/axiom-sh/axiom/internal/proc"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running driver",
	RunE: func(cmd *cobra.Command, args []string) error {
		pidfile, err := pidfileFromFlags(cmd)
		if err != nil {
			return err
		}

		st := proc.CheckStatus(pidfile, proc.OSProbe{})
		if !st.Running {
			if st.Stale {
				fmt.Printf("Driver not running (stale pidfile, pid=%d); removing %s\n", st.PID, pidfile)
				if err := os.Remove(pidfile); err != nil && !os.IsNotExist(err) {
					zap.S().Warnw("failed to remove stale pidfile", "error", err)
				}
			} else {
				fmt.Printf("Driver not running (pidfile: %s)\n", pidfile)
			}
			return nil
		}

		timeoutStr, _ := cmd.Flags().GetString("timeout")
		secs, err := durations.ParseSeconds(timeoutStr)
		if err != nil {
			return fmt.Errorf("invalid --timeout: %w", err)
		}
		force, _ := cmd.Flags().GetBool("force")

		fmt.Printf("Stopping driver (pid %d)...\n", st.PID)
		if !proc.Stop(proc.OSProbe{}, st.PID, time.Duration(secs*float64(time.Second)), force) {
			return fmt.Errorf("process %d did not exit within %s (try --force)", st.PID, timeoutStr)
		}
		fmt.Println("Driver stopped.")
		return nil
	},
}

func init() {
	stopCmd.Flags().String("pidfile", "", "Pidfile path to stop (defaults to $AXIOM_PIDFILE or <dir>/axiom.pid)")
	stopCmd.Flags().String("dir", "", "Output directory used to derive the default pidfile")
	stopCmd.Flags().String("timeout", "10s", "How long to wait for a graceful exit")
	stopCmd.Flags().Bool("force", false, "Send SIGKILL if the graceful stop times out")
	rootCmd.AddCommand(stopCmd)
}
