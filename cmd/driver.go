package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/axiom-sh/axiom/internal/config"
	"github.com/axiom-sh/axiom/internal/driver"
	"github.com/axiom-sh/axiom/internal/proc"
	"github.com/axiom-sh/axiom/internal/screen"
)

var driverCmd = &cobra.Command{
	Use:   "driver",
	Short: "Run the long-lived capture driver",
	Long:  "Run as a long-lived driver process that captures a screenshot every interval.\nStop with Ctrl+C or 'axiom stop'.",
	RunE: func(cmd *cobra.Command, args []string) error {
		capOpts, err := captureOptionsFromFlags(cmd)
		if err != nil {
			return err
		}
		interval, _ := cmd.Flags().GetString("interval")
		pidfile, _ := cmd.Flags().GetString("pidfile")
		csvPath, _ := cmd.Flags().GetString("checkpoint-csv")

		resolved, err := config.ResolveDriver(config.DriverOptions{
			CaptureOptions: capOpts,
			Interval:       interval,
			Pidfile:        pidfile,
			CheckpointCSV:  csvPath,
		})
		if err != nil {
			return err
		}

		sink, err := senderFromFlags(cmd)
		if err != nil {
			return err
		}

		maxShots, _ := cmd.Flags().GetInt("max-shots")
		if maxShots < 0 {
			return fmt.Errorf("--max-shots must be >= 0")
		}
		pushEvery, _ := cmd.Flags().GetInt("git-push-every")
		if pushEvery < 1 {
			return fmt.Errorf("--git-push-every must be >= 1")
		}

		d := driver.New(resolved, screen.OSBackend{}, sink, proc.OSProbe{}, zap.L())
		d.MaxShots = maxShots
		d.PushEvery = pushEvery

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		region := ""
		if resolved.Region != nil {
			region = resolved.Region.String()
		}
		fmt.Printf("Driver started:\n- out_dir: %s\n- interval: %g seconds\n- display: %d\n- region: %s\n- pidfile: %s\n- checkpoints: %s\n",
			resolved.OutDir, resolved.IntervalSeconds, resolved.Display, region, resolved.Pidfile, resolved.CheckpointCSV)

		return d.Run(ctx)
	},
}

func init() {
	driverCmd.Flags().StringP("interval", "i", "", "Capture interval like 10s, 1m, 2h (defaults to $AXIOM_INTERVAL_SECONDS or 5)")
	driverCmd.Flags().String("pidfile", "", "Pidfile path (defaults to $AXIOM_PIDFILE or <dir>/axiom.pid)")
	driverCmd.Flags().String("checkpoint-csv", "", "Checkpoint log path (defaults to $AXIOM_CHECKPOINT_CSV or <dir>/axiom_checkpoints.csv)")
	driverCmd.Flags().Int("max-shots", 0, "Stop after this many captures (0 = run until stopped)")
	driverCmd.Flags().Int("git-push-every", 1, "Push every N captures; commit-only in between")
	addCaptureFlags(driverCmd)
	addSendFlags(driverCmd)
	rootCmd.AddCommand(driverCmd)
}
