package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/axiom-sh/axiom/internal/config"
	"github.com/axiom-sh/axiom/internal/screen"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture a single screenshot to a PNG file",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		dir, _ := cmd.Flags().GetString("dir")
		if out != "" && dir != "" {
			return fmt.Errorf("use either --out or --dir (not both)")
		}

		opts, err := captureOptionsFromFlags(cmd)
		if err != nil {
			return err
		}
		resolved, err := config.ResolveCapture(opts)
		if err != nil {
			return err
		}

		outPath := out
		if outPath == "" {
			outPath = filepath.Join(resolved.OutDir, timestampName(resolved.FilenamePrefix, time.Now()))
		} else if outPath, err = filepath.Abs(outPath); err != nil {
			return fmt.Errorf("failed to resolve --out: %w", err)
		}

		saved, err := screen.CapturePNG(screen.OSBackend{}, outPath, resolved.Display, resolved.Region)
		if err != nil {
			return err
		}
		fmt.Printf("Saved screenshot: %s\n", saved)

		sink, err := senderFromFlags(cmd)
		if err != nil {
			return err
		}
		if sink != nil {
			message := fmt.Sprintf("axiom: capture (%s)", filepath.Base(saved))
			if err := sink.Send(cmd.Context(), saved, message); err != nil {
				return err
			}
			fmt.Printf("Delivered via %s\n", sink.Mode())
		}
		return nil
	},
}

func init() {
	captureCmd.Flags().StringP("out", "o", "", "Output PNG path (defaults to a timestamped name in the output directory)")
	addCaptureFlags(captureCmd)
	addSendFlags(captureCmd)
	rootCmd.AddCommand(captureCmd)
}
