package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/axiom-sh/axiom/internal/config"
	"github.com/axiom-sh/axiom/internal/sender"
)

// addCaptureFlags registers the flags shared by capture and driver.
func addCaptureFlags(cmd *cobra.Command) {
	cmd.Flags().String("dir", "", "Output directory (defaults to $AXIOM_OUT_DIR or the working directory)")
	cmd.Flags().IntP("display", "d", 0, "Monitor index (0 = virtual screen, 1..N = displays; defaults to $AXIOM_DISPLAY or 1)")
	cmd.Flags().IntSlice("region", nil, "Capture region as x,y,width,height in absolute screen coordinates")
}

// addSendFlags registers the delivery sink flags.
func addSendFlags(cmd *cobra.Command) {
	cmd.Flags().String("send", "", "Delivery sink: git or http (default: none)")
	cmd.Flags().String("git-repo", "", "Git working tree that receives captures")
	cmd.Flags().String("git-remote", "origin", "Git remote to push to")
	cmd.Flags().String("git-branch", "main", "Remote branch to push to")
	cmd.Flags().Bool("git-no-push", false, "Commit locally without pushing")
	cmd.Flags().String("http-url", "", "HTTP endpoint for multipart upload")
	cmd.Flags().StringArray("http-header", nil, `Extra header as "Name: Value" (repeatable)`)
	cmd.Flags().String("http-method", "POST", "HTTP method for uploads")
	cmd.Flags().String("http-field", "file", "Multipart form field name")
}

// captureOptionsFromFlags collects the shared capture flags, tracking
// which were actually set so environment fallbacks apply.
func captureOptionsFromFlags(cmd *cobra.Command) (config.CaptureOptions, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return config.CaptureOptions{}, fmt.Errorf("failed to get working directory: %w", err)
	}

	dir, _ := cmd.Flags().GetString("dir")

	var display *int
	if cmd.Flags().Changed("display") {
		v, _ := cmd.Flags().GetInt("display")
		display = &v
	}

	var region []int
	if cmd.Flags().Changed("region") {
		region, _ = cmd.Flags().GetIntSlice("region")
	}

	return config.CaptureOptions{OutDir: dir, Display: display, Region: region, Cwd: cwd}, nil
}

// senderFromFlags builds at most one delivery sink from the --send
// mode and its sub-flags.
func senderFromFlags(cmd *cobra.Command) (sender.Sender, error) {
	mode, _ := cmd.Flags().GetString("send")
	switch mode {
	case "":
		return nil, nil

	case "git":
		repo, _ := cmd.Flags().GetString("git-repo")
		if repo == "" {
			return nil, fmt.Errorf("--send git requires --git-repo")
		}
		repo, err := filepath.Abs(repo)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve --git-repo: %w", err)
		}
		remote, _ := cmd.Flags().GetString("git-remote")
		branch, _ := cmd.Flags().GetString("git-branch")
		noPush, _ := cmd.Flags().GetBool("git-no-push")
		return sender.NewGitSender(repo, remote, branch, !noPush), nil

	case "http":
		url, _ := cmd.Flags().GetString("http-url")
		if url == "" {
			return nil, fmt.Errorf("--send http requires --http-url")
		}
		headers, _ := cmd.Flags().GetStringArray("http-header")
		for _, h := range headers {
			if !strings.Contains(h, ":") {
				return nil, fmt.Errorf("malformed --http-header %q (expected \"Name: Value\")", h)
			}
		}
		method, _ := cmd.Flags().GetString("http-method")
		field, _ := cmd.Flags().GetString("http-field")
		return sender.NewHTTPSender(url, headers, method, field), nil

	default:
		return nil, fmt.Errorf("unknown --send mode %q (expected git or http)", mode)
	}
}

// pidfileFromFlags resolves the pidfile for status/stop, honoring the
// same env vars and defaults as the driver.
func pidfileFromFlags(cmd *cobra.Command) (string, error) {
	if pidfile, _ := cmd.Flags().GetString("pidfile"); pidfile != "" {
		return filepath.Abs(pidfile)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	dir, _ := cmd.Flags().GetString("dir")
	resolved, err := config.ResolveDriver(config.DriverOptions{
		CaptureOptions: config.CaptureOptions{OutDir: dir, Cwd: cwd},
	})
	if err != nil {
		return "", err
	}
	return resolved.Pidfile, nil
}
