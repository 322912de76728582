package sender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// CmdResult captures one external command invocation.
type CmdResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// RunCmd executes an external command in dir. Injectable so tests can
// observe the exact command protocol.
type RunCmd func(ctx context.Context, dir string, args ...string) CmdResult

func runCmd(ctx context.Context, dir string, args ...string) CmdResult {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	if err != nil {
		code = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
	}
	return CmdResult{ExitCode: code, Stdout: stdout.String(), Stderr: stderr.String()}
}

// GitSender commits each delivered file into a working tree and
// optionally pushes HEAD to <Remote>/<Branch>. Authentication must
// already be configured (ssh key or credential helper).
type GitSender struct {
	RepoDir string
	Remote  string
	Branch  string
	Push    bool

	// Run defaults to invoking the git CLI.
	Run RunCmd
}

// NewGitSender applies the origin/main defaults.
func NewGitSender(repoDir, remote, branch string, push bool) *GitSender {
	if remote == "" {
		remote = "origin"
	}
	if branch == "" {
		branch = "main"
	}
	return &GitSender{RepoDir: repoDir, Remote: remote, Branch: branch, Push: push, Run: runCmd}
}

func (g *GitSender) Mode() string { return "git" }

// Send stages filePath, commits it with message, and pushes when the
// configured Push policy says so.
func (g *GitSender) Send(ctx context.Context, filePath, message string) error {
	return g.SendPush(ctx, filePath, message, g.Push)
}

// SendPush is Send with an explicit push decision for this delivery;
// the driver uses it to batch pushes across capture cycles. A push is
// only ever attempted when the configured Push policy also allows it.
func (g *GitSender) SendPush(ctx context.Context, filePath, message string, push bool) error {
	res := g.run(ctx, "git", "rev-parse", "--is-inside-work-tree")
	if res.ExitCode != 0 {
		return fmt.Errorf("%w: %s: %s", ErrNotARepo, g.RepoDir, strings.TrimSpace(res.Stderr))
	}

	// Stage with a repo-relative path when the file lives inside the tree.
	target := filePath
	if rel, err := filepath.Rel(g.RepoDir, filePath); err == nil && !strings.HasPrefix(rel, "..") {
		target = rel
	}
	if err := requireOK(g.run(ctx, "git", "add", "--", target), "git add"); err != nil {
		return err
	}

	// Exit 0 means nothing is staged: the file was already committed.
	// Skipping commit and push keeps re-delivery idempotent.
	res = g.run(ctx, "git", "diff", "--cached", "--quiet")
	if res.ExitCode == 0 {
		return nil
	}
	if res.ExitCode != 1 {
		return requireOK(res, "git diff --cached")
	}

	if err := requireOK(g.run(ctx, "git", "commit", "-m", message), "git commit"); err != nil {
		return err
	}

	if !push || !g.Push {
		return nil
	}
	return requireOK(g.run(ctx, "git", "push", g.Remote, "HEAD:"+g.Branch), "git push")
}

func (g *GitSender) run(ctx context.Context, args ...string) CmdResult {
	runner := g.Run
	if runner == nil {
		runner = runCmd
	}
	return runner(ctx, g.RepoDir, args...)
}

func requireOK(res CmdResult, what string) error {
	if res.ExitCode == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s exited %d\nstdout:\n%s\nstderr:\n%s",
		ErrDeliveryFailed, what, res.ExitCode, res.Stdout, res.Stderr)
}
