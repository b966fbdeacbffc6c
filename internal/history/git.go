package history

import (
	"bytes"
	"os/exec"
	"strings"
)

// ResolveCommit returns the short HEAD commit of the repository containing
// dir, or "" when dir is not inside a git checkout.
func ResolveCommit(dir string) string {
	cmd := exec.Command("git", "-C", dir, "rev-parse", "--short=12", "HEAD")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return ""
	}
	return strings.TrimSpace(stdout.String())
}
