package tui

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// clipboardCommands are tried in order; the first installed one wins.
var clipboardCommands = []string{
	"wl-copy",
	"xclip -selection clipboard",
	"xsel --clipboard --input",
}

// detectClipboardCommand returns the configured command or the first
// installed clipboard tool.
func detectClipboardCommand(configured string, lookPath func(string) (string, error)) string {
	if configured != "" {
		return configured
	}
	for _, cmd := range clipboardCommands {
		if _, err := lookPath(strings.Fields(cmd)[0]); err == nil {
			return cmd
		}
	}
	return ""
}

// copyText pipes text into the clipboard command.
func copyText(text, command string) error {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return fmt.Errorf("no clipboard command available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := exec.CommandContext(ctx, parts[0], parts[1:]...)
	c.Stdin = strings.NewReader(text)
	return c.Run()
}
