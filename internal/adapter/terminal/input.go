package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Commands are the actions available from the dashboard's input line.
type Commands struct {
	Quit    func()
	Refresh func()
}

// WatchInput reads newline-terminated commands from in: "q" calls Quit and
// returns, "r" calls Refresh. Other lines are ignored. EOF returns nil
// without quitting so a detached stdin does not stop the service.
func WatchInput(ctx context.Context, in io.Reader, cmds Commands) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "q", "quit":
			if cmds.Quit != nil {
				cmds.Quit()
			}
			return nil
		case "r", "refresh":
			if cmds.Refresh != nil {
				cmds.Refresh()
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read dashboard input: %w", err)
	}
	return nil
}
