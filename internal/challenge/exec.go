package challenge

import (
	"context"
	"io"
)

// Command adapts a challenge run to tea.ExecCommand so a running shell can
// hand the terminal over to the game and take it back afterwards.
type Command struct {
	ctx     context.Context
	manager *Manager
	game    string
	req     Request

	Result Result
}

// NewCommand prepares a challenge run for tea.Exec.
func NewCommand(ctx context.Context, m *Manager, game string, req Request) *Command {
	return &Command{ctx: ctx, manager: m, game: game, req: req}
}

func (c *Command) Run() error {
	res, err := c.manager.Play(c.ctx, c.game, c.req)
	if err != nil {
		return err
	}
	c.Result = res
	return nil
}

func (c *Command) SetStdin(r io.Reader) { c.req.Input = r }
func (c *Command) SetStdout(w io.Writer) { c.req.Output = w }
func (c *Command) SetStderr(io.Writer) {}
