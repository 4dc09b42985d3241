package scene

import "github.com/Carmen-Shannon/oxy-scene/engine/command"

// Node is the root handed over by the content callback. It flattens to the frame's
// ordered draw commands.
type Node interface {
	// DrawCommands returns the node's commands in draw order.
	//
	// Returns:
	//   - []command.Command: the flattened commands
	DrawCommands() []command.Command
}

// NodeFunc adapts a function to a Node.
type NodeFunc func() []command.Command

func (f NodeFunc) DrawCommands() []command.Command { return f() }

type commands []command.Command

func (c commands) DrawCommands() []command.Command { return c }

// Commands is a leaf node emitting cmds in order. Nil commands are dropped.
func Commands(cmds ...command.Command) Node {
	out := make(commands, 0, len(cmds))
	for _, c := range cmds {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

type group []Node

func (g group) DrawCommands() []command.Command {
	var out []command.Command
	for _, n := range g {
		if n != nil {
			out = append(out, n.DrawCommands()...)
		}
	}
	return out
}

// Group concatenates the commands of its children in order.
func Group(nodes ...Node) Node {
	return group(nodes)
}
