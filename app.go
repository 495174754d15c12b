package ggtest

import (
	"context"

	"github.com/gogpu/gg"

	"github.com/gogpu/ggtest/widget"
)

// Size is a frame size in pixels.
type Size struct {
	Width  uint32
	Height uint32
}

// DefaultSize is the frame size of capture events unless WithSize is given.
var DefaultSize = Size{Width: 1024, Height: 768}

func (s Size) viewport() widget.Size {
	return widget.Size{Width: float64(s.Width), Height: float64(s.Height)}
}

// Viewer is the rendering half of an application.
type Viewer interface {
	// View returns the current renderable description.
	View() widget.Element
	// Title returns the window title.
	Title() string
	// BackgroundColor returns the color frames are cleared to.
	BackgroundColor() gg.RGBA
}

// Application is a message-driven UI application with message type M.
//
// The harness only calls these methods. It never inspects the element tree
// returned by View beyond laying it out.
type Application[M any] interface {
	Viewer
	// Update applies a message and returns a command for the runtime.
	Update(msg M) Command[M]
}

// Command is a deferred side effect an application asks its runtime to
// perform. The harness models a closed system and never executes commands.
type Command[M any] struct {
	actions []func(context.Context) M
}

// None returns the empty command.
func None[M any]() Command[M] {
	return Command[M]{}
}

// Perform returns a command that runs f and feeds its result back as a
// message.
func Perform[M any](f func(context.Context) M) Command[M] {
	return Command[M]{actions: []func(context.Context) M{f}}
}

// Batch combines commands.
func Batch[M any](cmds ...Command[M]) Command[M] {
	var out Command[M]
	for _, c := range cmds {
		out.actions = append(out.actions, c.actions...)
	}
	return out
}

// Len returns the number of actions in the command.
func (c Command[M]) Len() int { return len(c.actions) }

// Execute runs the actions in order and returns the produced messages.
// Runtimes that do run commands use it; Run does not.
func (c Command[M]) Execute(ctx context.Context) []M {
	out := make([]M, 0, len(c.actions))
	for _, f := range c.actions {
		out = append(out, f(ctx))
	}
	return out
}
