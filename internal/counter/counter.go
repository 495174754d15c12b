// Package counter is a small message-driven application used to exercise
// the harness: a number with buttons to increment and decrement it.
package counter

import (
	"strconv"

	"github.com/gogpu/gg"

	"github.com/gogpu/ggtest"
	"github.com/gogpu/ggtest/widget"
)

// Message is the counter's message type.
type Message int

const (
	Increment Message = iota
	Decrement
)

func (m Message) String() string {
	switch m {
	case Increment:
		return "Increment"
	case Decrement:
		return "Decrement"
	default:
		return "Message(" + strconv.Itoa(int(m)) + ")"
	}
}

// ParseMessage returns the message with the given name.
func ParseMessage(name string) (Message, bool) {
	switch name {
	case "Increment", "increment", "+":
		return Increment, true
	case "Decrement", "decrement", "-":
		return Decrement, true
	}
	return 0, false
}

// Flags configures a new counter.
type Flags struct {
	Start int
}

// App is the counter application.
type App struct {
	value int
}

var _ ggtest.Application[Message] = (*App)(nil)

// New returns a counter starting at flags.Start.
func New(flags Flags) (*App, ggtest.Command[Message]) {
	return &App{value: flags.Start}, ggtest.None[Message]()
}

// Value returns the current count.
func (a *App) Value() int { return a.value }

// SetValue overwrites the count.
func (a *App) SetValue(v int) { a.value = v }

func (a *App) Update(msg Message) ggtest.Command[Message] {
	switch msg {
	case Increment:
		a.value++
	case Decrement:
		a.value--
	}
	return ggtest.None[Message]()
}

func (a *App) View() widget.Element {
	return widget.Container(
		widget.Column(
			widget.Button("Increment"),
			widget.Text(strconv.Itoa(a.value)).Size(50),
			widget.Button("Decrement"),
		).Padding(20).Spacing(10).Align(widget.AlignCenter),
	).Center()
}

func (a *App) Title() string { return "Counter - ggtest" }

func (a *App) BackgroundColor() gg.RGBA { return gg.White }
