package components

// Screen identifies one of the fixed screens the navigator can show.
type Screen int

const (
	ScreenHome Screen = iota
	ScreenAddBook
	ScreenReadingTimer
)

func (s Screen) String() string {
	switch s {
	case ScreenHome:
		return "Home"
	case ScreenAddBook:
		return "Add Book"
	case ScreenReadingTimer:
		return "Reading Timer"
	default:
		return "Unknown"
	}
}

// Navigator is a screen stack. Home sits at the bottom and is never popped.
type Navigator struct {
	stack []Screen
}

func NewNavigator() Navigator {
	return Navigator{stack: []Screen{ScreenHome}}
}

// Push shows s on top. Pushing the screen already on top is a no-op.
func (n *Navigator) Push(s Screen) {
	if n.Top() == s {
		return
	}
	n.stack = append(n.stack, s)
}

// Pop removes the top screen and reports whether anything was removed.
func (n *Navigator) Pop() bool {
	if len(n.stack) <= 1 {
		return false
	}
	n.stack = n.stack[:len(n.stack)-1]
	return true
}

func (n Navigator) Top() Screen {
	if len(n.stack) == 0 {
		return ScreenHome
	}
	return n.stack[len(n.stack)-1]
}

func (n Navigator) Depth() int {
	if len(n.stack) == 0 {
		return 1
	}
	return len(n.stack)
}

// Breadcrumb renders the stack as "Home › Reading Timer".
func (n Navigator) Breadcrumb() string {
	out := ""
	for i, s := range n.stack {
		if i > 0 {
			out += " › "
		}
		out += s.String()
	}
	if out == "" {
		return ScreenHome.String()
	}
	return out
}
