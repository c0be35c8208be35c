package domain

import "strings"

type View string

const (
	ViewConfigurator View = "configurator"
	ViewCheckout     View = "checkout"
)

const (
	PathConfigurator = "/dat-in"
	PathCheckout     = "/order-page"
)

// Transition is the outcome of a navigation request: either a new active
// view, or a full navigation to Redirect.
type Transition struct {
	View     View
	Redirect string
}

func (t Transition) External() bool { return t.Redirect != "" }

// Navigate maps a navigation path onto the view state. Only site-local
// absolute paths may leave the flow.
func Navigate(current View, path string) (Transition, error) {
	switch path {
	case PathConfigurator:
		return Transition{View: ViewConfigurator}, nil
	case PathCheckout:
		return Transition{View: ViewCheckout}, nil
	}
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.Contains(path, "\\") {
		return Transition{View: current}, ErrInvalidPath
	}
	return Transition{View: current, Redirect: path}, nil
}

func ParseView(s string) View {
	if View(s) == ViewCheckout {
		return ViewCheckout
	}
	return ViewConfigurator
}
