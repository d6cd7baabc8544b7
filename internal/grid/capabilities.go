package grid

import (
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/x/term"
)

// DefaultMaxCanvasHeight caps the scrollable canvas. Taller content is split
// into pages.
const DefaultMaxCanvasHeight = 1_000_000

// Capabilities describes the host terminal. It is detected once per process
// and copied into every grid.
type Capabilities struct {
	// MaxCanvasHeight is the tallest canvas the host can scroll.
	MaxCanvasHeight int
	// ScrollbarWidth is the number of columns reserved for the scrollbar.
	ScrollbarWidth int
	// ScrollbarHeight is the number of lines reserved for the horizontal
	// scrollbar.
	ScrollbarHeight int
	// Profile is the detected color profile of stdout.
	Profile colorprofile.Profile
	// Interactive reports whether stdout is a terminal.
	Interactive bool
}

var (
	capsOnce sync.Once
	caps     Capabilities
)

// DetectCapabilities returns the process-wide capability descriptor,
// detecting it on first use.
func DetectCapabilities() Capabilities {
	capsOnce.Do(func() {
		caps = Capabilities{
			MaxCanvasHeight: DefaultMaxCanvasHeight,
			ScrollbarWidth:  1,
			ScrollbarHeight: 0,
			Profile:         colorprofile.Detect(os.Stdout, os.Environ()),
			Interactive:     term.IsTerminal(os.Stdout.Fd()),
		}
		if v := os.Getenv("DATAGRID_MAX_CANVAS_HEIGHT"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				caps.MaxCanvasHeight = n
			}
		}
		slog.Debug("Detected terminal capabilities",
			"maxCanvasHeight", caps.MaxCanvasHeight,
			"profile", caps.Profile.String(),
			"interactive", caps.Interactive,
		)
	})
	return caps
}

// terminalSize measures stdout. It fails until the terminal is attached.
func terminalSize() (width, height int, err error) {
	return term.GetSize(os.Stdout.Fd())
}
