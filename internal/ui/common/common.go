package common

import (
	"image"

	"github.com/charmbracelet/datagrid/internal/app"
	"github.com/charmbracelet/datagrid/internal/config"
	"github.com/charmbracelet/datagrid/internal/ui/styles"
	uv "github.com/charmbracelet/ultraviolet"
)

// Common holds the application and the styles shared by the UI components.
type Common struct {
	App    *app.App
	Config *config.Config
	Styles *styles.Styles
}

// DefaultCommon returns the default common UI configurations for a.
func DefaultCommon(a *app.App) *Common {
	s := styles.DefaultStyles()
	s.Apply()
	return &Common{
		App:    a,
		Config: a.Config,
		Styles: &s,
	}
}

// CenterRect returns a new [Rectangle] centered within the given area with the
// specified width and height.
func CenterRect(area uv.Rectangle, width, height int) uv.Rectangle {
	centerX := area.Min.X + area.Dx()/2
	centerY := area.Min.Y + area.Dy()/2
	minX := centerX - width/2
	minY := centerY - height/2
	maxX := minX + width
	maxY := minY + height
	return image.Rect(minX, minY, maxX, maxY)
}
