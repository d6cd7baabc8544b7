package grid

import "github.com/charmbracelet/datagrid/internal/csync"

// Registry maps formatter and editor names to implementations, so that
// columns declared in configuration can refer to them.
type Registry struct {
	formatters *csync.Map[string, Formatter]
	editors    *csync.Map[string, EditorFactory]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		formatters: csync.NewMap[string, Formatter](),
		editors:    csync.NewMap[string, EditorFactory](),
	}
}

// DefaultRegistry is the registry used by packages registering built-ins.
var DefaultRegistry = NewRegistry()

// RegisterFormatter adds or replaces a formatter.
func (r *Registry) RegisterFormatter(name string, f Formatter) {
	r.formatters.Set(name, f)
}

// Formatter looks up a formatter by name.
func (r *Registry) Formatter(name string) (Formatter, bool) {
	return r.formatters.Get(name)
}

// RegisterEditor adds or replaces an editor factory.
func (r *Registry) RegisterEditor(name string, f EditorFactory) {
	r.editors.Set(name, f)
}

// Editor looks up an editor factory by name.
func (r *Registry) Editor(name string) (EditorFactory, bool) {
	return r.editors.Get(name)
}

// FormatterNames returns the registered formatter names.
func (r *Registry) FormatterNames() []string { return r.formatters.Keys() }

// EditorNames returns the registered editor names.
func (r *Registry) EditorNames() []string { return r.editors.Keys() }
