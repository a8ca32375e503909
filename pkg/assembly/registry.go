package assembly

import "github.com/Faultbox/wowscene/pkg/scene"

// Registry records what one Assemble call has imported so far: the ModelIds
// of terrain table rows, and the node that first loaded each file.
type Registry struct {
	ids     map[string]struct{}
	idOrder []string
	nodes   map[string]*scene.Node
	failed  map[string]error
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ids:    make(map[string]struct{}),
		nodes:  make(map[string]*scene.Node),
		failed: make(map[string]error),
	}
}

// HasModelID reports whether id was registered.
func (r *Registry) HasModelID(id string) bool {
	_, ok := r.ids[id]
	return ok
}

// AddModelID registers id. It reports false if id was already known.
func (r *Registry) AddModelID(id string) bool {
	if r.HasModelID(id) {
		return false
	}
	r.ids[id] = struct{}{}
	r.idOrder = append(r.idOrder, id)
	return true
}

// ModelIDs returns the registered ids in registration order.
func (r *Registry) ModelIDs() []string {
	return append([]string(nil), r.idOrder...)
}

// Lookup returns the node that first loaded path.
func (r *Registry) Lookup(path string) (*scene.Node, bool) {
	n, ok := r.nodes[path]
	return n, ok
}

// Register records n as the owner of path's model. The first registration
// wins.
func (r *Registry) Register(path string, n *scene.Node) {
	if _, ok := r.nodes[path]; !ok {
		r.nodes[path] = n
	}
}

// MarkFailed remembers that path could not be loaded.
func (r *Registry) MarkFailed(path string, err error) {
	r.failed[path] = err
}

// Failed returns the load error recorded for path, or nil.
func (r *Registry) Failed(path string) error {
	return r.failed[path]
}

// Len returns the number of loaded files.
func (r *Registry) Len() int {
	return len(r.nodes)
}
