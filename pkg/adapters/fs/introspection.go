package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path        string         `json:"path"`
	Encrypted   bool           `json:"encrypted"`
	ReadOnly    bool           `json:"read_only"`
	Ready       bool           `json:"ready"`
	Documents   int            `json:"documents"`
	Types       map[string]int `json:"types"`
	LoadError   string         `json:"load_error,omitempty"`
	LastPersist *time.Time     `json:"last_persist,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	ready := false
	select {
	case <-r.ready:
		ready = true
	default:
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	state := RepositoryState{
		Path:        r.Path,
		Encrypted:   r.codec.encrypted(),
		ReadOnly:    r.config.ReadOnly,
		Ready:       ready,
		Documents:   r.ix.Len(),
		Types:       r.ix.Types(),
		LastPersist: r.lastPersist,
	}
	if r.loadErr != nil {
		state.LoadError = r.loadErr.Error()
	}
	return state
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
