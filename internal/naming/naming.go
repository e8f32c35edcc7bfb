// Package naming decides the output name of every exported column: a
// caller-supplied override wins over the session rename map, which wins
// over the built-in default.
package naming

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RenameMap maps default column names to caller-preferred export names.
// It is validated once at construction and immutable afterwards.
type RenameMap struct {
	m map[string]string
}

// NewRenameMap validates entries and builds an immutable rename map.
// Malformed maps are rejected here so that per-column lookups never have
// to re-check them.
func NewRenameMap(entries map[string]string) (*RenameMap, error) {
	m := make(map[string]string, len(entries))
	for def, custom := range entries {
		if def == "" {
			return nil, fmt.Errorf("rename map: empty default name (target %q)", custom)
		}
		if custom == "" {
			return nil, fmt.Errorf("rename map: empty target for %q", def)
		}
		m[def] = custom
	}
	return &RenameMap{m: m}, nil
}

// Lookup returns the renamed form of def, if any. Safe on a nil map.
func (r *RenameMap) Lookup(def string) (string, bool) {
	if r == nil {
		return "", false
	}
	custom, ok := r.m[def]
	return custom, ok
}

// Len returns the number of rename entries. Safe on a nil map.
func (r *RenameMap) Len() int {
	if r == nil {
		return 0
	}
	return len(r.m)
}

// Resolver applies the override > rename map > default priority chain.
// Resolution is a pure function of the resolver's (immutable) rename map
// and the per-call arguments.
type Resolver struct {
	renames *RenameMap
	logger  zerolog.Logger
}

// NewResolver creates a resolver over the given rename map (which may be
// nil).
func NewResolver(renames *RenameMap, logger zerolog.Logger) *Resolver {
	return &Resolver{
		renames: renames,
		logger:  logger.With().Str("component", "name-resolver").Logger(),
	}
}

// Resolve returns the output name for a column with the given default
// name. override may be nil (no override), a non-empty string, or a
// single-element string slice; anything else is malformed and falls back
// to the rename map or default with a warning.
func (r *Resolver) Resolve(defaultName string, override any) string {
	effective := defaultName
	if custom, ok := r.renames.Lookup(defaultName); ok {
		effective = custom
	}

	if override == nil {
		return effective
	}

	name, ok := overrideName(override)
	if !ok {
		r.logger.Warn().
			Str("default", defaultName).
			Interface("override", override).
			Msg("Ignoring malformed column name override")
		return effective
	}
	if name == "" || name == effective {
		return effective
	}
	return name
}

// overrideName extracts a scalar text value from an override argument.
// Multi-element collections and non-text values are malformed.
func overrideName(override any) (string, bool) {
	switch v := override.(type) {
	case string:
		return v, true
	case []string:
		if len(v) == 1 {
			return v[0], true
		}
		return "", false
	default:
		return "", false
	}
}
