package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/wkalt/msgdef/util/log"
	"github.com/wkalt/msgdef/util/ros1msg"
	"golang.org/x/exp/maps"
)

/*
The registry is the process-wide table of known message types. Each entry maps
a package-qualified type name to its field definitions, exactly as written in
its source: field types may be unqualified ("Point") or refer to the bare
"Header", and are qualified relative to the containing package on lookup.

The registry implements ros1msg.Resolver, so any registered type can be
flattened into a definition sequence and encoded. It is populated from .msg
files on disk, from ROS_PACKAGE_PATH, from MCAP recordings and from definition
text submitted over HTTP, and may be kept up to date with a filesystem watch.
All methods are safe for concurrent use.
*/

////////////////////////////////////////////////////////////////////////////////

// ErrTypeNotFound is returned when a type is not registered.
var ErrTypeNotFound = fmt.Errorf("registry: %w", ros1msg.ErrUnknownType)

// Registry is a concurrency-safe table of message types.
type Registry struct {
	mtx   *sync.RWMutex
	types map[string][]ros1msg.FieldDefinition
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{
		mtx:   &sync.RWMutex{},
		types: make(map[string][]ros1msg.FieldDefinition),
	}
}

// Register adds or replaces a type. The name must be package-qualified and
// the fields must satisfy the definition model.
func (r *Registry) Register(name string, fields []ros1msg.FieldDefinition) error {
	if err := ros1msg.ValidateTypeName(name); err != nil {
		return err
	}
	seq := ros1msg.Sequence{{Definitions: fields}}
	if err := seq.Validate(); err != nil {
		return fmt.Errorf("invalid definition of %s: %w", name, err)
	}
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.types[name] = slices.Clone(fields)
	return nil
}

// Unregister removes a type, if present.
func (r *Registry) Unregister(name string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	delete(r.types, name)
}

// Import registers every definition in seq. The primary definition is
// registered under name, and each dependency under its own name. Either all
// definitions are registered or none are.
func (r *Registry) Import(name string, seq ros1msg.Sequence) error {
	if err := ros1msg.ValidateTypeName(name); err != nil {
		return err
	}
	if err := seq.Validate(); err != nil {
		return err
	}
	if err := seq.ValidateDependencyNames(); err != nil {
		return err
	}
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.types[name] = slices.Clone(seq[0].Definitions)
	for _, dep := range seq[1:] {
		r.types[dep.Name] = slices.Clone(dep.Definitions)
	}
	return nil
}

// Resolve returns the fields of a registered type along with the qualified
// names of the message types they reference, in field order. Builtin types
// are omitted from the references.
func (r *Registry) Resolve(_ context.Context, name string) ([]ros1msg.FieldDefinition, []string, error) {
	r.mtx.RLock()
	fields, ok := r.types[name]
	r.mtx.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrTypeNotFound, name)
	}
	pkg := ros1msg.PackageName(name)
	refs := []string{}
	for _, f := range fields {
		if f.IsConstant || ros1msg.IsPrimitive(f.Type) {
			continue
		}
		refs = append(refs, ros1msg.ResolveTypeName(pkg, f.Type))
	}
	return slices.Clone(fields), refs, nil
}

// Names returns the registered type names in sorted order.
func (r *Registry) Names() []string {
	r.mtx.RLock()
	names := maps.Keys(r.types)
	r.mtx.RUnlock()
	slices.Sort(names)
	return names
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return len(r.types)
}

// Flatten returns the definition sequence of a registered type.
func (r *Registry) Flatten(ctx context.Context, name string) (ros1msg.Sequence, error) {
	seq, err := ros1msg.Flatten(ctx, name, r)
	if err != nil {
		return nil, fmt.Errorf("failed to flatten %s: %w", name, err)
	}
	return seq, nil
}

// Definition is the concatenated definition of a type, as exchanged between
// ROS nodes.
type Definition struct {
	Name   string `json:"name"`
	Text   string `json:"text"`
	MD5Sum string `json:"md5sum"`
}

// Definition flattens and encodes a registered type, and computes its MD5
// sum.
func (r *Registry) Definition(ctx context.Context, name string) (*Definition, error) {
	seq, err := r.Flatten(ctx, name)
	if err != nil {
		return nil, err
	}
	text, err := ros1msg.Encode(seq)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", name, err)
	}
	sum, err := ros1msg.MD5Sum(name, seq)
	if err != nil {
		return nil, fmt.Errorf("failed to compute md5sum of %s: %w", name, err)
	}
	return &Definition{Name: name, Text: text, MD5Sum: sum}, nil
}

// Check flattens every registered type and returns the types that cannot be
// flattened, mapped to the reason. Unresolvable references and cycles are
// common when only part of a package tree has been loaded.
func (r *Registry) Check(ctx context.Context) map[string]error {
	problems := map[string]error{}
	for _, name := range r.Names() {
		if _, err := r.Flatten(ctx, name); err != nil {
			problems[name] = err
			if !errors.Is(err, ros1msg.ErrUnknownType) {
				log.Warnw(ctx, "type cannot be flattened", "type", name, "error", err)
			}
		}
	}
	return problems
}
