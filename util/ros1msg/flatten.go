package ros1msg

import (
	"context"
	"fmt"
	"slices"
)

/*
Flatten builds the Sequence for a message type: the primary definition,
followed by every distinct type it transitively references, each exactly once,
in depth-first first-encounter order. This is the order in which ROS tooling
writes dependencies into concatenated text.

The traversal uses an explicit stack rather than recursion. Each type is
either unvisited, in progress (on the current path), or done. Reaching a type
that is in progress means the schema is cyclic, which the text format cannot
represent.
*/

////////////////////////////////////////////////////////////////////////////////

// Resolver looks up the definition of a message type by qualified name. It
// returns the type's fields and the qualified names of the message types those
// fields reference. Implementations must return a complete definition for a
// given name; partially populated results are not tolerated.
type Resolver interface {
	Resolve(ctx context.Context, typeName string) ([]FieldDefinition, []string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, typeName string) ([]FieldDefinition, []string, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, typeName string) ([]FieldDefinition, []string, error) {
	return f(ctx, typeName)
}

type visitState int

const (
	unvisited visitState = iota
	inProgress
	done
)

type frame struct {
	name string
	refs []string
	next int
}

// Flatten resolves primary and all of its dependencies into a Sequence ready
// for encoding. The primary definition is unnamed, by convention. Builtin
// types in the resolver's reference lists are ignored. A CyclicDependencyError
// is returned if any type references itself, directly or transitively.
func Flatten(ctx context.Context, primary string, resolver Resolver) (Sequence, error) {
	states := map[string]visitState{}
	seq := Sequence{}
	stack := []*frame{}

	visit := func(name string) error {
		fields, refs, err := resolver.Resolve(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", name, err)
		}
		def := MsgDefinition{Name: name, Definitions: slices.Clone(fields)}
		if len(seq) == 0 {
			def.Name = ""
		}
		seq = append(seq, def)
		states[name] = inProgress
		stack = append(stack, &frame{name: name, refs: refs})
		return nil
	}

	if err := visit(primary); err != nil {
		return nil, err
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next == len(top.refs) {
			states[top.name] = done
			stack = stack[:len(stack)-1]
			continue
		}
		ref := top.refs[top.next]
		top.next++
		if IsPrimitive(ref) {
			continue
		}
		switch states[ref] {
		case done:
			continue
		case inProgress:
			return nil, CyclicDependencyError{Path: cyclePath(stack, ref)}
		case unvisited:
			if err := visit(ref); err != nil {
				return nil, err
			}
		}
	}
	if err := seq.Validate(); err != nil {
		return nil, err
	}
	return seq, nil
}

func cyclePath(stack []*frame, repeated string) []string {
	path := []string{}
	for i := len(stack) - 1; i >= 0; i-- {
		path = append(path, stack[i].name)
		if stack[i].name == repeated {
			break
		}
	}
	slices.Reverse(path)
	return append(path, repeated)
}
