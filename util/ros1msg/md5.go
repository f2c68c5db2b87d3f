package ros1msg

import (
	"crypto/md5" // nolint:gosec
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spaolacci/murmur3"
)

/*
ROS1 identifies a message type on the wire by the MD5 sum of a normalized form
of its definition. Constants are written "type name=value", builtin fields as
"type name" with their array suffix, and message-typed fields as the MD5 sum of
the referenced type followed by the field name. Comments and whitespace do not
contribute. Publishers and subscribers compare these sums at connection time,
so they must match the values computed by ROS tooling exactly.

Fingerprint is unrelated to ROS: it is a fast content hash of a type name and
its canonical text, used to address stored definitions and to detect when a
type's definition changes.
*/

////////////////////////////////////////////////////////////////////////////////

// MD5Sum computes the ROS1 MD5 sum of the primary definition in seq, which is
// taken to be named typeName. Message types referenced by fields must be
// present among the dependencies.
func MD5Sum(typeName string, seq Sequence) (string, error) {
	if len(seq) == 0 {
		return "", MalformedDefinitionError{Reason: "empty sequence"}
	}
	h := &md5hasher{
		index:      dependencyIndex(seq),
		memo:       map[string]string{},
		inProgress: map[string]bool{},
	}
	return h.sum(typeName, seq[0])
}

type md5hasher struct {
	index      map[string]MsgDefinition
	memo       map[string]string
	inProgress map[string]bool
}

func (h *md5hasher) sum(name string, def MsgDefinition) (string, error) {
	if sum, ok := h.memo[name]; ok {
		return sum, nil
	}
	if h.inProgress[name] {
		return "", CyclicDependencyError{Path: []string{name, name}}
	}
	h.inProgress[name] = true
	defer delete(h.inProgress, name)

	lines := []string{}
	for _, c := range def.Constants() {
		lines = append(lines, c.Type+" "+c.Name+"="+c.Value)
	}
	for _, v := range def.Variables() {
		if IsPrimitive(v.Type) {
			lines = append(lines, v.typeString()+" "+v.Name)
			continue
		}
		depName, dep, err := lookupDependency(h.index, name, v.Type)
		if err != nil {
			return "", fmt.Errorf("failed to hash field %s of %s: %w", v.Name, name, err)
		}
		sub, err := h.sum(depName, dep)
		if err != nil {
			return "", err
		}
		lines = append(lines, sub+" "+v.Name)
	}
	text := strings.TrimSpace(strings.Join(lines, "\n"))
	digest := md5.Sum([]byte(text)) // nolint:gosec
	sum := hex.EncodeToString(digest[:])
	h.memo[name] = sum
	return sum, nil
}

// Fingerprint returns a 128-bit hash of a type name and its definition text,
// hex encoded.
func Fingerprint(typeName string, text string) string {
	hi, lo := murmur3.Sum128([]byte(typeName + "\n" + text))
	return fmt.Sprintf("%016x%016x", hi, lo)
}
