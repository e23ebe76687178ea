// internal/common/idgen/generator.go
package idgen

import (
	"github.com/google/uuid"
)

// Generator request correlation id generator
type Generator struct {
	prefix string
}

// NewGenerator creates a generator; ids are prefixed when a prefix is given
func NewGenerator(prefix ...string) *Generator {
	var p string
	if len(prefix) > 0 {
		p = prefix[0]
	}
	return &Generator{prefix: p}
}

// RequestID random UUID, prefixed
func (g *Generator) RequestID() string {
	if g.prefix == "" {
		return uuid.NewString()
	}
	return g.prefix + "-" + uuid.NewString()
}

// Valid reports whether id is acceptable as a client supplied request id
func Valid(id string) bool {
	return id != "" && len(id) <= 64
}
