// Package schema reflects JSON schemas from the kingdom model types and
// validates raw documents (save blobs, catalog files) against them.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	jsv "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/napolitain/kingdom/internal/models"
)

// Kind names a document type with a schema
type Kind string

const (
	SaveState Kind = "save"
	Catalog   Kind = "catalog"
)

// AllKinds returns every kind in deterministic order
func AllKinds() []Kind {
	return []Kind{SaveState, Catalog}
}

type compiled struct {
	once   sync.Once
	schema *jsv.Schema
	err    error
}

var cache = map[Kind]*compiled{
	SaveState: {},
	Catalog:   {},
}

func reflectKind(kind Kind) (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}
	var s *jsonschema.Schema
	switch kind {
	case SaveState:
		s = reflector.Reflect(&models.GameState{})
		s.Title = "Kingdom Save State"
		s.Description = "Complete game state written by the local store."
	case Catalog:
		s = reflector.Reflect([]models.BuildingTemplate{})
		s.Title = "Building Catalog"
		s.Description = "Ordered list of building templates seeded into new kingdoms."
	default:
		return nil, fmt.Errorf("unknown schema kind %q", kind)
	}
	if s == nil {
		return nil, fmt.Errorf("failed to reflect %s schema", kind)
	}
	return s, nil
}

// Document returns the indented JSON schema for kind
func Document(kind Kind) ([]byte, error) {
	s, err := reflectKind(kind)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %s schema: %w", kind, err)
	}
	return append(data, '\n'), nil
}

func compile(kind Kind) (*jsv.Schema, error) {
	c, ok := cache[kind]
	if !ok {
		return nil, fmt.Errorf("unknown schema kind %q", kind)
	}
	c.once.Do(func() {
		doc, err := Document(kind)
		if err != nil {
			c.err = err
			return
		}
		url := string(kind) + ".schema.json"
		compiler := jsv.NewCompiler()
		if err := compiler.AddResource(url, bytes.NewReader(doc)); err != nil {
			c.err = fmt.Errorf("add %s schema: %w", kind, err)
			return
		}
		c.schema, c.err = compiler.Compile(url)
	})
	return c.schema, c.err
}

// Validate checks raw JSON against the schema for kind
func Validate(kind Kind, raw []byte) error {
	s, err := compile(kind)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%s schema: %w", kind, err)
	}
	return nil
}
