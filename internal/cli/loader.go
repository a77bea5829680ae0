package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/CavHack/EinsteinDB/internal/datom"
	"github.com/CavHack/EinsteinDB/internal/schema"
	"github.com/CavHack/EinsteinDB/internal/transact"
)

// factFile is the YAML layout of a transaction file:
//
//	facts:
//	  - e: alice             # tempid
//	    a: :person/name
//	    v: "Alice"
//	  - retract: true
//	    e: 65536
//	    a: :person/email
//	    v: "alice@example.com"
//
// Entity positions accept an entid (number), an ident (":ns/name"),
// or a tempid (any other string). Values are converted according to
// the attribute's declared type.
type factFile struct {
	Facts []factEntry `yaml:"facts"`
}

type factEntry struct {
	Retract bool `yaml:"retract"`
	E       any  `yaml:"e"`
	A       any  `yaml:"a"`
	V       any  `yaml:"v"`
}

// LoadFacts reads a YAML fact file and converts it against the
// current schema.
func LoadFacts(path string, s *schema.Schema) ([]transact.Fact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fact file: %w", err)
	}

	var file factFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing fact file: %w", err)
	}
	if len(file.Facts) == 0 {
		return nil, fmt.Errorf("fact file %s contains no facts", path)
	}

	facts := make([]transact.Fact, 0, len(file.Facts))
	for i, entry := range file.Facts {
		f, err := convertEntry(entry, s)
		if err != nil {
			return nil, fmt.Errorf("fact %d: %w", i, err)
		}
		facts = append(facts, f)
	}
	return facts, nil
}

func convertEntry(entry factEntry, s *schema.Schema) (transact.Fact, error) {
	e, err := parseRef(entry.E)
	if err != nil {
		return transact.Fact{}, fmt.Errorf("entity: %w", err)
	}
	a, err := parseRef(entry.A)
	if err != nil {
		return transact.Fact{}, fmt.Errorf("attribute: %w", err)
	}

	attr, err := attributeFor(a, s)
	if err != nil {
		return transact.Fact{}, err
	}
	v, err := parseValue(entry.V, attr.ValueType)
	if err != nil {
		return transact.Fact{}, fmt.Errorf("value: %w", err)
	}

	if entry.Retract {
		return transact.Retract(e, a, v), nil
	}
	return transact.Assert(e, a, v), nil
}

func parseRef(x any) (transact.Ref, error) {
	switch v := x.(type) {
	case int:
		return transact.EntidRef(v), nil
	case int64:
		return transact.EntidRef(v), nil
	case string:
		if v == "" {
			return nil, fmt.Errorf("empty reference")
		}
		if strings.HasPrefix(v, ":") {
			return transact.IdentRef(v[1:]), nil
		}
		return transact.Tempid(v), nil
	default:
		return nil, fmt.Errorf("cannot use %T as an entity reference", x)
	}
}

func attributeFor(a transact.Ref, s *schema.Schema) (schema.Attribute, error) {
	var e datom.Entid
	switch ref := a.(type) {
	case transact.EntidRef:
		e = datom.Entid(ref)
	case transact.IdentRef:
		var ok bool
		e, ok = s.EntidForIdent(datom.Keyword(ref))
		if !ok {
			return schema.Attribute{}, fmt.Errorf("unknown attribute %s", datom.Keyword(ref))
		}
	default:
		return schema.Attribute{}, fmt.Errorf("attribute cannot be a tempid")
	}
	attr, ok := s.AttributeForEntid(e)
	if !ok {
		return schema.Attribute{}, fmt.Errorf("entid %d is not an attribute", int64(e))
	}
	return attr, nil
}

func parseValue(x any, t datom.ValueType) (transact.Value, error) {
	if t == datom.ValueTypeRef {
		ref, err := parseRef(x)
		if err != nil {
			return nil, err
		}
		return ref, nil
	}

	switch t {
	case datom.ValueTypeBoolean:
		b, ok := x.(bool)
		if !ok {
			return nil, typeMismatch(x, t)
		}
		return transact.Literal(datom.Boolean(b)), nil
	case datom.ValueTypeLong:
		switch n := x.(type) {
		case int:
			return transact.Literal(datom.Long(n)), nil
		case int64:
			return transact.Literal(datom.Long(n)), nil
		}
		return nil, typeMismatch(x, t)
	case datom.ValueTypeDouble:
		switch n := x.(type) {
		case float64:
			return transact.Literal(datom.Double(n)), nil
		case int:
			return transact.Literal(datom.Double(n)), nil
		}
		return nil, typeMismatch(x, t)
	case datom.ValueTypeString:
		s, ok := x.(string)
		if !ok {
			return nil, typeMismatch(x, t)
		}
		return transact.Literal(datom.String(s)), nil
	case datom.ValueTypeKeyword:
		s, ok := x.(string)
		if !ok || !strings.HasPrefix(s, ":") || len(s) < 2 {
			return nil, typeMismatch(x, t)
		}
		return transact.Literal(datom.Keyword(s[1:])), nil
	case datom.ValueTypeInstant:
		s, ok := x.(string)
		if !ok {
			return nil, typeMismatch(x, t)
		}
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("parsing instant: %w", err)
		}
		return transact.Literal(datom.NewInstant(ts)), nil
	case datom.ValueTypeUUID:
		s, ok := x.(string)
		if !ok {
			return nil, typeMismatch(x, t)
		}
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parsing uuid: %w", err)
		}
		return transact.Literal(datom.UUID(u)), nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", t)
	}
}

func typeMismatch(x any, t datom.ValueType) error {
	return fmt.Errorf("cannot use %T as %s", x, t)
}
