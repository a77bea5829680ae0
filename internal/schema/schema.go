package schema

import (
	"maps"
	"sort"
	"strconv"

	"github.com/CavHack/EinsteinDB/internal/datom"
)

// Schema is an immutable snapshot of the ident<->entid bindings and the
// attribute definitions. Build one with New; derive the next snapshot
// with New again rather than mutating.
type Schema struct {
	identMap   map[datom.Keyword]datom.Entid
	entidMap   map[datom.Entid]datom.Keyword
	attributes map[datom.Entid]Attribute
	components []datom.Entid
}

// New builds and validates a snapshot from an ident map and an
// attribute map. The entid->ident direction is derived.
func New(idents map[datom.Keyword]datom.Entid, attributes map[datom.Entid]Attribute) (*Schema, error) {
	s := &Schema{
		identMap:   maps.Clone(idents),
		entidMap:   make(map[datom.Entid]datom.Keyword, len(idents)),
		attributes: maps.Clone(attributes),
	}
	if s.identMap == nil {
		s.identMap = make(map[datom.Keyword]datom.Entid)
	}
	if s.attributes == nil {
		s.attributes = make(map[datom.Entid]Attribute)
	}
	for ident, e := range s.identMap {
		s.entidMap[e] = ident
	}
	for e, attr := range s.attributes {
		ident := func() string {
			if kw, ok := s.entidMap[e]; ok {
				return kw.String()
			}
			return strconv.FormatInt(int64(e), 10)
		}
		if err := attr.Validate(ident); err != nil {
			return nil, err
		}
		if attr.Component {
			s.components = append(s.components, e)
		}
	}
	sort.Slice(s.components, func(i, j int) bool { return s.components[i] < s.components[j] })
	return s, nil
}

// EntidForIdent resolves a keyword to its entity id.
func (s *Schema) EntidForIdent(ident datom.Keyword) (datom.Entid, bool) {
	e, ok := s.identMap[ident]
	return e, ok
}

// IdentForEntid resolves an entity id to its keyword, if bound.
func (s *Schema) IdentForEntid(e datom.Entid) (datom.Keyword, bool) {
	kw, ok := s.entidMap[e]
	return kw, ok
}

// AttributeForEntid returns the attribute definition for e, if e is an
// installed attribute.
func (s *Schema) AttributeForEntid(e datom.Entid) (Attribute, bool) {
	a, ok := s.attributes[e]
	return a, ok
}

// RequireEntid is EntidForIdent that fails with UnrecognizedIdent.
func (s *Schema) RequireEntid(ident datom.Keyword) (datom.Entid, error) {
	if e, ok := s.identMap[ident]; ok {
		return e, nil
	}
	return 0, &UnrecognizedIdent{Ident: ident}
}

// RequireIdent is IdentForEntid that fails with UnrecognizedEntid.
func (s *Schema) RequireIdent(e datom.Entid) (datom.Keyword, error) {
	if kw, ok := s.entidMap[e]; ok {
		return kw, nil
	}
	return "", &UnrecognizedEntid{Entid: e}
}

// RequireAttribute is AttributeForEntid that fails with
// UnrecognizedEntid.
func (s *Schema) RequireAttribute(e datom.Entid) (Attribute, error) {
	if a, ok := s.attributes[e]; ok {
		return a, nil
	}
	return Attribute{}, &UnrecognizedEntid{Entid: e}
}

// IdentMap returns a copy of the ident->entid map.
func (s *Schema) IdentMap() map[datom.Keyword]datom.Entid {
	return maps.Clone(s.identMap)
}

// AttributeMap returns a copy of the entid->attribute map.
func (s *Schema) AttributeMap() map[datom.Entid]Attribute {
	return maps.Clone(s.attributes)
}

// ComponentAttributes returns the entids of component attributes in
// ascending order.
func (s *Schema) ComponentAttributes() []datom.Entid {
	out := make([]datom.Entid, len(s.components))
	copy(out, s.components)
	return out
}

// Equal reports whether two snapshots carry identical bindings and
// definitions.
func (s *Schema) Equal(other *Schema) bool {
	return maps.Equal(s.identMap, other.identMap) && maps.Equal(s.attributes, other.attributes)
}
