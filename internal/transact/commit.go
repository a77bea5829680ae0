package transact

import (
	"context"
	"fmt"
	"sort"

	"github.com/CavHack/EinsteinDB/internal/datom"
	"github.com/CavHack/EinsteinDB/internal/partition"
	"github.com/CavHack/EinsteinDB/internal/schema"
	"github.com/CavHack/EinsteinDB/internal/storage"
)

// commitBase is the committed state a transaction builds on. The
// idents and attrs maps are owned by the commit and may be read but
// never mutated; run clones before changing them.
type commitBase struct {
	resolve *schema.Schema
	idents  map[datom.Keyword]datom.Entid
	attrs   map[datom.Entid]schema.Attribute
	parts   partition.Map
}

// nextState is what a successful commit swaps in.
type nextState struct {
	schema *schema.Schema
	parts  partition.Map
}

// term is one fact after reference resolution: attribute and entity
// positions are numeric except for still-pending tempids.
type term struct {
	add   bool
	e     datom.Entid
	eTemp Tempid
	a     datom.Entid
	attr  schema.Attribute
	v     datom.TypedValue
	vTemp Tempid
}

func (c *Conn) commit(ctx context.Context, facts []Fact, base commitBase) (*TxReport, nextState, error) {
	tx, err := c.store.Begin(ctx)
	if err != nil {
		return nil, nextState{}, err
	}

	report, next, err := c.run(ctx, tx, facts, base)
	if err != nil {
		tx.Rollback()
		return nil, nextState{}, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nextState{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return report, next, nil
}

// run executes the whole commit pipeline inside db: resolve, intern,
// upsert, dedup, conflict-check, write, and process metadata. On
// error the caller rolls db back and no state changes.
func (c *Conn) run(ctx context.Context, db storage.DBTX, facts []Fact, base commitBase) (*TxReport, nextState, error) {
	parts := base.parts.Clone()
	txID := parts.AllocateOne(partition.PartTx)
	instant := datom.NewInstant(c.clock())

	r := &commitRun{
		db:      db,
		base:    base,
		parts:   parts,
		txID:    txID,
		tempids: make(map[Tempid]datom.Entid),
	}

	terms, err := r.resolveTerms(facts)
	if err != nil {
		return nil, nextState{}, err
	}
	if err := r.internFulltext(ctx, terms); err != nil {
		return nil, nextState{}, err
	}
	if err := r.resolveTempids(ctx, terms); err != nil {
		return nil, nextState{}, err
	}

	adds, retracts, err := r.materialize(terms)
	if err != nil {
		return nil, nextState{}, err
	}
	adds, retracts, err = r.resolveAgainstStore(ctx, adds, retracts)
	if err != nil {
		return nil, nextState{}, err
	}

	report, next, err := r.write(ctx, adds, retracts, instant)
	if err != nil {
		return nil, nextState{}, err
	}
	return report, next, nil
}

type commitRun struct {
	db      storage.DBTX
	base    commitBase
	parts   partition.Map
	txID    datom.Entid
	tempids map[Tempid]datom.Entid
}

// checkAllocated rejects references to ids no partition has issued.
func (r *commitRun) checkAllocated(e datom.Entid) error {
	for _, p := range r.parts {
		if p.Contains(e) {
			if e < p.Next {
				return nil
			}
			break
		}
	}
	return &TxError{
		Code:    ErrCodeUnallocatedEntid,
		Message: fmt.Sprintf("entid %d has not been allocated", int64(e)),
		Entity:  int64(e),
	}
}

func (r *commitRun) resolveRef(ref Ref) (datom.Entid, Tempid, error) {
	switch x := ref.(type) {
	case EntidRef:
		e := datom.Entid(x)
		if err := r.checkAllocated(e); err != nil {
			return 0, "", err
		}
		return e, "", nil
	case IdentRef:
		e, ok := r.base.resolve.EntidForIdent(datom.Keyword(x))
		if !ok {
			return 0, "", &TxError{
				Code:    ErrCodeUnrecognizedReference,
				Message: fmt.Sprintf("unknown ident %s", datom.Keyword(x)),
			}
		}
		return e, "", nil
	case Tempid:
		if x == "" {
			return 0, "", &TxError{
				Code:    ErrCodeUnrecognizedReference,
				Message: "empty tempid",
			}
		}
		return 0, x, nil
	default:
		return 0, "", fmt.Errorf("unknown entity reference %T", ref)
	}
}

// resolveTerms resolves attribute and entity references and
// typechecks every value against its attribute.
func (r *commitRun) resolveTerms(facts []Fact) ([]term, error) {
	terms := make([]term, 0, len(facts))
	for _, f := range facts {
		a, aTemp, err := r.resolveRef(f.A)
		if err != nil {
			return nil, err
		}
		if aTemp != "" {
			return nil, &TxError{
				Code:    ErrCodeUnrecognizedReference,
				Message: fmt.Sprintf("tempid %q cannot name an attribute", aTemp),
				Tempid:  string(aTemp),
			}
		}
		attr, ok := r.base.resolve.AttributeForEntid(a)
		if !ok {
			return nil, &TxError{
				Code:      ErrCodeUnrecognizedReference,
				Message:   fmt.Sprintf("entid %d is not an attribute", int64(a)),
				Attribute: int64(a),
			}
		}

		t := term{add: f.Add, a: a, attr: attr}
		if t.e, t.eTemp, err = r.resolveRef(f.E); err != nil {
			return nil, err
		}
		if t.v, t.vTemp, err = r.resolveValue(a, attr, f.V); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}

func (r *commitRun) resolveValue(a datom.Entid, attr schema.Attribute, v Value) (datom.TypedValue, Tempid, error) {
	typeErr := func(got string) error {
		return &TxError{
			Code:      ErrCodeTypeDisagreement,
			Message:   fmt.Sprintf("attribute expects %s, got %s", attr.ValueType, got),
			Attribute: int64(a),
		}
	}

	switch x := v.(type) {
	case literal:
		if x.v == nil {
			return nil, "", typeErr("nil")
		}
		if x.v.ValueType() != attr.ValueType {
			return nil, "", typeErr(x.v.ValueType().String())
		}
		if ref, ok := x.v.(datom.Ref); ok {
			if err := r.checkAllocated(datom.Entid(ref)); err != nil {
				return nil, "", err
			}
		}
		if attr.Fulltext {
			s, ok := x.v.(datom.String)
			if !ok {
				return nil, "", typeErr(x.v.ValueType().String())
			}
			return datom.String(storage.NormalizeFulltext(string(s))), "", nil
		}
		return x.v, "", nil
	case Ref:
		if attr.ValueType != datom.ValueTypeRef {
			return nil, "", typeErr("entity reference")
		}
		e, temp, err := r.resolveRef(x)
		if err != nil {
			return nil, "", err
		}
		if temp != "" {
			return nil, temp, nil
		}
		return datom.Ref(e), "", nil
	default:
		return nil, "", fmt.Errorf("unknown fact value %T", v)
	}
}

// internFulltext replaces fulltext string values with references to
// interned rows. Only assertions insert rows; retracted text resolves
// by lookup, so retracting a string never stored leaves
// fulltext_values untouched.
func (r *commitRun) internFulltext(ctx context.Context, terms []term) error {
	var asserted, retracted []string
	for _, t := range terms {
		if !t.attr.Fulltext || t.v == nil {
			continue
		}
		text := string(t.v.(datom.String))
		if t.add {
			asserted = append(asserted, text)
		} else {
			retracted = append(retracted, text)
		}
	}
	if len(asserted) == 0 && len(retracted) == 0 {
		return nil
	}

	ids, err := storage.InternFulltext(ctx, r.db, asserted)
	if err != nil {
		return err
	}
	found, err := storage.LookupFulltext(ctx, r.db, retracted)
	if err != nil {
		return err
	}
	for text, id := range found {
		if _, ok := ids[text]; !ok {
			ids[text] = id
		}
	}

	for i := range terms {
		if !terms[i].attr.Fulltext || terms[i].v == nil {
			continue
		}
		// A retracted text with no interned row keeps its string
		// value; no stored row can match it, so the retraction
		// resolves to a no-op.
		if id, ok := ids[string(terms[i].v.(datom.String))]; ok {
			terms[i].v = datom.FulltextID(id)
		}
	}
	return nil
}

// resolveTempids binds every tempid to an entity: through a
// unique-identity attribute when the store already knows the value,
// otherwise to a fresh id from the user partition. Resolution
// iterates because resolving one tempid can make another resolvable
// through a ref-typed unique-identity attribute.
func (r *commitRun) resolveTempids(ctx context.Context, terms []term) error {
	pending := make(map[Tempid]struct{})
	for _, t := range terms {
		if t.eTemp != "" {
			pending[t.eTemp] = struct{}{}
		}
		if t.vTemp != "" {
			pending[t.vTemp] = struct{}{}
		}
	}
	if len(pending) == 0 {
		return nil
	}

	for round := 0; round <= len(pending); round++ {
		var pairs []storage.AVPair
		var owners []Tempid
		for _, t := range terms {
			if !t.add || t.eTemp == "" || t.attr.Unique != schema.UniqueIdentity {
				continue
			}
			v := t.v
			if v == nil {
				e, ok := r.tempids[t.vTemp]
				if !ok {
					continue
				}
				v = datom.Ref(e)
			}
			pairs = append(pairs, storage.AVPair{A: t.a, V: v})
			owners = append(owners, t.eTemp)
		}
		if len(pairs) == 0 {
			break
		}

		resolved, err := storage.ResolveAVPairs(ctx, r.db, pairs)
		if err != nil {
			return err
		}

		progress := false
		for i, e := range resolved {
			temp := owners[i]
			prev, ok := r.tempids[temp]
			if ok && prev != e {
				return conflictingUpserts(temp, prev, e)
			}
			if !ok {
				r.tempids[temp] = e
				progress = true
			}
		}
		if !progress {
			break
		}
	}

	var fresh []Tempid
	for temp := range pending {
		if _, ok := r.tempids[temp]; !ok {
			fresh = append(fresh, temp)
		}
	}
	sort.Slice(fresh, func(i, j int) bool { return fresh[i] < fresh[j] })
	for _, temp := range fresh {
		r.tempids[temp] = r.parts.AllocateOne(partition.PartUser)
	}

	for i := range terms {
		if terms[i].eTemp != "" {
			terms[i].e = r.tempids[terms[i].eTemp]
		}
		if terms[i].vTemp != "" {
			terms[i].v = datom.Ref(r.tempids[terms[i].vTemp])
		}
	}
	return nil
}

func conflictingUpserts(temp Tempid, entids ...datom.Entid) error {
	ids := make([]int64, len(entids))
	for i, e := range entids {
		ids[i] = int64(e)
	}
	return &TxError{
		Code:    ErrCodeConflictingUpserts,
		Message: fmt.Sprintf("tempid %q upserts to %d distinct entities", temp, len(entids)),
		Tempid:  string(temp),
		Entids:  ids,
	}
}

// materialize turns terms into deduplicated datom sets and rejects
// in-transaction conflicts.
func (r *commitRun) materialize(terms []term) (adds, retracts []datom.Datom, err error) {
	addSet := make(map[string]datom.Datom)
	retractSet := make(map[string]datom.Datom)
	for _, t := range terms {
		d := datom.Datom{E: t.e, A: t.a, V: t.v, Tx: r.txID, Added: t.add}
		k := datomKey(d)
		if t.add {
			addSet[k] = d
		} else {
			retractSet[k] = d
		}
	}

	for k, d := range addSet {
		if _, ok := retractSet[k]; ok {
			return nil, nil, &TxError{
				Code:      ErrCodeAddRetractConflict,
				Message:   "datom both asserted and retracted",
				Entity:    int64(d.E),
				Attribute: int64(d.A),
				Values:    []datom.TypedValue{d.V},
			}
		}
	}

	// Cardinality-one attributes admit one value per entity per
	// transaction. The rejection names the full conflicting value set.
	perEA := make(map[[2]datom.Entid][]datom.TypedValue)
	for _, d := range addSet {
		attr := r.attrFor(d.A)
		if attr.Multival {
			continue
		}
		ea := [2]datom.Entid{d.E, d.A}
		perEA[ea] = append(perEA[ea], d.V)
	}
	for ea, values := range perEA {
		if len(values) < 2 {
			continue
		}
		sort.Slice(values, func(i, j int) bool {
			return datom.ValueKey(values[i]) < datom.ValueKey(values[j])
		})
		return nil, nil, &TxError{
			Code:      ErrCodeCardinalityConflict,
			Message:   "multiple values for cardinality-one attribute",
			Entity:    int64(ea[0]),
			Attribute: int64(ea[1]),
			Values:    values,
		}
	}

	return sortedDatoms(addSet), sortedDatoms(retractSet), nil
}

func (r *commitRun) attrFor(a datom.Entid) schema.Attribute {
	attr, _ := r.base.resolve.AttributeForEntid(a)
	return attr
}

// resolveAgainstStore drops no-op assertions and retractions,
// generates the retractions that replace cardinality-one values, and
// rejects unique value conflicts.
func (r *commitRun) resolveAgainstStore(ctx context.Context, adds, retracts []datom.Datom) ([]datom.Datom, []datom.Datom, error) {
	kept := retracts[:0]
	retracted := make(map[string]struct{})
	for _, d := range retracts {
		exists, err := storage.ExistsExact(ctx, r.db, d.E, d.A, d.V)
		if err != nil {
			return nil, nil, err
		}
		if exists {
			kept = append(kept, d)
			retracted[datomKey(d)] = struct{}{}
		}
	}
	retracts = kept

	var uniquePairs []storage.AVPair
	var uniqueOwners []datom.Datom
	uniqueSeen := make(map[string]datom.Entid)

	keptAdds := adds[:0]
	for _, d := range adds {
		exists, err := storage.ExistsExact(ctx, r.db, d.E, d.A, d.V)
		if err != nil {
			return nil, nil, err
		}
		if exists {
			continue
		}
		attr := r.attrFor(d.A)

		if !attr.Multival {
			existing, err := storage.ValuesForEA(ctx, r.db, d.E, d.A)
			if err != nil {
				return nil, nil, err
			}
			for _, v := range existing {
				rd := datom.Datom{E: d.E, A: d.A, V: v, Tx: r.txID, Added: false}
				if _, ok := retracted[datomKey(rd)]; ok {
					continue
				}
				retracted[datomKey(rd)] = struct{}{}
				retracts = append(retracts, rd)
			}
		}

		if attr.Unique != schema.UniqueNone {
			avKey := fmt.Sprintf("%d|%s", int64(d.A), datom.ValueKey(d.V))
			if owner, ok := uniqueSeen[avKey]; ok && owner != d.E {
				return nil, nil, uniqueConflict(d)
			}
			uniqueSeen[avKey] = d.E
			uniquePairs = append(uniquePairs, storage.AVPair{A: d.A, V: d.V})
			uniqueOwners = append(uniqueOwners, d)
		}

		keptAdds = append(keptAdds, d)
	}
	adds = keptAdds

	if len(uniquePairs) > 0 {
		resolved, err := storage.ResolveAVPairs(ctx, r.db, uniquePairs)
		if err != nil {
			return nil, nil, err
		}
		for i, e := range resolved {
			d := uniqueOwners[i]
			if e == d.E {
				continue
			}
			// The current holder may be giving the value up in this
			// very transaction.
			rd := datom.Datom{E: e, A: d.A, V: d.V, Tx: r.txID, Added: false}
			if _, ok := retracted[datomKey(rd)]; ok {
				continue
			}
			return nil, nil, uniqueConflict(d)
		}
	}

	return adds, retracts, nil
}

func uniqueConflict(d datom.Datom) error {
	return &TxError{
		Code:      ErrCodeUniqueConflict,
		Message:   "unique value already belongs to another entity",
		Entity:    int64(d.E),
		Attribute: int64(d.A),
	}
}

// write appends the log, updates the current-state projection,
// processes metadata, and persists the partition map.
func (r *commitRun) write(ctx context.Context, adds, retracts []datom.Datom, instant datom.Instant) (*TxReport, nextState, error) {
	txDatom := datom.Datom{E: r.txID, A: schema.DBTxInstant, V: instant, Tx: r.txID, Added: true}

	logDatoms := make([]datom.Datom, 0, len(adds)+len(retracts)+1)
	logDatoms = append(logDatoms, txDatom)
	logDatoms = append(logDatoms, retracts...)
	logDatoms = append(logDatoms, adds...)
	if err := storage.AppendLog(ctx, r.db, logDatoms); err != nil {
		return nil, nextState{}, err
	}
	if err := storage.DeleteDatoms(ctx, r.db, retracts); err != nil {
		return nil, nextState{}, err
	}

	population := append(append([]datom.Datom(nil), retracts...), adds...)

	newIdents := make(map[datom.Keyword]datom.Entid, len(r.base.idents))
	for k, v := range r.base.idents {
		newIdents[k] = v
	}
	identsAltered := make(map[datom.Entid]struct{})
	for _, d := range population {
		if !schema.IsIdentAttribute(d.A) {
			continue
		}
		kw := d.V.(datom.Keyword)
		if d.Added {
			newIdents[kw] = d.E
		} else if newIdents[kw] == d.E {
			delete(newIdents, kw)
		}
		identsAltered[d.E] = struct{}{}
	}

	newAttrs := make(map[datom.Entid]schema.Attribute, len(r.base.attrs))
	for k, v := range r.base.attrs {
		newAttrs[k] = v
	}
	identFn := func(e datom.Entid) string {
		if kw, ok := r.base.resolve.IdentForEntid(e); ok {
			return kw.String()
		}
		return fmt.Sprintf("%d", int64(e))
	}
	metaReport, err := schema.UpdateAttributeMap(newAttrs, population, identFn)
	if err != nil {
		return nil, nextState{}, err
	}
	for e := range identsAltered {
		metaReport.IdentsAltered[e] = struct{}{}
	}

	flags := func(a datom.Entid) byte {
		if attr, ok := newAttrs[a]; ok {
			return attr.Flags()
		}
		return 0
	}
	if err := storage.InsertDatoms(ctx, r.db, append(adds, txDatom), flags); err != nil {
		return nil, nextState{}, err
	}

	if err := r.validateAlterations(ctx, metaReport, newAttrs); err != nil {
		return nil, nextState{}, err
	}

	if !metaReport.Empty() {
		if err := storage.RecomputeIdents(ctx, r.db); err != nil {
			return nil, nextState{}, err
		}
		if err := storage.RecomputeSchema(ctx, r.db); err != nil {
			return nil, nextState{}, err
		}
	}

	if err := storage.UpdatePartitionNext(ctx, r.db, r.parts); err != nil {
		return nil, nextState{}, err
	}

	newSchema, err := schema.New(newIdents, newAttrs)
	if err != nil {
		return nil, nextState{}, fmt.Errorf("transaction produced inconsistent schema: %w", err)
	}

	tempids := make(map[string]datom.Entid, len(r.tempids))
	for temp, e := range r.tempids {
		tempids[string(temp)] = e
	}
	report := &TxReport{
		TxID:      r.txID,
		TxInstant: instant,
		Tempids:   tempids,
		Metadata:  metaReport,
	}
	return report, nextState{schema: newSchema, parts: r.parts}, nil
}

// validateAlterations enforces the data-dependent alteration rules
// after this transaction's rows are in place.
func (r *commitRun) validateAlterations(ctx context.Context, report schema.MetadataReport, newAttrs map[datom.Entid]schema.Attribute) error {
	for e, alterations := range report.AttributesAltered {
		old := r.base.attrs[e]
		now := newAttrs[e]

		for _, alt := range alterations {
			switch alt {
			case schema.AlterCardinality:
				if old.Multival && !now.Multival {
					dup, err := storage.HasDuplicateEAValues(ctx, r.db, e)
					if err != nil {
						return err
					}
					if dup {
						return &schema.AlterationFailed{
							Attribute: e,
							Message:   "cannot change cardinality to one: an entity holds multiple values",
						}
					}
				}
			case schema.AlterUnique:
				if old.Unique == schema.UniqueNone && now.Unique != schema.UniqueNone {
					shared, err := storage.HasSharedAVValues(ctx, r.db, e)
					if err != nil {
						return err
					}
					if shared {
						return &schema.AlterationFailed{
							Attribute: e,
							Message:   "cannot add uniqueness: a value belongs to multiple entities",
						}
					}
				}
			}
		}

		if old.Flags() != now.Flags() {
			if err := storage.UpdateIndexFlags(ctx, r.db, e, now.Flags()); err != nil {
				return err
			}
		}
	}
	return nil
}

func datomKey(d datom.Datom) string {
	return fmt.Sprintf("%d|%d|%s", int64(d.E), int64(d.A), datom.ValueKey(d.V))
}

func sortedDatoms(set map[string]datom.Datom) []datom.Datom {
	out := make([]datom.Datom, 0, len(set))
	for _, d := range set {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].E != out[j].E {
			return out[i].E < out[j].E
		}
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return datom.ValueKey(out[i].V) < datom.ValueKey(out[j].V)
	})
	return out
}
