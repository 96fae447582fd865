package audit

import (
	"fmt"
	"strings"

	"github.com/noah-isme/almacen-api/pkg/numfmt"
)

// Verdict explains why a mutation did not produce a record. The empty verdict
// means the record is emitted.
type Verdict string

const (
	VerdictEmit           Verdict = ""
	VerdictExcluded       Verdict = "excluded"
	VerdictDedicatedEvent Verdict = "dedicated_event"
	VerdictNoChanges      Verdict = "no_changes"
	VerdictCausedBy       Verdict = "caused_by"
	VerdictRecentSale     Verdict = "recent_sale"
	VerdictNoSnapshot     Verdict = "no_snapshot"
	VerdictDuplicate      Verdict = "duplicate"
)

// Mutation is one observed persistence change together with the context the
// classifier needs.
type Mutation struct {
	EntityType string
	ID         string
	Op         Operation
	Fields     Fields
	Snapshot   *Snapshot
	ActorName  string
	Cause      *Cause
	// RecentSale is set when a sale was recorded in the active session within
	// the configured edit window.
	RecentSale bool
}

// Emission is the classified outcome. Changes is filled for updates even when
// the record itself is suppressed.
type Emission struct {
	Schema      EntitySchema
	Category    Category
	Description string
	Changes     ChangeSet
}

// Classifier maps mutations to categories and descriptions using the registry.
type Classifier struct {
	registry *Registry
}

// NewClassifier constructs a classifier.
func NewClassifier(registry *Registry) *Classifier {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Classifier{registry: registry}
}

// Classify decides whether a mutation produces a record and renders it.
func (c *Classifier) Classify(m Mutation) (Emission, Verdict) {
	schema, ok := c.registry.Lookup(m.EntityType)
	if !ok {
		return Emission{}, VerdictExcluded
	}
	emission := Emission{Schema: schema, Category: m.Op.Category()}

	switch m.Op {
	case OpCreate:
		if schema.Suppress.Create {
			return emission, VerdictDedicatedEvent
		}
	case OpUpdate:
		if m.Snapshot == nil {
			return emission, VerdictNoSnapshot
		}
		emission.Changes = Diff(*m.Snapshot, m.Fields, schema)
		switch {
		case len(emission.Changes) == 0:
			return emission, VerdictNoChanges
		case schema.Suppress.Update:
			return emission, VerdictDedicatedEvent
		case m.Cause != nil && schema.suppressedBy(m.Cause.Category):
			return emission, VerdictCausedBy
		case m.RecentSale:
			return emission, VerdictRecentSale
		}
	case OpDelete:
		if schema.Suppress.Delete {
			return emission, VerdictDedicatedEvent
		}
	}

	rendering := render(schema, FormatInput{
		Schema:    schema,
		Op:        m.Op,
		ID:        m.ID,
		ActorName: m.ActorName,
		Fields:    m.Fields,
		Changes:   emission.Changes,
	})
	emission.Category = rendering.Category
	emission.Description = rendering.Description
	return emission, VerdictEmit
}

// render runs the schema formatter and falls back to the generic one if the
// specialised formatter panics or produces nothing.
func render(schema EntitySchema, in FormatInput) (out Rendering) {
	defer func() {
		if recover() != nil {
			out = GenericFormatter{}.Format(in)
		}
	}()
	out = schema.formatter().Format(in)
	if out.Description == "" {
		out = GenericFormatter{}.Format(in)
	}
	if out.Category == "" {
		out.Category = in.Op.Category()
	}
	return out
}

// LowStock evaluates the schema's stock alert after an update. It fires when
// the quantity changed and is at or below a positive minimum.
func LowStock(schema EntitySchema, id string, fields Fields, changes ChangeSet) (Event, bool) {
	rule := schema.StockAlert
	if rule == nil {
		return Event{}, false
	}
	if _, touched := changes.Get(rule.QuantityField); !touched {
		return Event{}, false
	}

	quantity, ok := numfmt.Parse(fields[rule.QuantityField])
	if !ok {
		return Event{}, false
	}
	minimum, ok := numfmt.Parse(fields[rule.MinimumField])
	if !ok || !minimum.IsPositive() || quantity.GreaterThan(minimum) {
		return Event{}, false
	}

	name := strings.ToLower(fields.String(rule.NameField))
	return Event{
		Category:    CategoryLowStock,
		Description: fmt.Sprintf("Stock bajo: %s = %s (mínimo %s)", name, numfmt.Quantity(quantity), numfmt.Quantity(minimum)),
		EntityType:  schema.Name,
		EntityID:    id,
		Fingerprint: schema.Name + ":" + id,
	}, true
}
