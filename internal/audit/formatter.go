package audit

import (
	"fmt"
	"strings"

	"github.com/noah-isme/almacen-api/internal/models"
	"github.com/noah-isme/almacen-api/pkg/numfmt"
)

// FormatInput carries everything a formatter may render.
type FormatInput struct {
	Schema    EntitySchema
	Op        Operation
	ID        string
	ActorName string
	Fields    Fields
	Changes   ChangeSet
}

// Rendering is the outcome of formatting one mutation.
type Rendering struct {
	Category    Category
	Description string
}

// Formatter turns a mutation into a category and description. Schemas pick
// one of the variants below.
type Formatter interface {
	Format(in FormatInput) Rendering
}

// GenericFormatter renders raw keys and values.
type GenericFormatter struct{}

func (GenericFormatter) Format(in FormatInput) Rendering {
	switch in.Op {
	case OpCreate:
		return Rendering{CategoryCreated, fmt.Sprintf("Creado %s id=%s", in.Schema.Display, in.ID)}
	case OpDelete:
		return Rendering{CategoryDeleted, fmt.Sprintf("Eliminado %s id=%s: %s", in.Schema.Display, in.ID, deletedPairs(in, stringify))}
	default:
		parts := make([]string, 0, len(in.Changes))
		for _, ch := range in.Changes {
			parts = append(parts, fmt.Sprintf("%s: '%s' -> '%s'", ch.Field, stringify(ch.Old), stringify(ch.New)))
		}
		return Rendering{CategoryUpdated, fmt.Sprintf("%s id=%s por %s: %s", in.Schema.Display, in.ID, in.ActorName, strings.Join(parts, "; "))}
	}
}

// LabeledFormatter uses display labels and renders money and quantities the
// way the store reads them.
type LabeledFormatter struct{}

func (LabeledFormatter) Format(in FormatInput) Rendering {
	subject := labeledSubject(in)
	render := func(key string, value interface{}) string { return renderValue(in.Schema.Kind(key), value) }

	switch in.Op {
	case OpCreate:
		return Rendering{CategoryCreated, "Creado " + subject}
	case OpDelete:
		pairs := deletedPairs(in, nil)
		return Rendering{CategoryDeleted, fmt.Sprintf("Eliminado %s: %s", subject, pairs)}
	default:
		parts := make([]string, 0, len(in.Changes))
		for _, ch := range in.Changes {
			parts = append(parts, fmt.Sprintf("%s: '%s' -> '%s'", in.Schema.Label(ch.Field), render(ch.Field, ch.Old), render(ch.Field, ch.New)))
		}
		return Rendering{CategoryUpdated, fmt.Sprintf("%s por %s: %s", subject, in.ActorName, strings.Join(parts, "; "))}
	}
}

// CreditFormatter renders customer credit accounts by customer name and
// collapses a settled balance into a single phrase.
type CreditFormatter struct{}

func (CreditFormatter) Format(in FormatInput) Rendering {
	customer := in.Fields.String("cliente_nombre")
	if customer == "" {
		return LabeledFormatter{}.Format(in)
	}

	switch in.Op {
	case OpCreate:
		return Rendering{CategoryCreated, fmt.Sprintf("Creado %s %s %s", in.Schema.Display, customer, numfmt.MoneyOr(in.Fields["total"]))}
	case OpDelete:
		return LabeledFormatter{}.Format(in)
	}

	parts := make([]string, 0, len(in.Changes))
	balance, hasBalance := in.Changes.Get("saldo")
	status, hasStatus := in.Changes.Get("estado")
	settled := hasBalance && hasStatus && isZero(balance.New) && stringify(status.New) == models.CreditPaid
	if settled {
		parts = append(parts, fmt.Sprintf("pagado en su totalidad (%s)", numfmt.MoneyOr(balance.Old)))
	}

	for _, ch := range in.Changes {
		switch {
		case settled && (ch.Field == "saldo" || ch.Field == "estado"):
			continue
		case ch.Field == "saldo":
			parts = append(parts, fmt.Sprintf("Saldo: %s -> %s", numfmt.MoneyOr(ch.Old), numfmt.MoneyOr(ch.New)))
		case ch.Field == "estado":
			parts = append(parts, fmt.Sprintf("Estado: %s -> %s", stringify(ch.Old), stringify(ch.New)))
		default:
			kind := in.Schema.Kind(ch.Field)
			parts = append(parts, fmt.Sprintf("%s: '%s' -> '%s'", in.Schema.Label(ch.Field), renderValue(kind, ch.Old), renderValue(kind, ch.New)))
		}
	}

	return Rendering{CategoryUpdated, fmt.Sprintf("%s %s por %s: %s", in.Schema.Display, customer, in.ActorName, strings.Join(parts, "; "))}
}

// CreditPaymentFormatter reports payments against a credit account in their
// own category.
type CreditPaymentFormatter struct{}

func (CreditPaymentFormatter) Format(in FormatInput) Rendering {
	if in.Op != OpCreate {
		return LabeledFormatter{}.Format(in)
	}
	customer := in.Fields.String("cliente_nombre")
	if customer == "" {
		customer = "id=" + in.Fields.String("fiado_id")
	}
	return Rendering{CategoryCreditPayment, fmt.Sprintf("Abono fiado %s %s", customer, numfmt.MoneyOr(in.Fields["monto"]))}
}

func labeledSubject(in FormatInput) string {
	if in.Schema.TitleField != "" {
		if title := in.Fields.String(in.Schema.TitleField); title != "" {
			return fmt.Sprintf("%s '%s'", in.Schema.Display, title)
		}
	}
	return fmt.Sprintf("%s id=%s", in.Schema.Display, in.ID)
}

// deletedPairs lists key='value' for every non-ignored, non-empty field.
// A nil render uses the schema kind of each field.
func deletedPairs(in FormatInput, render func(interface{}) string) string {
	parts := make([]string, 0, len(in.Fields))
	for _, key := range in.Schema.OrderedKeys(in.Fields) {
		if in.Schema.ignored(key) {
			continue
		}
		value := in.Fields[key]
		if absent(value) {
			continue
		}
		var text string
		if render != nil {
			text = render(value)
		} else {
			text = renderValue(in.Schema.Kind(key), value)
		}
		parts = append(parts, fmt.Sprintf("%s='%s'", key, text))
	}
	return strings.Join(parts, "; ")
}

func renderValue(kind FieldKind, value interface{}) string {
	if absent(value) {
		return ""
	}
	switch kind {
	case KindMoney:
		return numfmt.MoneyOr(value)
	case KindQuantity:
		return numfmt.Quantity(value)
	default:
		return stringify(value)
	}
}

func isZero(value interface{}) bool {
	d, ok := numfmt.Parse(value)
	return ok && d.IsZero()
}
