package audit

import (
	"sort"

	"github.com/noah-isme/almacen-api/internal/models"
)

// FieldKind tells formatters how to render a value.
type FieldKind int

const (
	KindText FieldKind = iota
	KindMoney
	KindQuantity
	KindReference
)

// FieldSpec describes one audited column.
type FieldSpec struct {
	Key   string
	Label string
	Kind  FieldKind
}

// Suppression marks operations that already have a richer dedicated event.
type Suppression struct {
	Create bool
	Update bool
	Delete bool
}

func (s Suppression) covers(op Operation) bool {
	switch op {
	case OpCreate:
		return s.Create
	case OpUpdate:
		return s.Update
	case OpDelete:
		return s.Delete
	}
	return false
}

// StockAlert names the columns the low stock rule reads.
type StockAlert struct {
	QuantityField string
	MinimumField  string
	NameField     string
}

// EntitySchema is the static audit descriptor for one entity type.
type EntitySchema struct {
	Name           string
	Display        string
	Fields         []FieldSpec
	Identity       string
	Ignore         []string
	TitleField     string
	ActorField     string
	Suppress       Suppression
	SuppressCauses []Category
	Formatter      Formatter
	StockAlert     *StockAlert
}

// Field looks up the definition of a column.
func (s EntitySchema) Field(key string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Label returns the display label for a column, or the key itself.
func (s EntitySchema) Label(key string) string {
	if f, ok := s.Field(key); ok && f.Label != "" {
		return f.Label
	}
	return key
}

// Kind returns the field kind, KindText when unknown.
func (s EntitySchema) Kind(key string) FieldKind {
	if f, ok := s.Field(key); ok {
		return f.Kind
	}
	return KindText
}

func (s EntitySchema) identity() string {
	if s.Identity == "" {
		return "id"
	}
	return s.Identity
}

func (s EntitySchema) ignored(key string) bool {
	if key == s.identity() {
		return true
	}
	for _, k := range s.Ignore {
		if k == key {
			return true
		}
	}
	return false
}

func (s EntitySchema) suppressedBy(cause Category) bool {
	for _, c := range s.SuppressCauses {
		if c == cause {
			return true
		}
	}
	return false
}

func (s EntitySchema) formatter() Formatter {
	if s.Formatter == nil {
		return GenericFormatter{}
	}
	return s.Formatter
}

// OrderedKeys lists the keys of fields in schema order followed by any
// undeclared keys sorted alphabetically.
func (s EntitySchema) OrderedKeys(fields Fields) []string {
	keys := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range s.Fields {
		if _, ok := fields[f.Key]; ok {
			keys = append(keys, f.Key)
			seen[f.Key] = struct{}{}
		}
	}
	extra := make([]string, 0)
	for k := range fields {
		if _, ok := seen[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// Registry resolves entity types to their schema.
type Registry struct {
	schemas  map[string]EntitySchema
	excluded map[string]struct{}
}

// NewRegistry builds a registry. Excluded types are never audited even if a
// schema is supplied for them.
func NewRegistry(excluded []string, schemas ...EntitySchema) *Registry {
	r := &Registry{
		schemas:  make(map[string]EntitySchema, len(schemas)),
		excluded: make(map[string]struct{}, len(excluded)),
	}
	for _, name := range excluded {
		r.excluded[name] = struct{}{}
	}
	for _, s := range schemas {
		r.schemas[s.Name] = s
	}
	return r
}

// Auditable reports whether mutations of the entity type are tracked.
func (r *Registry) Auditable(entityType string) bool {
	if entityType == "" {
		return false
	}
	_, excluded := r.excluded[entityType]
	return !excluded
}

// Lookup returns the schema for an auditable entity type. Unregistered types
// get a generic schema so their mutations still produce fallback records.
func (r *Registry) Lookup(entityType string) (EntitySchema, bool) {
	if !r.Auditable(entityType) {
		return EntitySchema{}, false
	}
	if s, ok := r.schemas[entityType]; ok {
		return s, true
	}
	return EntitySchema{Name: entityType, Display: entityType, Formatter: GenericFormatter{}}, true
}

// DefaultRegistry describes the point of sale entities.
func DefaultRegistry() *Registry {
	return NewRegistry(
		[]string{models.EntityUser, models.EntityActivity, models.EntityStockReceiptLine},
		EntitySchema{
			Name:    models.EntityCategory,
			Display: "Categoría",
			Fields: []FieldSpec{
				{Key: "nombre", Label: "Nombre"},
				{Key: "descripcion", Label: "Descripción"},
			},
			TitleField: "nombre",
			Formatter:  LabeledFormatter{},
		},
		EntitySchema{
			Name:    models.EntityProduct,
			Display: "Producto",
			Fields: []FieldSpec{
				{Key: "nombre", Label: "Nombre"},
				{Key: "codigo_barra", Label: "Código de barra"},
				{Key: "categoria_id", Label: "Categoría", Kind: KindReference},
				{Key: "tipo_producto", Label: "Tipo"},
				{Key: "unidad_base", Label: "Unidad base"},
				{Key: "stock_actual_base", Label: "Stock", Kind: KindQuantity},
				{Key: "stock_minimo", Label: "Stock mínimo", Kind: KindQuantity},
				{Key: "precio_compra", Label: "Precio de compra", Kind: KindMoney},
				{Key: "precio_venta", Label: "Precio de venta", Kind: KindMoney},
			},
			Ignore:         []string{"created_at", "updated_at"},
			TitleField:     "nombre",
			SuppressCauses: []Category{CategorySale, CategoryStockReceipt},
			Formatter:      LabeledFormatter{},
			StockAlert: &StockAlert{
				QuantityField: "stock_actual_base",
				MinimumField:  "stock_minimo",
				NameField:     "nombre",
			},
		},
		EntitySchema{
			Name:    models.EntityRegister,
			Display: "Caja",
			Fields: []FieldSpec{
				{Key: "fecha", Label: "Fecha"},
				{Key: "monto_inicial", Label: "Monto inicial", Kind: KindMoney},
				{Key: "total_vendido", Label: "Total vendido", Kind: KindMoney},
				{Key: "total_efectivo", Label: "Total efectivo", Kind: KindMoney},
				{Key: "total_debito", Label: "Total débito", Kind: KindMoney},
				{Key: "total_transferencia", Label: "Total transferencia", Kind: KindMoney},
				{Key: "abierta", Label: "Abierta"},
				{Key: "abierta_por_id", Label: "Abierta por", Kind: KindReference},
				{Key: "cerrada_por_id", Label: "Cerrada por", Kind: KindReference},
				{Key: "hora_apertura", Label: "Hora de apertura"},
				{Key: "hora_cierre", Label: "Hora de cierre"},
			},
			ActorField: "abierta_por_id",
			Suppress:   Suppression{Create: true, Update: true},
			Formatter:  GenericFormatter{},
		},
		EntitySchema{
			Name:    models.EntitySale,
			Display: "Venta",
			Fields: []FieldSpec{
				{Key: "fecha", Label: "Fecha"},
				{Key: "total", Label: "Total", Kind: KindMoney},
				{Key: "metodo_pago", Label: "Método de pago"},
				{Key: "usuario_id", Label: "Usuario", Kind: KindReference},
				{Key: "caja_id", Label: "Caja", Kind: KindReference},
			},
			ActorField: "usuario_id",
			Suppress:   Suppression{Create: true},
			Formatter:  GenericFormatter{},
		},
		EntitySchema{
			Name:    models.EntitySaleLine,
			Display: "Detalle de venta",
			Fields: []FieldSpec{
				{Key: "venta_id", Label: "Venta", Kind: KindReference},
				{Key: "producto_id", Label: "Producto", Kind: KindReference},
				{Key: "cantidad_base", Label: "Cantidad", Kind: KindQuantity},
				{Key: "precio_unitario", Label: "Precio unitario", Kind: KindMoney},
				{Key: "subtotal", Label: "Subtotal", Kind: KindMoney},
			},
			Suppress:  Suppression{Create: true},
			Formatter: GenericFormatter{},
		},
		EntitySchema{
			Name:    models.EntityStockReceipt,
			Display: "Ingreso de stock",
			Fields: []FieldSpec{
				{Key: "fecha", Label: "Fecha"},
				{Key: "usuario_id", Label: "Usuario", Kind: KindReference},
				{Key: "observacion", Label: "Observación"},
			},
			ActorField: "usuario_id",
			Suppress:   Suppression{Create: true},
			Formatter:  GenericFormatter{},
		},
		EntitySchema{
			Name:    models.EntityCredit,
			Display: "Fiado",
			Fields: []FieldSpec{
				{Key: "cliente_nombre", Label: "Cliente"},
				{Key: "cliente_telefono", Label: "Teléfono"},
				{Key: "total", Label: "Total", Kind: KindMoney},
				{Key: "saldo", Label: "Saldo", Kind: KindMoney},
				{Key: "estado", Label: "Estado"},
				{Key: "observacion", Label: "Observación"},
				{Key: "usuario_id", Label: "Usuario", Kind: KindReference},
				{Key: "caja_id", Label: "Caja", Kind: KindReference},
			},
			Ignore:     []string{"fecha"},
			TitleField: "cliente_nombre",
			Formatter:  CreditFormatter{},
		},
		EntitySchema{
			Name:    models.EntityCreditPayment,
			Display: "Abono",
			Fields: []FieldSpec{
				{Key: "fiado_id", Label: "Fiado", Kind: KindReference},
				{Key: "cliente_nombre", Label: "Cliente"},
				{Key: "monto", Label: "Monto", Kind: KindMoney},
				{Key: "metodo_pago", Label: "Método de pago"},
				{Key: "referencia", Label: "Referencia"},
				{Key: "usuario_id", Label: "Usuario", Kind: KindReference},
				{Key: "caja_id", Label: "Caja", Kind: KindReference},
			},
			Ignore:     []string{"fecha"},
			ActorField: "usuario_id",
			Formatter:  CreditPaymentFormatter{},
		},
	)
}
