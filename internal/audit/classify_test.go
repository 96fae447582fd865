package audit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/almacen-api/internal/models"
)

func TestClassifyVerdicts(t *testing.T) {
	classifier := NewClassifier(DefaultRegistry())
	before := &Snapshot{Fields: Fields{"id": uint(7), "nombre": "Arroz", "stock_actual_base": "10"}}
	after := Fields{"id": uint(7), "nombre": "Arroz", "stock_actual_base": "8"}

	cases := map[string]struct {
		mutation Mutation
		verdict  Verdict
	}{
		"excluded entity": {
			mutation: Mutation{EntityType: models.EntityUser, ID: "1", Op: OpCreate},
			verdict:  VerdictExcluded,
		},
		"register creation has a dedicated event": {
			mutation: Mutation{EntityType: models.EntityRegister, ID: "1", Op: OpCreate},
			verdict:  VerdictDedicatedEvent,
		},
		"sale line creation has a dedicated event": {
			mutation: Mutation{EntityType: models.EntitySaleLine, ID: "1", Op: OpCreate},
			verdict:  VerdictDedicatedEvent,
		},
		"update without snapshot": {
			mutation: Mutation{EntityType: models.EntityProduct, ID: "7", Op: OpUpdate, Fields: after},
			verdict:  VerdictNoSnapshot,
		},
		"update without changes": {
			mutation: Mutation{EntityType: models.EntityProduct, ID: "7", Op: OpUpdate, Fields: before.Fields, Snapshot: before},
			verdict:  VerdictNoChanges,
		},
		"register update": {
			mutation: Mutation{EntityType: models.EntityRegister, ID: "1", Op: OpUpdate, Fields: Fields{"abierta": false}, Snapshot: &Snapshot{Fields: Fields{"abierta": true}}},
			verdict:  VerdictDedicatedEvent,
		},
		"stock update caused by a sale": {
			mutation: Mutation{EntityType: models.EntityProduct, ID: "7", Op: OpUpdate, Fields: after, Snapshot: before, Cause: &Cause{Category: CategorySale}},
			verdict:  VerdictCausedBy,
		},
		"category update caused by a sale is still recorded": {
			mutation: Mutation{EntityType: models.EntityCategory, ID: "2", Op: OpUpdate, Fields: Fields{"nombre": "B"}, Snapshot: &Snapshot{Fields: Fields{"nombre": "A"}}, Cause: &Cause{Category: CategorySale}},
			verdict:  VerdictEmit,
		},
		"edit right after a sale": {
			mutation: Mutation{EntityType: models.EntityProduct, ID: "7", Op: OpUpdate, Fields: after, Snapshot: before, RecentSale: true},
			verdict:  VerdictRecentSale,
		},
		"genuine update": {
			mutation: Mutation{EntityType: models.EntityProduct, ID: "7", Op: OpUpdate, Fields: after, Snapshot: before, ActorName: "ana"},
			verdict:  VerdictEmit,
		},
		"unregistered entity creation": {
			mutation: Mutation{EntityType: "supplier", ID: "1", Op: OpCreate},
			verdict:  VerdictEmit,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, verdict := classifier.Classify(tc.mutation)
			require.Equal(t, tc.verdict, verdict)
		})
	}
}

func TestClassifyKeepsChangesWhenSuppressed(t *testing.T) {
	classifier := NewClassifier(DefaultRegistry())
	emission, verdict := classifier.Classify(Mutation{
		EntityType: models.EntityProduct,
		ID:         "7",
		Op:         OpUpdate,
		Fields:     Fields{"stock_actual_base": "2"},
		Snapshot:   &Snapshot{Fields: Fields{"stock_actual_base": "10"}},
		Cause:      &Cause{Category: CategorySale},
	})
	require.Equal(t, VerdictCausedBy, verdict)
	require.Equal(t, []string{"stock_actual_base"}, emission.Changes.Keys())
	require.Empty(t, emission.Description)
}

func TestClassifyRendersGenuineUpdate(t *testing.T) {
	classifier := NewClassifier(DefaultRegistry())
	emission, verdict := classifier.Classify(Mutation{
		EntityType: models.EntityCategory,
		ID:         "3",
		Op:         OpUpdate,
		ActorName:  "ana",
		Fields:     Fields{"id": uint(3), "nombre": "Bebidas", "descripcion": "Drinks"},
		Snapshot:   &Snapshot{Fields: Fields{"id": uint(3), "nombre": "Bebidas", "descripcion": nil}},
	})
	require.Equal(t, VerdictEmit, verdict)
	require.Equal(t, CategoryUpdated, emission.Category)
	require.Equal(t, "Categoría 'Bebidas' por ana: Descripción: '' -> 'Drinks'", emission.Description)
}

func TestClassifyCreditPaymentUsesDomainCategory(t *testing.T) {
	classifier := NewClassifier(DefaultRegistry())
	emission, verdict := classifier.Classify(Mutation{
		EntityType: models.EntityCreditPayment,
		ID:         "1",
		Op:         OpCreate,
		Fields:     Fields{"cliente_nombre": "Juan", "monto": "500"},
	})
	require.Equal(t, VerdictEmit, verdict)
	require.Equal(t, CategoryCreditPayment, emission.Category)
	require.Equal(t, "Abono fiado Juan $500", emission.Description)
}

func TestLowStockRule(t *testing.T) {
	schema := schemaFor(t, models.EntityProduct)
	touched := ChangeSet{{Field: "stock_actual_base", Old: "10", New: "3"}}

	event, fire := LowStock(schema, "7", Fields{"nombre": "Coca Cola 1.5L", "stock_actual_base": "3.000", "stock_minimo": "5.000"}, touched)
	require.True(t, fire)
	require.Equal(t, CategoryLowStock, event.Category)
	require.Equal(t, "Stock bajo: coca cola 1.5l = 3 (mínimo 5)", event.Description)
	require.Equal(t, "product:7", event.Fingerprint)

	_, fire = LowStock(schema, "7", Fields{"stock_actual_base": "5", "stock_minimo": "5"}, touched)
	require.True(t, fire, "equal to minimum fires")

	_, fire = LowStock(schema, "7", Fields{"stock_actual_base": "6", "stock_minimo": "5"}, touched)
	require.False(t, fire)

	_, fire = LowStock(schema, "7", Fields{"stock_actual_base": "0", "stock_minimo": "0"}, touched)
	require.False(t, fire, "no minimum configured")

	_, fire = LowStock(schema, "7", Fields{"stock_actual_base": "1", "stock_minimo": "5"}, ChangeSet{{Field: "nombre"}})
	require.False(t, fire, "quantity untouched")

	_, fire = LowStock(schemaFor(t, models.EntityCategory), "7", Fields{}, touched)
	require.False(t, fire)
}
