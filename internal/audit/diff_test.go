package audit

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/almacen-api/internal/models"
)

func productSchema(t *testing.T) EntitySchema {
	t.Helper()
	schema, ok := DefaultRegistry().Lookup(models.EntityProduct)
	require.True(t, ok)
	return schema
}

func TestDiffIgnoresNumericNoise(t *testing.T) {
	schema := productSchema(t)
	before := Snapshot{Fields: Fields{
		"id":                uint(1),
		"stock_actual_base": "5.000",
		"precio_venta":      decimal.RequireFromString("1500.00"),
		"stock_minimo":      "5.0",
	}}

	changes := Diff(before, Fields{
		"id":                uint(1),
		"stock_actual_base": "5",
		"precio_venta":      1500,
		"stock_minimo":      decimal.NewFromInt(5),
	}, schema)
	require.Empty(t, changes)
}

func TestDiffReportsChangesInSchemaOrder(t *testing.T) {
	schema := productSchema(t)
	before := Snapshot{Fields: Fields{
		"id":           uint(1),
		"nombre":       "Arroz",
		"precio_venta": "1200",
		"updated_at":   time.Unix(1, 0),
	}}

	changes := Diff(before, Fields{
		"id":           uint(1),
		"nombre":       "Arroz integral",
		"precio_venta": "1500",
		"updated_at":   time.Unix(2, 0),
	}, schema)
	require.Equal(t, []string{"nombre", "precio_venta"}, changes.Keys())

	change, ok := changes.Get("precio_venta")
	require.True(t, ok)
	require.Equal(t, "1200", change.Old)
	require.Equal(t, "1500", change.New)
}

func TestDiffTreatsNilAndEmptyAsAbsent(t *testing.T) {
	schema, _ := DefaultRegistry().Lookup(models.EntityCategory)
	var nilString *string
	drinks := "Drinks"

	require.Empty(t, Diff(Snapshot{Fields: Fields{"descripcion": nil}}, Fields{"descripcion": nilString}, schema))
	require.Empty(t, Diff(Snapshot{Fields: Fields{"descripcion": nil}}, Fields{"descripcion": ""}, schema))

	changes := Diff(Snapshot{Fields: Fields{"descripcion": nil}}, Fields{"descripcion": &drinks}, schema)
	require.Equal(t, []string{"descripcion"}, changes.Keys())
}

func TestDiffOnlyWalksSnapshotFields(t *testing.T) {
	schema := productSchema(t)

	changes := Diff(Snapshot{Fields: Fields{"nombre": "Arroz"}}, Fields{"nombre": "Arroz", "precio_venta": "10"}, schema)
	require.Empty(t, changes)
}
