package edit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/reldiagram/internal/diagram"
	"github.com/tordrt/reldiagram/internal/schema"
)

func column(name string, fks ...schema.ForeignKey) schema.Column {
	if fks == nil {
		fks = []schema.ForeignKey{}
	}
	return schema.Column{Name: name, Type: schema.TypeNumber, ForeignKeys: fks}
}

func target(schemaName, table, col string, constrained bool) schema.ForeignKey {
	return schema.ForeignKey{
		ForeignSchemaName: schemaName,
		ForeignTableName:  table,
		ForeignColumnName: col,
		Constrained:       constrained,
	}
}

func ref(schemaName, table, col string) schema.ColumnRef {
	return schema.ColumnRef{SchemaName: schemaName, TableName: table, ColumnName: col}
}

func testSchemas() []schema.Schema {
	return []schema.Schema{
		{
			Name: "shop",
			Tables: []schema.Table{
				{Name: "customers", PrimaryKey: schema.PrimaryKey{"id"}, Columns: []schema.Column{
					column("id"),
					column("email"),
				}},
				{Name: "orders", PrimaryKey: schema.PrimaryKey{"id"}, Columns: []schema.Column{
					column("id"),
					column("customer_id"),
				}},
				{Name: "payments", PrimaryKey: schema.PrimaryKey{"id"}, Columns: []schema.Column{
					column("id"),
					column("order_id", target("shop", "orders", "id", true)),
					column("customer_id", target("shop", "customers", "id", false)),
				}},
			},
		},
		{
			Name: "crm",
			Tables: []schema.Table{
				{Name: "contacts", PrimaryKey: schema.PrimaryKey{"id"}, Columns: []schema.Column{
					column("id"),
				}},
			},
		},
	}
}

// recorder keeps every notification in the order it fired
type recorder struct {
	events  []string
	changes [][]schema.Schema
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		OnSchemasChange: func(s []schema.Schema) {
			r.events = append(r.events, "schemas")
			r.changes = append(r.changes, s)
		},
		OnCreateForeignKey: func(fk schema.SpecifiedForeignKey) {
			r.events = append(r.events, "create "+fk.String())
		},
		OnDeleteForeignKey: func(fk schema.SpecifiedForeignKey) {
			r.events = append(r.events, "delete "+fk.String())
		},
		OnAttemptToRecreateExistingRelationship: func(fk schema.SpecifiedForeignKey) {
			r.events = append(r.events, "duplicate "+fk.String())
		},
		OnAttemptToConnectColumnToItself: func(c schema.ColumnRef) {
			r.events = append(r.events, "self "+c.ID())
		},
		OnAttemptToDeleteConstrainedRelationship: func(fk schema.SpecifiedForeignKey) {
			r.events = append(r.events, "constrained "+fk.String())
		},
	}
}

func edgeByID(t *testing.T, schemas []schema.Schema, id string) diagram.Edge {
	t.Helper()
	for _, e := range diagram.Edges(schemas) {
		if e.ID == id {
			return e
		}
	}
	t.Fatalf("edge %s not found", id)
	return diagram.Edge{}
}

func TestConnect(t *testing.T) {
	rec := &recorder{}
	before := testSchemas()
	e := NewEditor(before, rec.handlers())

	res, err := e.Connect(Connection{
		Source: ref("shop", "orders", "customer_id"),
		Target: ref("shop", "customers", "id"),
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.NoError(t, res.Violation)
	assert.Equal(t, []string{
		"schemas",
		"create shop.orders.customer_id -> shop.customers.id",
	}, rec.events)
	require.Len(t, rec.changes, 1)
	assert.Equal(t, res.Schemas, rec.changes[0])

	require.NotNil(t, res.Created)
	assert.Equal(t, "customer_id", res.Created.LocalColumnName)
	assert.Equal(t, "customers", res.Created.ForeignTableName)
	assert.Nil(t, res.Deleted)

	col := schema.FindColumn(res.Schemas, ref("shop", "orders", "customer_id"))
	require.NotNil(t, col)
	assert.Equal(t, []schema.ForeignKey{target("shop", "customers", "id", false)}, col.ForeignKeys)

	// the editor's collection is untouched until the caller feeds the result back
	assert.Equal(t, testSchemas(), e.Schemas())
	assert.Empty(t, schema.FindColumn(before, ref("shop", "orders", "customer_id")).ForeignKeys)
}

func TestConnectDuplicate(t *testing.T) {
	rec := &recorder{}
	e := NewEditor(testSchemas(), rec.handlers())
	conn := Connection{Source: ref("shop", "orders", "customer_id"), Target: ref("shop", "customers", "id")}

	res, err := e.Connect(conn)
	require.NoError(t, err)
	e.SetSchemas(res.Schemas)
	rec.events = nil

	res, err = e.Connect(conn)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Nil(t, res.Schemas)
	assert.True(t, errors.Is(res.Violation, ErrDuplicateRelationship))
	assert.False(t, errors.Is(res.Violation, ErrSelfConnection))
	assert.Equal(t, []string{"duplicate shop.orders.customer_id -> shop.customers.id"}, rec.events)

	var v *ViolationError
	require.True(t, errors.As(res.Violation, &v))
	assert.Equal(t, DuplicateRelationship, v.Kind)
	assert.Equal(t, conn.ForeignKey(), v.ForeignKey)
}

func TestConnectExistingConstrainedRelationship(t *testing.T) {
	rec := &recorder{}
	e := NewEditor(testSchemas(), rec.handlers())

	res, err := e.Connect(Connection{Source: ref("shop", "payments", "order_id"), Target: ref("shop", "orders", "id")})
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Equal(t, []string{"duplicate shop.payments.order_id -> shop.orders.id"}, rec.events)
}

func TestConnectColumnToItself(t *testing.T) {
	rec := &recorder{}
	e := NewEditor(testSchemas(), rec.handlers())

	res, err := e.Connect(Connection{Source: ref("shop", "customers", "id"), Target: ref("shop", "customers", "id")})
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Nil(t, res.Schemas)
	assert.True(t, errors.Is(res.Violation, ErrSelfConnection))
	assert.Equal(t, []string{"self shop.customers.id"}, rec.events)
	assert.Contains(t, res.Violation.Error(), "shop.customers.id")
}

func TestConnectDuplicateCheckedBeforeSelf(t *testing.T) {
	schemas := []schema.Schema{{
		Name: "hr",
		Tables: []schema.Table{{Name: "employees", Columns: []schema.Column{
			column("id", target("hr", "employees", "id", false)),
		}}},
	}}
	rec := &recorder{}
	e := NewEditor(schemas, rec.handlers())

	res, err := e.Connect(Connection{Source: ref("hr", "employees", "id"), Target: ref("hr", "employees", "id")})
	require.NoError(t, err)
	assert.True(t, errors.Is(res.Violation, ErrDuplicateRelationship))
	assert.Equal(t, []string{"duplicate hr.employees.id -> hr.employees.id"}, rec.events)
}

func TestConnectSameColumnNameOtherTable(t *testing.T) {
	e := NewEditor(testSchemas(), Handlers{})
	res, err := e.Connect(Connection{Source: ref("shop", "orders", "id"), Target: ref("shop", "customers", "id")})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Outcome)
}

func TestConnectPreconditions(t *testing.T) {
	tests := []struct {
		name string
		conn Connection
		want error
	}{
		{
			name: "missing target column",
			conn: Connection{Source: ref("shop", "orders", "customer_id"), Target: ref("shop", "customers", "")},
			want: ErrIncompleteConnection,
		},
		{
			name: "missing source table",
			conn: Connection{Source: ref("shop", "", "customer_id"), Target: ref("shop", "customers", "id")},
			want: ErrIncompleteConnection,
		},
		{
			name: "unknown target",
			conn: Connection{Source: ref("shop", "orders", "customer_id"), Target: ref("shop", "customers", "idd")},
			want: schema.ErrUnresolved,
		},
		{
			name: "unknown source",
			conn: Connection{Source: ref("shop", "invoices", "customer_id"), Target: ref("shop", "customers", "id")},
			want: schema.ErrUnresolved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			e := NewEditor(testSchemas(), rec.handlers())
			_, err := e.Connect(tt.conn)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, rec.events)
		})
	}
}

func TestDeleteConstrained(t *testing.T) {
	rec := &recorder{}
	e := NewEditor(testSchemas(), rec.handlers())
	edge := edgeByID(t, e.Schemas(), "shop.payments.order_id:shop.orders.id")
	require.False(t, edge.Deletable)

	res, err := e.Delete(edge)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, res.Outcome)
	assert.True(t, errors.Is(res.Violation, ErrConstrainedDeletion))
	assert.Equal(t, []string{
		"constrained shop.payments.order_id -> shop.orders.id",
		"delete shop.payments.order_id -> shop.orders.id",
		"schemas",
	}, rec.events)

	col := schema.FindColumn(res.Schemas, ref("shop", "payments", "order_id"))
	require.NotNil(t, col)
	assert.Empty(t, col.ForeignKeys)
	assert.NotNil(t, col.ForeignKeys)
	assert.Nil(t, res.Created)
	require.NotNil(t, res.Deleted)
	assert.Equal(t, edge.ForeignKey(), *res.Deleted)
}

func TestDeleteUnconstrained(t *testing.T) {
	rec := &recorder{}
	e := NewEditor(testSchemas(), rec.handlers())

	res, err := e.Delete(edgeByID(t, e.Schemas(), "shop.payments.customer_id:shop.customers.id"))
	require.NoError(t, err)
	assert.NoError(t, res.Violation)
	assert.Equal(t, []string{
		"delete shop.payments.customer_id -> shop.customers.id",
		"schemas",
	}, rec.events)
	assert.Len(t, diagram.Edges(res.Schemas), 1)
}

func TestDeleteRemovesEveryMatchingEntry(t *testing.T) {
	schemas := testSchemas()
	schemas[0].Tables[1].Columns[1] = column("customer_id",
		target("shop", "customers", "id", false),
		target("crm", "contacts", "id", false),
		target("shop", "customers", "id", false),
	)
	e := NewEditor(schemas, Handlers{})

	res, err := e.Delete(edgeByID(t, schemas, "shop.orders.customer_id:shop.customers.id"))
	require.NoError(t, err)
	col := schema.FindColumn(res.Schemas, ref("shop", "orders", "customer_id"))
	assert.Equal(t, []schema.ForeignKey{target("crm", "contacts", "id", false)}, col.ForeignKeys)
	assert.Len(t, schema.FindColumn(schemas, ref("shop", "orders", "customer_id")).ForeignKeys, 3)
}

func TestRetarget(t *testing.T) {
	rec := &recorder{}
	e := NewEditor(testSchemas(), rec.handlers())
	edge := edgeByID(t, e.Schemas(), "shop.payments.customer_id:shop.customers.id")

	g := e.StartRetarget()
	require.NoError(t, g.Update(Connection{Source: ref("shop", "payments", "customer_id"), Target: ref("shop", "customers", "email")}))
	require.NoError(t, g.Update(Connection{Source: ref("shop", "payments", "customer_id"), Target: ref("shop", "orders", "customer_id")}))
	pending, ok := g.Pending()
	require.True(t, ok)
	assert.Equal(t, "orders", pending.Target.TableName)

	res, err := g.End(edge)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRetargeted, res.Outcome)
	assert.Equal(t, []string{
		"delete shop.payments.customer_id -> shop.customers.id",
		"create shop.payments.customer_id -> shop.orders.customer_id",
		"schemas",
	}, rec.events)
	require.Len(t, rec.changes, 1)

	col := schema.FindColumn(rec.changes[0], ref("shop", "payments", "customer_id"))
	require.NotNil(t, col)
	assert.Equal(t, []schema.ForeignKey{target("shop", "orders", "customer_id", false)}, col.ForeignKeys)
	require.NotNil(t, res.Created)
	require.NotNil(t, res.Deleted)

	_, ok = g.Pending()
	assert.False(t, ok)
}

func TestRetargetToOtherColumn(t *testing.T) {
	rec := &recorder{}
	e := NewEditor(testSchemas(), rec.handlers())
	edge := edgeByID(t, e.Schemas(), "shop.payments.order_id:shop.orders.id")

	g := e.StartRetarget()
	require.NoError(t, g.Update(Connection{Source: ref("shop", "payments", "id"), Target: ref("shop", "orders", "id")}))
	res, err := g.End(edge)
	require.NoError(t, err)

	assert.True(t, errors.Is(res.Violation, ErrConstrainedDeletion))
	assert.Equal(t, []string{
		"constrained shop.payments.order_id -> shop.orders.id",
		"delete shop.payments.order_id -> shop.orders.id",
		"create shop.payments.id -> shop.orders.id",
		"schemas",
	}, rec.events)

	ids := make([]string, 0)
	for _, ed := range diagram.Edges(res.Schemas) {
		ids = append(ids, ed.ID)
	}
	assert.ElementsMatch(t, []string{
		"shop.payments.id:shop.orders.id",
		"shop.payments.customer_id:shop.customers.id",
	}, ids)
}

func TestRetargetDoesNotLeakPendingConnection(t *testing.T) {
	rec := &recorder{}
	e := NewEditor(testSchemas(), rec.handlers())
	edge := edgeByID(t, e.Schemas(), "shop.payments.customer_id:shop.customers.id")

	abandoned := e.StartRetarget()
	require.NoError(t, abandoned.Update(Connection{Source: ref("shop", "payments", "customer_id"), Target: ref("shop", "orders", "id")}))

	res, err := e.StartRetarget().End(edge)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, res.Outcome)
	assert.Nil(t, res.Created)
	assert.Equal(t, []string{
		"delete shop.payments.customer_id -> shop.customers.id",
		"schemas",
	}, rec.events)
}

func TestGestureFinished(t *testing.T) {
	e := NewEditor(testSchemas(), Handlers{})
	edge := edgeByID(t, e.Schemas(), "shop.payments.customer_id:shop.customers.id")

	g := e.StartRetarget()
	_, err := g.End(edge)
	require.NoError(t, err)
	_, err = g.End(edge)
	assert.ErrorIs(t, err, ErrGestureFinished)
	assert.ErrorIs(t, g.Update(Connection{}), ErrGestureFinished)

	c := e.StartConnect()
	assert.True(t, e.Connecting())
	require.NoError(t, c.End())
	assert.False(t, e.Connecting())
	assert.ErrorIs(t, c.End(), ErrGestureFinished)
	_, err = c.Complete(Connection{Source: ref("shop", "orders", "id"), Target: ref("shop", "customers", "id")})
	assert.ErrorIs(t, err, ErrGestureFinished)
}

func TestConnectGesture(t *testing.T) {
	rec := &recorder{}
	e := NewEditor(testSchemas(), rec.handlers())
	assert.False(t, e.Connecting())

	g := e.StartConnect()
	assert.True(t, e.Connecting())
	res, err := g.Complete(Connection{Source: ref("shop", "orders", "customer_id"), Target: ref("shop", "customers", "id")})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Outcome)
	require.NoError(t, g.End())
	assert.False(t, e.Connecting())
}

func TestNilHandlers(t *testing.T) {
	e := NewEditor(testSchemas(), Handlers{})

	res, err := e.Connect(Connection{Source: ref("shop", "customers", "id"), Target: ref("shop", "customers", "id")})
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, res.Outcome)

	res, err = e.Delete(edgeByID(t, e.Schemas(), "shop.payments.order_id:shop.orders.id"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeleted, res.Outcome)
}

func TestViolationKindString(t *testing.T) {
	assert.Equal(t, "duplicate-relationship", DuplicateRelationship.String())
	assert.Equal(t, "constrained-deletion", ConstrainedDeletion.String())
	assert.Equal(t, "ViolationKind(9)", ViolationKind(9).String())
	assert.True(t, IsViolation(&ViolationError{Kind: SelfConnection}))
	assert.False(t, IsViolation(ErrGestureFinished))
}
