package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/reldiagram/internal/diagram"
	"github.com/tordrt/reldiagram/internal/edit"
	"github.com/tordrt/reldiagram/internal/schema"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testSchemas() []schema.Schema {
	return []schema.Schema{{
		Name: "shop",
		Tables: []schema.Table{
			{
				Name:       "customers",
				PrimaryKey: schema.PrimaryKey{"id"},
				Columns: []schema.Column{
					{Name: "id", Type: schema.TypeNumber, ForeignKeys: []schema.ForeignKey{}},
					{Name: "email", Type: schema.TypeText, ForeignKeys: []schema.ForeignKey{}},
				},
			},
			{
				Name:       "orders",
				PrimaryKey: schema.PrimaryKey{"id"},
				Columns: []schema.Column{
					{Name: "id", Type: schema.TypeNumber, ForeignKeys: []schema.ForeignKey{}},
					{Name: "customer_id", Type: schema.TypeNumber, ForeignKeys: []schema.ForeignKey{{
						ForeignSchemaName: "shop", ForeignTableName: "customers", ForeignColumnName: "id", Constrained: true,
					}}},
					{Name: "coupon", Type: schema.TypeText, ForeignKeys: []schema.ForeignKey{}},
				},
			},
		},
	}}
}

const constrainedEdge = "shop.orders.customer_id:shop.customers.id"

type testResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestRouter() (*gin.Engine, *Session) {
	session := NewSession(testSchemas(), []string{"red", "green"}, diagram.LayoutOptions{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewRouter(session), session
}

func do(t *testing.T, router http.Handler, method, path, body string) (int, testResponse) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp testResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func decodeResult(t *testing.T, resp testResponse) GestureResult {
	t.Helper()
	var res struct {
		GestureResult
		Outcome string `json:"outcome"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &res))
	return res.GestureResult
}

func eventKinds(events []Event) []string {
	kinds := make([]string, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	return kinds
}

func TestGetDiagram(t *testing.T) {
	router, _ := newTestRouter()

	code, resp := do(t, router, http.MethodGet, "/api/v1/diagram?hover=shop.orders", "")
	require.Equal(t, http.StatusOK, code)

	var surface struct {
		Nodes []struct {
			ID   string `json:"id"`
			Data struct {
				Handles []diagram.Handle `json:"handles"`
			} `json:"data"`
		} `json:"nodes"`
		Edges []struct {
			ID    string `json:"id"`
			Style struct {
				Stroke string `json:"stroke"`
			} `json:"style"`
		} `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &surface))
	require.Len(t, surface.Nodes, 2)
	assert.Equal(t, "shop.customers", surface.Nodes[0].ID)
	assert.True(t, surface.Nodes[0].Data.Handles[0].Active)
	require.Len(t, surface.Edges, 1)
	assert.Equal(t, constrainedEdge, surface.Edges[0].ID)
	assert.Equal(t, "red", surface.Edges[0].Style.Stroke)
}

func TestGetDiagramConnecting(t *testing.T) {
	router, _ := newTestRouter()

	code, resp := do(t, router, http.MethodGet, "/api/v1/diagram?connecting=true", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `"type":"target","top":36.5,"active":true`)

	code, _ = do(t, router, http.MethodGet, "/api/v1/diagram?connecting=maybe", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetDiagramMermaid(t *testing.T) {
	router, _ := newTestRouter()

	code, resp := do(t, router, http.MethodGet, "/api/v1/diagram?format=mermaid", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `shop_customers ||--o{ shop_orders`)
}

func TestCreateConnection(t *testing.T) {
	router, session := newTestRouter()

	code, resp := do(t, router, http.MethodPost, "/api/v1/connections",
		`{"source": "shop.orders.coupon", "target": "shop.customers.email"}`)
	require.Equal(t, http.StatusCreated, code, resp.Error)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Relationship created", resp.Message)

	res := decodeResult(t, resp)
	assert.Equal(t, []string{"schemas-change", "create-foreign-key"}, eventKinds(res.Events))
	assert.Equal(t, "shop.orders.coupon -> shop.customers.email", res.Created.String())

	coupon := schema.FindColumn(session.Schemas(), schema.ColumnRef{SchemaName: "shop", TableName: "orders", ColumnName: "coupon"})
	require.NotNil(t, coupon)
	assert.Equal(t, []schema.ForeignKey{{
		ForeignSchemaName: "shop", ForeignTableName: "customers", ForeignColumnName: "email",
	}}, coupon.ForeignKeys)
	assert.False(t, session.Connecting())
}

func TestCreateConnectionRejected(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind string
	}{
		{"duplicate", `{"source": "shop.orders.customer_id", "target": "shop.customers.id"}`, "duplicate-relationship"},
		{"self", `{"source": "shop.orders.coupon", "target": "shop.orders.coupon"}`, "self-connection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, session := newTestRouter()
			before := session.Schemas()

			code, resp := do(t, router, http.MethodPost, "/api/v1/connections", tt.body)
			assert.Equal(t, http.StatusConflict, code)
			assert.Equal(t, "error", resp.Status)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.kind, decodeResult(t, resp).Kind)
			assert.Equal(t, before, session.Schemas())
		})
	}
}

func TestCreateConnectionErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing field", `{"source": "shop.orders.coupon"}`, http.StatusBadRequest},
		{"malformed reference", `{"source": "coupon", "target": "shop.customers.email"}`, http.StatusBadRequest},
		{"unknown column", `{"source": "shop.orders.cupon", "target": "shop.customers.email"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter()
			code, resp := do(t, router, http.MethodPost, "/api/v1/connections", tt.body)
			assert.Equal(t, tt.want, code)
			assert.Equal(t, "error", resp.Status)
		})
	}

	router, _ := newTestRouter()
	_, resp := do(t, router, http.MethodPost, "/api/v1/connections",
		`{"source": "shop.orders.cupon", "target": "shop.customers.email"}`)
	assert.Contains(t, resp.Error, "did you mean shop.orders.coupon?")
}

func TestDeleteEdge(t *testing.T) {
	router, session := newTestRouter()

	code, resp := do(t, router, http.MethodDelete, "/api/v1/edges/"+constrainedEdge, "")
	require.Equal(t, http.StatusOK, code, resp.Error)

	res := decodeResult(t, resp)
	assert.Equal(t, "constrained-deletion", res.Kind)
	assert.Equal(t, []string{"constrained-deletion", "delete-foreign-key", "schemas-change"}, eventKinds(res.Events))
	assert.Empty(t, diagram.Edges(session.Schemas()))

	code, _ = do(t, router, http.MethodDelete, "/api/v1/edges/"+constrainedEdge, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRetarget(t *testing.T) {
	router, session := newTestRouter()

	code, resp := do(t, router, http.MethodPost, "/api/v1/retargets", "")
	require.Equal(t, http.StatusCreated, code)
	var started struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &started))
	path := "/api/v1/retargets/" + started.ID

	code, _ = do(t, router, http.MethodPut, path, `{"source": "shop.orders.customer_id", "target": "shop.customers.email"}`)
	require.Equal(t, http.StatusOK, code)

	code, resp = do(t, router, http.MethodPost, path+"/end", `{"edge": "`+constrainedEdge+`"}`)
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.Equal(t, "Relationship retargeted", resp.Message)
	res := decodeResult(t, resp)
	assert.Equal(t, []string{"constrained-deletion", "delete-foreign-key", "create-foreign-key", "schemas-change"}, eventKinds(res.Events))

	edges := diagram.Edges(session.Schemas())
	require.Len(t, edges, 1)
	assert.Equal(t, "shop.orders.customer_id:shop.customers.email", edges[0].ID)
	assert.True(t, edges[0].Deletable)

	code, _ = do(t, router, http.MethodPost, path+"/end", `{"edge": "`+edges[0].ID+`"}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRetargetErrors(t *testing.T) {
	router, _ := newTestRouter()

	code, _ := do(t, router, http.MethodPut, "/api/v1/retargets/not-a-uuid", `{"source": "a.b.c", "target": "a.b.d"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, router, http.MethodPut, "/api/v1/retargets/6ba7b810-9dad-11d1-80b4-00c04fd430c8", `{"source": "a.b.c", "target": "a.b.d"}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRetargetExpires(t *testing.T) {
	router, session := newTestRouter()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	session.now = func() time.Time { return now }
	session.SetGestureTTL(time.Minute)
	conn := edit.Connection{
		Source: schema.ColumnRef{SchemaName: "shop", TableName: "orders", ColumnName: "coupon"},
		Target: schema.ColumnRef{SchemaName: "shop", TableName: "customers", ColumnName: "email"},
	}

	stale := session.StartRetarget()
	now = now.Add(30 * time.Second)
	fresh := session.StartRetarget()
	require.Len(t, session.gestures, 2)

	now = now.Add(45 * time.Second)
	assert.ErrorIs(t, session.UpdateRetarget(stale, conn), ErrUnknownGesture)
	require.NoError(t, session.UpdateRetarget(fresh, conn))
	assert.Len(t, session.gestures, 1)

	// abandoned gestures are swept when the next one starts
	now = now.Add(2 * time.Minute)
	session.StartRetarget()
	assert.Len(t, session.gestures, 1)

	code, _ := do(t, router, http.MethodPost, "/api/v1/retargets/"+fresh.String()+"/end", `{"edge": "`+constrainedEdge+`"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Len(t, diagram.Edges(session.Schemas()), 1)

	session.SetGestureTTL(0)
	assert.Equal(t, DefaultGestureTTL, session.ttl)
}

func TestSchemas(t *testing.T) {
	router, session := newTestRouter()

	code, resp := do(t, router, http.MethodGet, "/api/v1/schemas", "")
	require.Equal(t, http.StatusOK, code)
	var got []schema.Schema
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, testSchemas(), got)

	var buf bytes.Buffer
	require.NoError(t, schema.Encode(&buf, testSchemas()[:1]))
	doc := strings.Replace(buf.String(), "name: orders", "name: purchases", 1)
	code, resp = do(t, router, http.MethodPut, "/api/v1/schemas", doc)
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.NotNil(t, schema.FindTable(session.Schemas(), schema.TableRef{SchemaName: "shop", TableName: "purchases"}))

	invalid := strings.Replace(doc, "foreignColumnName: id", "foreignColumnName: uid", 1)
	code, _ = do(t, router, http.MethodPut, "/api/v1/schemas", invalid)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = do(t, router, http.MethodPut, "/api/v1/schemas", "- name: [")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCORS(t *testing.T) {
	router, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schemas", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
