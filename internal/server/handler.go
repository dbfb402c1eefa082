package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tordrt/reldiagram/internal/edit"
	"github.com/tordrt/reldiagram/internal/formatter"
	"github.com/tordrt/reldiagram/internal/schema"
)

type DiagramHandler struct {
	session *Session
}

func NewDiagramHandler(session *Session) *DiagramHandler {
	return &DiagramHandler{session: session}
}

type connectionRequest struct {
	Source string `json:"source" binding:"required"`
	Target string `json:"target" binding:"required"`
}

func (r connectionRequest) connection() (edit.Connection, error) {
	source, err := schema.ParseColumnRef(r.Source)
	if err != nil {
		return edit.Connection{}, err
	}
	target, err := schema.ParseColumnRef(r.Target)
	if err != nil {
		return edit.Connection{}, err
	}
	return edit.Connection{Source: source, Target: target}, nil
}

type endRetargetRequest struct {
	Edge string `json:"edge" binding:"required"`
}

// GetDiagram handles GET /api/v1/diagram
func (h *DiagramHandler) GetDiagram(c *gin.Context) {
	d := h.session.Diagram()

	if c.DefaultQuery("format", "json") == "mermaid" {
		var sb strings.Builder
		if err := formatter.NewMermaidFormatter(&sb).Format(d); err != nil {
			fail(c, http.StatusInternalServerError, err, "Failed to render diagram")
			return
		}
		success(c, http.StatusOK, gin.H{"mermaid": sb.String()}, "")
		return
	}

	connecting := h.session.Connecting()
	if v := c.Query("connecting"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			fail(c, http.StatusBadRequest, err, "Invalid connecting flag")
			return
		}
		connecting = parsed
	}

	success(c, http.StatusOK, formatter.Render(d, c.Query("hover"), connecting), "")
}

// GetSchemas handles GET /api/v1/schemas
func (h *DiagramHandler) GetSchemas(c *gin.Context) {
	success(c, http.StatusOK, h.session.Schemas(), "")
}

// PutSchemas handles PUT /api/v1/schemas
func (h *DiagramHandler) PutSchemas(c *gin.Context) {
	schemas, err := schema.Decode(c.Request.Body)
	if err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid schema document")
		return
	}
	if err := h.session.SetSchemas(schemas); err != nil {
		fail(c, http.StatusUnprocessableEntity, err, "Invalid schemas")
		return
	}
	success(c, http.StatusOK, schemas, "Schemas replaced")
}

// CreateConnection handles POST /api/v1/connections
func (h *DiagramHandler) CreateConnection(c *gin.Context) {
	var req connectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	conn, err := req.connection()
	if err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid column reference")
		return
	}

	res, err := h.session.Connect(conn)
	h.gestureResponse(c, res, err, http.StatusCreated)
}

// DeleteEdge handles DELETE /api/v1/edges/:id
func (h *DiagramHandler) DeleteEdge(c *gin.Context) {
	res, err := h.session.Delete(c.Param("id"))
	h.gestureResponse(c, res, err, http.StatusOK)
}

// StartRetarget handles POST /api/v1/retargets
func (h *DiagramHandler) StartRetarget(c *gin.Context) {
	id := h.session.StartRetarget()
	success(c, http.StatusCreated, gin.H{"id": id}, "Retarget started")
}

// UpdateRetarget handles PUT /api/v1/retargets/:id
func (h *DiagramHandler) UpdateRetarget(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid gesture ID format")
		return
	}
	var req connectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	conn, err := req.connection()
	if err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid column reference")
		return
	}

	if err := h.session.UpdateRetarget(id, conn); err != nil {
		fail(c, statusFor(err), err, "Failed to update retarget")
		return
	}
	success(c, http.StatusOK, gin.H{"id": id}, "Retarget updated")
}

// EndRetarget handles POST /api/v1/retargets/:id/end
func (h *DiagramHandler) EndRetarget(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid gesture ID format")
		return
	}
	var req endRetargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	res, err := h.session.EndRetarget(id, req.Edge)
	h.gestureResponse(c, res, err, http.StatusOK)
}

func (h *DiagramHandler) gestureResponse(c *gin.Context, res GestureResult, err error, status int) {
	if err != nil {
		fail(c, statusFor(err), err, "Gesture failed")
		return
	}
	if res.Outcome == edit.OutcomeRejected {
		respond(c, http.StatusConflict, "error", res, "Relationship rejected", errors.New(res.Violation))
		return
	}
	success(c, status, res, fmt.Sprintf("Relationship %s", res.Outcome))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownGesture), errors.Is(err, ErrUnknownEdge), errors.Is(err, schema.ErrUnresolved):
		return http.StatusNotFound
	case errors.Is(err, edit.ErrIncompleteConnection):
		return http.StatusBadRequest
	case errors.Is(err, edit.ErrGestureFinished):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
