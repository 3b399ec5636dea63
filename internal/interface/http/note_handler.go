package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tradesync/internal/application"
	"github.com/oksasatya/tradesync/internal/domain/entity"
	"github.com/oksasatya/tradesync/pkg/response"
	"github.com/oksasatya/tradesync/pkg/validation"
)

const (
	MsgNoteNotFound     = "Note not found"
	MsgNotAuthorized    = "Not authorized"
	MsgNoteRemoved      = "Note removed"
	MsgChartUnavailable = "Chart storage unavailable"
	MsgChartInvalid     = "Chart must be an image"
)

const (
	// MaxChartSize bounds a single chart upload.
	MaxChartSize   = 5 << 20
	chartFormField = "chart"
)

type NoteHandler struct {
	Svc    *application.NoteService
	Logger *logrus.Logger
}

func NewNoteHandler(svc *application.NoteService, logger *logrus.Logger) *NoteHandler {
	return &NoteHandler{Svc: svc, Logger: logger}
}

type createNoteRequest struct {
	Ticker       string           `json:"ticker" binding:"required"`
	EntryPrice   *decimal.Decimal `json:"entryPrice" binding:"required"`
	PositionType string           `json:"positionType" binding:"omitempty,position"`
	Note         string           `json:"note" binding:"required"`
}

// updateNoteRequest is only decoded here; its fields are checked by the
// service once the caller owns the note.
type updateNoteRequest struct {
	Ticker       *string          `json:"ticker"`
	EntryPrice   *decimal.Decimal `json:"entryPrice"`
	PositionType *string          `json:"positionType"`
	Note         *string          `json:"note"`
}

func (r updateNoteRequest) patch() entity.NotePatch {
	p := entity.NotePatch{Ticker: r.Ticker, EntryPrice: r.EntryPrice, Body: r.Note}
	if r.PositionType != nil {
		pos := entity.PositionType(*r.PositionType)
		p.PositionType = &pos
	}
	return p
}

type noteResponse struct {
	ID           string      `json:"id"`
	User         string      `json:"user"`
	Ticker       string      `json:"ticker"`
	EntryPrice   json.Number `json:"entryPrice"`
	PositionType string      `json:"positionType"`
	Note         string      `json:"note"`
	ChartURL     string      `json:"chartUrl,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

func toNoteResponse(n *entity.Note) noteResponse {
	return noteResponse{
		ID:           n.ID,
		User:         n.UserID,
		Ticker:       n.Ticker,
		EntryPrice:   json.Number(n.EntryPrice.String()),
		PositionType: string(n.PositionType),
		Note:         n.Body,
		ChartURL:     n.ChartURL,
		CreatedAt:    n.CreatedAt,
	}
}

func toNoteResponses(notes []entity.Note) []noteResponse {
	out := make([]noteResponse, 0, len(notes))
	for i := range notes {
		out = append(out, toNoteResponse(&notes[i]))
	}
	return out
}

// List GET /api/notes
func (h *NoteHandler) List(c *gin.Context) {
	notes, err := h.Svc.List(c.Request.Context(), callerID(c))
	if err != nil {
		response.ServerError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, toNoteResponses(notes))
}

// Create POST /api/notes
func (h *NoteHandler) Create(c *gin.Context) {
	var req createNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.MsgInvalidPayload, validation.ToDetails(err))
		return
	}
	n, err := h.Svc.Create(c.Request.Context(), callerID(c), application.CreateNoteInput{
		Ticker:       req.Ticker,
		EntryPrice:   *req.EntryPrice,
		PositionType: entity.PositionType(req.PositionType),
		Body:         req.Note,
	})
	if err != nil {
		h.noteError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toNoteResponse(n))
}

// Update PUT /api/notes/:id
func (h *NoteHandler) Update(c *gin.Context) {
	var req updateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, validation.MsgInvalidPayload, validation.ToDetails(err))
		return
	}
	n, err := h.Svc.Update(c.Request.Context(), callerID(c), c.Param("id"), req.patch())
	if err != nil {
		h.noteError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toNoteResponse(n))
}

// Delete DELETE /api/notes/:id
func (h *NoteHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		h.noteError(c, err)
		return
	}
	response.Message(c, http.StatusOK, MsgNoteRemoved)
}

// Search GET /api/notes/search?q=&limit=
func (h *NoteHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	notes, err := h.Svc.Search(c.Request.Context(), callerID(c), c.Query("q"), limit)
	if err != nil {
		response.ServerError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, toNoteResponses(notes))
}

// UploadChart POST /api/notes/:id/chart (multipart, field "chart")
func (h *NoteHandler) UploadChart(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxChartSize+(1<<20))
	fh, err := c.FormFile(chartFormField)
	if err != nil {
		response.Error(c, http.StatusBadRequest, validation.MsgInvalidPayload, map[string]string{chartFormField: "is required"})
		return
	}
	contentType := fh.Header.Get("Content-Type")
	if fh.Size > MaxChartSize || !strings.HasPrefix(contentType, "image/") {
		response.Error(c, http.StatusBadRequest, MsgChartInvalid, nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.ServerError(c, h.Logger, err)
		return
	}
	defer func() { _ = f.Close() }()

	n, err := h.Svc.AttachChart(c.Request.Context(), callerID(c), c.Param("id"), application.ChartUpload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Content:     f,
	})
	if err != nil {
		h.noteError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toNoteResponse(n))
}

func (h *NoteHandler) noteError(c *gin.Context, err error) {
	var fe *application.FieldError
	switch {
	case errors.Is(err, application.ErrNoteNotFound):
		response.Error(c, http.StatusNotFound, MsgNoteNotFound, nil)
	case errors.Is(err, application.ErrNotAuthorized):
		response.Error(c, http.StatusUnauthorized, MsgNotAuthorized, nil)
	case errors.As(err, &fe):
		response.Error(c, http.StatusBadRequest, validation.MsgInvalidPayload, map[string]string{fe.Field: fe.Reason})
	case errors.Is(err, application.ErrChartStorageUnavailable):
		response.Error(c, http.StatusServiceUnavailable, MsgChartUnavailable, nil)
	default:
		response.ServerError(c, h.Logger, err)
	}
}
