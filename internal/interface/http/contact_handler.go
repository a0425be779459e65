package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contactbook/internal/application"
	"github.com/oksasatya/go-contactbook/internal/domain/entity"
	"github.com/oksasatya/go-contactbook/internal/domain/errs"
	"github.com/oksasatya/go-contactbook/internal/interface/middleware"
	"github.com/oksasatya/go-contactbook/pkg/response"
	"github.com/oksasatya/go-contactbook/pkg/validation"
)

type ContactHandler struct {
	Svc    *application.ContactService
	Logger *logrus.Logger
}

func NewContactHandler(svc *application.ContactService, logger *logrus.Logger) *ContactHandler {
	return &ContactHandler{Svc: svc, Logger: logger}
}

type listContactsQuery struct {
	FirstName string `form:"first_name"`
	LastName  string `form:"last_name"`
	Email     string `form:"email"`
	Limit     int    `form:"limit,default=100" binding:"min=1,max=1000"`
	Offset    int    `form:"offset,default=0" binding:"min=0"`
}

type upcomingQuery struct {
	Days   int `form:"days,default=7" binding:"min=1,max=31"`
	Limit  int `form:"limit,default=100" binding:"min=1,max=1000"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

type searchQuery struct {
	Q    string `form:"q" binding:"required,max=200"`
	Size int    `form:"size,default=10" binding:"min=1,max=50"`
}

type createContactRequest struct {
	FirstName string  `json:"first_name" binding:"required,name"`
	LastName  string  `json:"last_name" binding:"required,name"`
	Email     string  `json:"email" binding:"required,email,max=255"`
	Phone     string  `json:"phone" binding:"required,phone"`
	Birthday  *string `json:"birthday" binding:"omitempty,isodate"`
	ExtraInfo *string `json:"extra_info"`
}

type updateContactRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,name"`
	LastName  *string `json:"last_name" binding:"omitempty,name"`
	Email     *string `json:"email" binding:"omitempty,email,max=255"`
	Phone     *string `json:"phone" binding:"omitempty,phone"`
	Birthday  *string `json:"birthday" binding:"omitempty,isodate"`
	ExtraInfo *string `json:"extra_info"`
}

func owner(c *gin.Context) (int64, bool) {
	snap, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "could not validate credentials", nil)
		return 0, false
	}
	return snap.ID, true
}

func contactID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error[any](c, http.StatusBadRequest, "invalid contact id", nil)
		return 0, false
	}
	return id, true
}

func (h *ContactHandler) contactError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "contact not found", nil)
	case errors.Is(err, errs.ErrConflict):
		response.Error[any](c, http.StatusConflict, "contact with this email already exists", nil)
	default:
		writeError(c, h.Logger, err)
	}
}

// List GET /api/contacts
func (h *ContactHandler) List(c *gin.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	var q listContactsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	list, err := h.Svc.List(c.Request.Context(), uid, entity.ContactFilter{
		FirstName: q.FirstName,
		LastName:  q.LastName,
		Email:     q.Email,
	}, q.Limit, q.Offset)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toContactList(list), "contacts", response.Page{Limit: q.Limit, Offset: q.Offset, Count: len(list)})
}

// Create POST /api/contacts
func (h *ContactHandler) Create(c *gin.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	var req createContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	bday, err := parseDate(req.Birthday)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"birthday": "must be a date formatted as YYYY-MM-DD"})
		return
	}
	created, err := h.Svc.Create(c.Request.Context(), uid, entity.Contact{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Birthday:  bday,
		ExtraInfo: req.ExtraInfo,
	})
	if err != nil {
		h.contactError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toContactResponse(*created), "contact created", nil)
}

// Get GET /api/contacts/:id
func (h *ContactHandler) Get(c *gin.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	id, ok := contactID(c)
	if !ok {
		return
	}
	got, err := h.Svc.Get(c.Request.Context(), uid, id)
	if err != nil {
		h.contactError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toContactResponse(*got), "contact", nil)
}

// Update PUT /api/contacts/:id; only fields present in the body change.
func (h *ContactHandler) Update(c *gin.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	id, ok := contactID(c)
	if !ok {
		return
	}
	var req updateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	bday, err := parseDate(req.Birthday)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"birthday": "must be a date formatted as YYYY-MM-DD"})
		return
	}
	updated, err := h.Svc.Update(c.Request.Context(), uid, id, entity.ContactPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Birthday:  bday,
		ExtraInfo: req.ExtraInfo,
	})
	if err != nil {
		h.contactError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toContactResponse(*updated), "contact updated", nil)
}

// Delete DELETE /api/contacts/:id
func (h *ContactHandler) Delete(c *gin.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	id, ok := contactID(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), uid, id); err != nil {
		h.contactError(c, err)
		return
	}
	response.NoContent(c)
}

// UpcomingBirthdays GET /api/contacts/upcoming_birthdays?days=&limit=&offset=
func (h *ContactHandler) UpcomingBirthdays(c *gin.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	var q upcomingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	matches, err := h.Svc.UpcomingBirthdays(c.Request.Context(), uid, q.Days, q.Limit, q.Offset)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUpcomingList(matches), "upcoming birthdays", map[string]any{
		"days": q.Days,
		"page": response.Page{Limit: q.Limit, Offset: q.Offset, Count: len(matches)},
	})
}

// Search GET /api/contacts/search?q=&size=
func (h *ContactHandler) Search(c *gin.Context) {
	uid, ok := owner(c)
	if !ok {
		return
	}
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	hits, err := h.Svc.Search(c.Request.Context(), uid, q.Q, q.Size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toContactList(hits), "search results", map[string]any{"q": q.Q, "size": q.Size})
}
