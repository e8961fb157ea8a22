package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nhle/rdq-notify/internal/model"
	"github.com/nhle/rdq-notify/internal/store"
)

// listQuery is the query string of GET /api/notifications.
type listQuery struct {
	Page          int    `form:"page"`
	Size          int    `form:"size"`
	Type          string `form:"type"`
	Read          *bool  `form:"read"`
	Critical      *bool  `form:"critical"`
	RdqID         *int64 `form:"rdqId"`
	SortBy        string `form:"sortBy"`
	SortDirection string `form:"sortDirection"`
}

func (q listQuery) criteria() model.SearchCriteria {
	c := model.SearchCriteria{
		Page:          q.Page,
		Size:          q.Size,
		Read:          q.Read,
		Critical:      q.Critical,
		RdqID:         q.RdqID,
		SortBy:        model.SortField(q.SortBy),
		SortDirection: model.SortDirection(q.SortDirection),
	}
	if q.Type != "" {
		c.Type = model.TypePtr(model.NotificationType(q.Type))
	}
	return c
}

// createRequest is the body of POST /api/notifications. UserID defaults to
// the caller and may not name anyone else.
type createRequest struct {
	UserID   int64                  `json:"userId"`
	Type     model.NotificationType `json:"type" binding:"required"`
	Title    string                 `json:"title" binding:"required"`
	Message  string                 `json:"message"`
	Critical bool                   `json:"critical"`
	RdqID    *int64                 `json:"rdqId"`
	RdqInfo  *model.RdqSummary      `json:"rdqInfo"`
}

func (s *Server) userID(c *gin.Context) int64 {
	return c.MustGet(ctxUserID).(int64)
}

// storeError maps a store failure to a response.
func (s *Server) storeError(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, store.ErrNotFound) {
		abortWithMessage(c, http.StatusNotFound, "Notification not found")
		return
	}
	abortWithMessage(c, http.StatusInternalServerError, err.Error())
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithMessage(c, http.StatusBadRequest, "invalid id "+strconv.Quote(c.Param("id")))
		return 0, false
	}
	return id, true
}

func (s *Server) listNotifications(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithMessage(c, http.StatusBadRequest, err.Error())
		return
	}

	criteria := q.criteria()
	if err := criteria.Validate(); err != nil {
		abortWithMessage(c, http.StatusBadRequest, err.Error())
		return
	}

	page, err := s.store.ListNotifications(c.Request.Context(), s.userID(c), criteria)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// createNotification delivers a notification in-app unless the recipient
// disabled its type. Email delivery is only recorded in the log.
func (s *Server) createNotification(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Type.Valid() {
		abortWithMessage(c, http.StatusBadRequest, "unknown notification type "+strconv.Quote(string(req.Type)))
		return
	}
	switch caller := s.userID(c); req.UserID {
	case 0:
		req.UserID = caller
	case caller:
	default:
		abortWithMessage(c, http.StatusForbidden, "notifications can only be created for the caller")
		return
	}

	ctx := c.Request.Context()
	pref, err := s.store.PreferenceFor(ctx, req.UserID, req.Type)
	if err != nil {
		s.storeError(c, err)
		return
	}
	if !pref.Enabled {
		s.logger.Debug("notification type disabled by recipient",
			zap.Int64("user_id", req.UserID), zap.String("type", string(req.Type)))
		c.JSON(http.StatusAccepted, gin.H{"delivered": false})
		return
	}

	n, err := s.store.CreateNotification(ctx, model.Notification{
		UserID:   req.UserID,
		Type:     req.Type,
		Title:    req.Title,
		Message:  req.Message,
		Critical: req.Critical,
		RdqID:    req.RdqID,
		RdqInfo:  req.RdqInfo,
	})
	if err != nil {
		abortWithMessage(c, http.StatusBadRequest, err.Error())
		return
	}

	if pref.EmailEnabled {
		s.logger.Info("email delivery requested",
			zap.Int64("user_id", n.UserID), zap.Int64("notification_id", n.ID))
	}
	c.JSON(http.StatusCreated, n)
}

func (s *Server) markRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.MarkRead(c.Request.Context(), s.userID(c), id); err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (s *Server) markAllRead(c *gin.Context) {
	n, err := s.store.MarkAllRead(c.Request.Context(), s.userID(c))
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updatedCount": n})
}

func (s *Server) deleteNotification(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.store.DeleteNotification(c.Request.Context(), s.userID(c), id); err != nil {
		s.storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) stats(c *gin.Context) {
	stats, err := s.store.Stats(c.Request.Context(), s.userID(c))
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) unreadCount(c *gin.Context) {
	n, err := s.store.UnreadCount(c.Request.Context(), s.userID(c))
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unreadCount": n})
}

func (s *Server) listPreferences(c *gin.Context) {
	prefs, err := s.store.ListPreferences(c.Request.Context(), s.userID(c))
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (s *Server) updatePreference(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var update model.PreferenceUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		abortWithMessage(c, http.StatusBadRequest, err.Error())
		return
	}
	if update.Empty() {
		abortWithMessage(c, http.StatusBadRequest, "nothing to update")
		return
	}

	pref, err := s.store.UpdatePreference(c.Request.Context(), s.userID(c), id, update)
	if errors.Is(err, store.ErrNotFound) {
		abortWithMessage(c, http.StatusNotFound, "Preference not found")
		return
	}
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pref)
}
