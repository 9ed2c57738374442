package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/accessly-backend/internal/http/middleware"
	"github.com/yungbote/accessly-backend/internal/http/response"
	"github.com/yungbote/accessly-backend/internal/platform/apierr"
	"github.com/yungbote/accessly-backend/internal/services"
)

type ScanHandler struct {
	scanService services.ScanService
}

func NewScanHandler(scanService services.ScanService) *ScanHandler {
	return &ScanHandler{scanService: scanService}
}

// An unparseable id cannot name a stored scan, so it is NotFound like any
// other missing id.
func scanID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, apierr.NotFound("scan result not found"))
		return uuid.Nil, false
	}
	return id, true
}

// POST /scan/result
// body: { "url": "https://..." }
func (sh *ScanHandler) Submit(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.RespondAPIError(c, apierr.Unauthenticated(nil))
		return
	}
	var req struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.Validation("a valid URL is required"))
		return
	}
	sr, err := sh.scanService.Submit(c.Request.Context(), user.ID, req.URL)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Header("Location", "/scan/generateresult/"+sr.ID.String())
	c.String(http.StatusCreated, "scan completed")
}

// GET /scan/resultscanned
func (sh *ScanHandler) List(c *gin.Context) {
	out, err := sh.scanService.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /scan/generateresult/:id
func (sh *ScanHandler) Get(c *gin.Context) {
	id, ok := scanID(c)
	if !ok {
		return
	}
	sr, err := sh.scanService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, sr)
}

// DELETE /scan/deleteresult/:id
func (sh *ScanHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.RespondAPIError(c, apierr.Unauthenticated(nil))
		return
	}
	id, ok := scanID(c)
	if !ok {
		return
	}
	if err := sh.scanService.Delete(c.Request.Context(), id, user.ID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.String(http.StatusOK, "report deleted")
}

// GET /scan/scansbyuser
func (sh *ScanHandler) ListByUser(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.RespondAPIError(c, apierr.Unauthenticated(nil))
		return
	}
	out, err := sh.scanService.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /scan/summary
func (sh *ScanHandler) Summary(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.RespondAPIError(c, apierr.Unauthenticated(nil))
		return
	}
	out, err := sh.scanService.Summary(c.Request.Context(), user.ID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /scan/chart/:id
func (sh *ScanHandler) Chart(c *gin.Context) {
	id, ok := scanID(c)
	if !ok {
		return
	}
	png, err := sh.scanService.RenderChart(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// GET /scan/snapshot/:id
func (sh *ScanHandler) Snapshot(c *gin.Context) {
	id, ok := scanID(c)
	if !ok {
		return
	}
	html, err := sh.scanService.Snapshot(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	// archived pages are served inert
	c.Header("Content-Security-Policy", "sandbox")
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}
