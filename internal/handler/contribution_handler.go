package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/forgeheat/internal/middleware"
	"github.com/jengzang/forgeheat/internal/models"
	"github.com/jengzang/forgeheat/internal/service"
	"github.com/jengzang/forgeheat/pkg/response"
)

// ContributionHandler handles HTTP requests for contribution heatmaps
type ContributionHandler struct {
	contributionService *service.ContributionService
}

// NewContributionHandler creates a new contribution handler
func NewContributionHandler(contributionService *service.ContributionService) *ContributionHandler {
	return &ContributionHandler{
		contributionService: contributionService,
	}
}

// bindQuery parses the request body and resolves its uid against the caller
func bindQuery(c *gin.Context) (models.ContributionQuery, bool) {
	var query models.ContributionQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return query, false
	}

	uid, ok := middleware.AuthorizeUID(c, query.UID)
	if !ok {
		response.Forbidden(c, "uid does not match token subject")
		return query, false
	}
	query.UID = uid
	return query, true
}

// GetHeatmap handles POST /api/v1/heatmap
func (h *ContributionHandler) GetHeatmap(c *gin.Context) {
	query, ok := bindQuery(c)
	if !ok {
		return
	}

	response.Success(c, h.contributionService.GetHeatmap(c.Request.Context(), query))
}

// GetStats handles POST /api/v1/stats
func (h *ContributionHandler) GetStats(c *gin.Context) {
	query, ok := bindQuery(c)
	if !ok {
		return
	}

	response.Success(c, h.contributionService.GetHistory(c.Request.Context(), query))
}

// InvalidateCache handles DELETE /api/v1/cache/:uid
func (h *ContributionHandler) InvalidateCache(c *gin.Context) {
	uid, ok := middleware.AuthorizeUID(c, c.Param("uid"))
	if !ok {
		response.Forbidden(c, "uid does not match token subject")
		return
	}

	if err := h.contributionService.Invalidate(c.Request.Context(), uid); err != nil {
		_ = c.Error(err)
		response.InternalError(c, "Failed to invalidate cache")
		return
	}

	response.Success(c, gin.H{"uid": uid})
}

// ListProviders handles GET /api/v1/providers
func (h *ContributionHandler) ListProviders(c *gin.Context) {
	response.Success(c, gin.H{"providers": h.contributionService.Providers()})
}
