package models

// ContributionQuery represents the request body for heatmap and stats queries
type ContributionQuery struct {
	UID    string         `json:"uid"`
	Forges []ForgeRequest `json:"forges" binding:"required,min=1,dive"`
}
