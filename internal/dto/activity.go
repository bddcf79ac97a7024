package dto

import "github.com/noah-isme/academy-admin-api/internal/models"

// ActivityLogResponse bundles a usage-log page with stats computed over the
// same filtered set, so list and summary never disagree.
type ActivityLogResponse struct {
	Logs  []models.UsageLogDetail `json:"logs"`
	Stats models.UsageStats       `json:"stats"`
}
