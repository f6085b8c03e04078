package complaints

import (
	"time"

	"github.com/google/uuid"

	"github.com/shelflife/shelflife-backend/pkg/db/models"
	"github.com/shelflife/shelflife-backend/pkg/enums"
)

type ComplaintDTO struct {
	ID              uuid.UUID               `json:"id"`
	CustomerID      uuid.UUID               `json:"customer_id"`
	ShopID          *uuid.UUID              `json:"shop_id,omitempty"`
	ProductID       *uuid.UUID              `json:"product_id,omitempty"`
	Category        enums.ComplaintCategory `json:"category"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	Status          enums.ComplaintStatus   `json:"status"`
	ResolutionNote  *string                 `json:"resolution_note,omitempty"`
	AssignedAdminID *uuid.UUID              `json:"assigned_admin_id,omitempty"`
	ResolvedAt      *time.Time              `json:"resolved_at,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

func FromModel(c *models.Complaint) ComplaintDTO {
	return ComplaintDTO{
		ID:              c.ID,
		CustomerID:      c.CustomerID,
		ShopID:          c.ShopID,
		ProductID:       c.ProductID,
		Category:        c.Category,
		Title:           c.Title,
		Description:     c.Description,
		Status:          c.Status,
		ResolutionNote:  c.ResolutionNote,
		AssignedAdminID: c.AssignedAdminID,
		ResolvedAt:      c.ResolvedAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// FileInput is a customer's complaint.
type FileInput struct {
	Category    string
	Title       string
	Description string
	ShopID      *uuid.UUID
	ProductID   *uuid.UUID
}
