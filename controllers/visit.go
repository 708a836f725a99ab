// controllers/visit.go
package controllers

import (
	"errors"
	"net/http"
	"time"
	"visitperk-backend/config"
	"visitperk-backend/models"
	"visitperk-backend/services"
	"visitperk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VisitController carries the pieces the booking and manual-action endpoints
// need beyond the shared DB handle.
type VisitController struct {
	Visits   services.VisitStore
	Clock    services.Clock
	Settings config.ReminderSettings
}

// BookVisitInput defines the expected JSON structure for booking a visit
type BookVisitInput struct {
	CustomerID  uuid.UUID `json:"customerId" binding:"required"`
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
}

// UpdateVisitStatusInput is the manual status action body
type UpdateVisitStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// BookVisit creates a visit in SCHEDULED state
func (vc *VisitController) BookVisit(c *gin.Context) {
	storeID, exists := c.Get("storeId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Store ID not found in context")
		return
	}

	storeUUID, err := uuid.Parse(storeID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid store ID format")
		return
	}

	var input BookVisitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !input.ScheduledAt.After(vc.Clock.Now()) {
		utils.RespondWithError(c, http.StatusBadRequest, "Scheduled time must be in the future")
		return
	}

	// The customer must belong to this store
	var customer models.Customer
	if err := config.DB.Where("store_id = ? AND id = ?", storeUUID, input.CustomerID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	visit := models.Visit{
		StoreID:     storeUUID,
		CustomerID:  customer.ID,
		ScheduledAt: input.ScheduledAt,
		Status:      models.VisitScheduled,
	}

	if err := config.DB.Create(&visit).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to book visit")
		return
	}

	c.JSON(http.StatusCreated, visit)
}

// GetVisits retrieves the store's visits, optionally filtered by status
func (vc *VisitController) GetVisits(c *gin.Context) {
	storeID, exists := c.Get("storeId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Store ID not found in context")
		return
	}

	storeUUID, err := uuid.Parse(storeID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid store ID format")
		return
	}

	query := config.DB.Preload("Customer").Where("store_id = ?", storeUUID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var visits []models.Visit
	if err := query.Order("scheduled_at desc").Find(&visits).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve visits")
		return
	}

	c.JSON(http.StatusOK, visits)
}

// GetVisit retrieves a specific visit by ID
func (vc *VisitController) GetVisit(c *gin.Context) {
	storeID, exists := c.Get("storeId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Store ID not found in context")
		return
	}

	storeUUID, err := uuid.Parse(storeID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid store ID format")
		return
	}

	visitUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid visit ID format")
		return
	}

	var visit models.Visit
	if err := config.DB.Preload("Customer").
		Where("store_id = ? AND id = ?", storeUUID, visitUUID).
		First(&visit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Visit not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, visit)
}

// UpdateVisitStatus applies a manual COMPLETED/MISSED/CANCELLED action. The
// store-scoped lookup doubles as the capability check: only a manager of the
// owning store can reach the visit. The write is version-guarded; whoever
// lands first wins and a lost race surfaces as a conflict.
func (vc *VisitController) UpdateVisitStatus(c *gin.Context) {
	storeID, exists := c.Get("storeId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Store ID not found in context")
		return
	}

	storeUUID, err := uuid.Parse(storeID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid store ID format")
		return
	}

	visitUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid visit ID format")
		return
	}

	var input UpdateVisitStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !utils.ValidateVisitStatus(input.Status) {
		utils.RespondWithError(c, http.StatusBadRequest, "Status must be COMPLETED, MISSED or CANCELLED")
		return
	}

	var visit models.Visit
	if err := config.DB.Where("store_id = ? AND id = ?", storeUUID, visitUUID).
		First(&visit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Visit not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	now := vc.Clock.Now()
	var updated models.Visit
	switch input.Status {
	case models.VisitCompleted:
		updated, err = services.Complete(visit, now)
	case models.VisitCancelled:
		updated, err = services.Cancel(visit)
	case models.VisitMissed:
		updated, err = services.MarkMissed(visit, now, vc.Settings.GracePeriod)
	}
	if err != nil {
		if errors.Is(err, services.ErrInvalidTransition) {
			utils.RespondWithError(c, http.StatusBadRequest,
				"Visit is already "+visit.Status+" and cannot change to "+input.Status)
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to apply status change")
		return
	}

	ok, err := vc.Visits.ApplyConditional(updated, visit.Version)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update visit")
		return
	}
	if !ok {
		utils.RespondWithError(c, http.StatusConflict, "Visit was updated concurrently, please retry")
		return
	}

	updated.Version = visit.Version + 1
	c.JSON(http.StatusOK, updated)
}
