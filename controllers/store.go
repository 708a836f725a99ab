package controllers

import (
	"errors"
	"net/http"
	"visitperk-backend/config"
	"visitperk-backend/models"
	"visitperk-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UpdateStoreProfileInput struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

type UpdateWorkingHoursInput struct {
	WorkingHours models.JSONB `json:"workingHours" binding:"required"`
}

type CreateCategoryInput struct {
	Name string `json:"name" binding:"required"`
}

type CreateImageInput struct {
	URL     string `json:"url" binding:"required,url"`
	Caption string `json:"caption"`
}

// ReorderInput carries the full id list in the desired display order
type ReorderInput struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

func storeFromContext(c *gin.Context) (uuid.UUID, bool) {
	storeID, exists := c.Get("storeId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Store ID not found in context")
		return uuid.Nil, false
	}
	storeUUID, err := uuid.Parse(storeID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid store ID format")
		return uuid.Nil, false
	}
	return storeUUID, true
}

// GetStoreProfile returns the store page data
func GetStoreProfile(c *gin.Context) {
	storeUUID, ok := storeFromContext(c)
	if !ok {
		return
	}

	var store models.Store
	if err := config.DB.
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&store, "id = ?", storeUUID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Store not found")
		return
	}

	c.JSON(http.StatusOK, store)
}

// UpdateStoreProfile updates basic store fields
func UpdateStoreProfile(c *gin.Context) {
	storeUUID, ok := storeFromContext(c)
	if !ok {
		return
	}

	var input UpdateStoreProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	var store models.Store
	if err := config.DB.First(&store, "id = ?", storeUUID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Store not found")
		return
	}

	if input.Name != nil {
		store.Name = *input.Name
	}
	if input.Address != nil {
		store.Address = *input.Address
	}
	if input.Phone != nil {
		store.Phone = *input.Phone
	}

	if err := config.DB.Save(&store).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update store")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Store updated"})
}

// UpdateWorkingHours replaces the working hours JSON
func UpdateWorkingHours(c *gin.Context) {
	storeUUID, ok := storeFromContext(c)
	if !ok {
		return
	}

	var input UpdateWorkingHoursInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	if err := config.DB.Model(&models.Store{}).Where("id = ?", storeUUID).
		Update("working_hours", input.WorkingHours).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update working hours")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Working hours updated"})
}

// CreateCategory appends a display category at the end of the current order
func CreateCategory(c *gin.Context) {
	storeUUID, ok := storeFromContext(c)
	if !ok {
		return
	}

	var input CreateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var count int64
	config.DB.Model(&models.StoreCategory{}).Where("store_id = ?", storeUUID).Count(&count)

	category := models.StoreCategory{
		StoreID:  storeUUID,
		Name:     input.Name,
		Position: int(count),
	}
	if err := config.DB.Create(&category).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create category")
		return
	}

	c.JSON(http.StatusCreated, category)
}

// ReorderCategories rewrites category positions from the submitted id order
func ReorderCategories(c *gin.Context) {
	storeUUID, ok := storeFromContext(c)
	if !ok {
		return
	}

	var input ReorderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		for i, id := range input.IDs {
			res := tx.Model(&models.StoreCategory{}).
				Where("store_id = ? AND id = ?", storeUUID, id).
				Update("position", i)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Unknown category in order list")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to reorder categories")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Categories reordered"})
}

// DeleteCategory removes a category
func DeleteCategory(c *gin.Context) {
	storeUUID, ok := storeFromContext(c)
	if !ok {
		return
	}

	categoryUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid category ID format")
		return
	}

	result := config.DB.Where("store_id = ? AND id = ?", storeUUID, categoryUUID).
		Delete(&models.StoreCategory{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete category")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Category not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// CreateImage appends an image reference at the end of the current order
func CreateImage(c *gin.Context) {
	storeUUID, ok := storeFromContext(c)
	if !ok {
		return
	}

	var input CreateImageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var count int64
	config.DB.Model(&models.StoreImage{}).Where("store_id = ?", storeUUID).Count(&count)

	image := models.StoreImage{
		StoreID:  storeUUID,
		URL:      input.URL,
		Caption:  input.Caption,
		Position: int(count),
	}
	if err := config.DB.Create(&image).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create image")
		return
	}

	c.JSON(http.StatusCreated, image)
}

// ReorderImages rewrites image positions from the submitted id order
func ReorderImages(c *gin.Context) {
	storeUUID, ok := storeFromContext(c)
	if !ok {
		return
	}

	var input ReorderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		for i, id := range input.IDs {
			res := tx.Model(&models.StoreImage{}).
				Where("store_id = ? AND id = ?", storeUUID, id).
				Update("position", i)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Unknown image in order list")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to reorder images")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Images reordered"})
}

// DeleteImage removes an image reference
func DeleteImage(c *gin.Context) {
	storeUUID, ok := storeFromContext(c)
	if !ok {
		return
	}

	imageUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid image ID format")
		return
	}

	result := config.DB.Where("store_id = ? AND id = ?", storeUUID, imageUUID).
		Delete(&models.StoreImage{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete image")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Image not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully"})
}
