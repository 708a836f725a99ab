package controllers

import (
	"fmt"
	"net/http"
	"time"
	"visitperk-backend/config"
	"visitperk-backend/models"

	"github.com/gin-gonic/gin"
)

type UpcomingVisit struct {
	CustomerName string `json:"customerName"`
	Date         string `json:"date"` // e.g. "Today", "Tomorrow", "3 days"
}

func GetDashboardOverview(c *gin.Context) {
	storeUUID, ok := storeFromContext(c)
	if !ok {
		return
	}

	// Visit counts by status
	statusCounts := map[string]int64{}
	for _, status := range []string{
		models.VisitScheduled, models.VisitCompleted, models.VisitMissed, models.VisitCancelled,
	} {
		var n int64
		config.DB.Model(&models.Visit{}).
			Where("store_id = ? AND status = ? AND deleted_at IS NULL", storeUUID, status).
			Count(&n)
		statusCounts[status] = n
	}

	// Total Customers
	var totalCustomers int64
	config.DB.Model(&models.Customer{}).
		Where("store_id = ? AND deleted_at IS NULL", storeUUID).Count(&totalCustomers)

	// Discounts unlocked all-time
	var discountsUnlocked int64
	config.DB.Model(&models.Visit{}).
		Where("store_id = ? AND discount_unlocked = true AND deleted_at IS NULL", storeUUID).
		Count(&discountsUnlocked)

	// Upcoming visits (next 7 days)
	now := time.Now()
	type visitRow struct {
		Name        string
		ScheduledAt time.Time
	}
	var rows []visitRow
	config.DB.Raw(`
        SELECT c.name, v.scheduled_at
        FROM visits v
        JOIN customers c ON c.id = v.customer_id
        WHERE v.store_id = ? AND v.deleted_at IS NULL
        AND v.status = ? AND v.scheduled_at BETWEEN ? AND ?
        ORDER BY v.scheduled_at ASC
        LIMIT 7
    `, storeUUID, models.VisitScheduled, now, now.AddDate(0, 0, 7)).Scan(&rows)

	upcomingVisits := []UpcomingVisit{}
	for _, r := range rows {
		daysUntil := int(r.ScheduledAt.Sub(now).Hours() / 24)
		var label string
		switch daysUntil {
		case 0:
			label = "Today"
		case 1:
			label = "Tomorrow"
		default:
			label = fmt.Sprintf("%d days", daysUntil)
		}
		upcomingVisits = append(upcomingVisits, UpcomingVisit{
			CustomerName: r.Name,
			Date:         label,
		})
	}

	// Reminder send stats for the last 7 days
	var remindersSent, remindersFailed int64
	since := now.AddDate(0, 0, -7)
	config.DB.Model(&models.ReminderLog{}).
		Where("store_id = ? AND status = ? AND sent_at >= ?", storeUUID, "sent", since).
		Count(&remindersSent)
	config.DB.Model(&models.ReminderLog{}).
		Where("store_id = ? AND status = ? AND sent_at >= ?", storeUUID, "failed", since).
		Count(&remindersFailed)

	response := gin.H{
		"totalCustomers":    totalCustomers,
		"visitCounts":       statusCounts,
		"discountsUnlocked": discountsUnlocked,
		"upcomingVisits":    upcomingVisits,
		"reminders": gin.H{
			"sentLast7Days":   remindersSent,
			"failedLast7Days": remindersFailed,
		},
	}

	c.JSON(http.StatusOK, response)
}
