// controllers/trigger.go
package controllers

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
	"visitperk-backend/services"
	"visitperk-backend/utils"

	"github.com/gin-gonic/gin"
)

// TriggerController is the entry point for the external periodic trigger. It is
// authenticated by a shared secret rather than a user token, so it sits outside
// the JWT middleware.
type TriggerController struct {
	Reminders *services.ReminderService
	Secret    string
}

// Run authenticates the caller and executes one reminder cycle. The response
// always carries whatever counts the cycle produced, even when a phase aborted.
func (tc *TriggerController) Run(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	// Constant-time comparison so the secret can't be probed byte by byte
	if tc.Secret == "" || !found ||
		subtle.ConstantTimeCompare([]byte(token), []byte(tc.Secret)) != 1 {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid trigger credentials")
		return
	}

	summary := tc.Reminders.RunCycle(c.Request.Context())
	log.Printf("Reminder cycle: swept=%d sent=%d failed=%d skipped=%d error=%q",
		summary.Swept, summary.Sent, summary.Failed, summary.Skipped, summary.Error)

	if summary.Error != "" {
		c.JSON(http.StatusInternalServerError, summary)
		return
	}
	c.JSON(http.StatusOK, summary)
}
