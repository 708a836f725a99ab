// services/notifier.go
package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"visitperk-backend/models"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier is the outbound notification provider. Send returns the channel the
// message went out on ("sms" or "whatsapp") so the attempt can be logged.
type Notifier interface {
	Send(ctx context.Context, visit models.Visit, offsetID string) (channel string, err error)
}

type TwilioNotifier struct {
	client *twilio.RestClient
}

func NewTwilioNotifier() *TwilioNotifier {
	// Initialize Twilio client
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &TwilioNotifier{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (n *TwilioNotifier) Send(ctx context.Context, visit models.Visit, offsetID string) (string, error) {
	message := fmt.Sprintf(
		"Hi %s, your visit to %s is coming up on %s. Arrive in your booked window to unlock your discount!",
		visit.Customer.Name,
		visit.Store.Name,
		visit.ScheduledAt.Format("Mon Jan 2 at 3:04 PM"),
	)

	// Determine channel (WhatsApp if available, else SMS)
	channel := "sms"
	var to string

	// Use WhatsApp if phone is in E.164 format and starts with '+'
	if strings.HasPrefix(visit.Customer.Phone, "+") {
		to = "whatsapp:" + visit.Customer.Phone
		channel = "whatsapp"
	} else {
		to = visit.Customer.Phone
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(message)

	// Use WhatsApp sender if available
	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return channel, err
	}
	if resp.Sid != nil {
		log.Printf("Reminder sent to %s (%s), SID: %s", visit.Customer.Phone, offsetID, *resp.Sid)
	} else {
		log.Printf("Reminder sent to %s (%s), but no SID returned", visit.Customer.Phone, offsetID)
	}
	return channel, nil
}
