package services

import (
	"log"
	"strconv"
	"time"

	"github.com/craftdesk-dev/craftdesk/db"
	"github.com/craftdesk-dev/craftdesk/internal/models"
)

// Notifier is the in-app notification sink. It persists a Notification
// row and, when a Broadcast hook is set, pokes the user's connected
// websocket clients so open dashboards refresh.
type Notifier struct {
	// Broadcast is wired at startup to the websocket hub. Optional.
	Broadcast func(userKey string)
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Notify(userID uint, message string) error {
	now := time.Now()

	notification := models.Notification{
		UserID:  userID,
		Channel: "in_app",
		Status:  "sent",
		Message: message,
		SentAt:  &now,
	}

	if err := db.DB.Create(&notification).Error; err != nil {
		return err
	}

	if n.Broadcast != nil {
		n.Broadcast(strconv.FormatUint(uint64(userID), 10))
	}

	log.Printf("notification created for user %d: %s", userID, message)
	return nil
}
