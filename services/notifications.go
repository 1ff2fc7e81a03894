package services

import (
	"sort"

	"esports-arena/models"
	"esports-arena/store"

	"github.com/gofiber/fiber/v2"
)

type NotificationService struct {
	Store store.Store
}

func NewNotificationService(st store.Store) *NotificationService {
	return &NotificationService{Store: st}
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	notifications, err := store.ListByPrefix[models.Notification](c.UserContext(), s.Store, store.NotificationPrefix(userID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch notifications", "details": err.Error()})
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})

	return c.JSON(fiber.Map{"success": true, "data": notifications})
}

// MarkRead flips the read toggle, the one permitted mutation.
func (s *NotificationService) MarkRead(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, _ := c.Locals("user_id").(string)
	id := c.Params("id")

	var notification models.Notification
	found, err := s.Store.Get(ctx, store.NotificationKey(userID, id), &notification)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch notification", "details": err.Error()})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
	}

	notification.Read = true
	if err := s.Store.Set(ctx, store.NotificationKey(userID, id), &notification); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to mark notification as read", "details": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "data": notification})
}
