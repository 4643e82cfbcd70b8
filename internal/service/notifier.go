package service

import (
	"context"

	"github.com/harvestChurchAdmin/volunteer-event-management-sub000/internal/model"
)

// Notifier delivers transactional mail to contacts. Implementations must
// honor the registration's opt-out flag and treat delivery as best effort:
// the registration is already committed by the time a notifier runs.
type Notifier interface {
	// SendManageLink mails the self-service manage link. Used for the initial
	// confirmation and for reminders; manageURL embeds a freshly issued token.
	SendManageLink(ctx context.Context, reg *model.Registration, event *model.Event, manageURL string) error
}
