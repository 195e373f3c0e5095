package worker

import (
	"github.com/spec-kit/crisis-service/internal/service"
)

// StartNotificationWorker registers the crisis event handlers. Handlers run
// inline on the publishing request, so no goroutine is started.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
