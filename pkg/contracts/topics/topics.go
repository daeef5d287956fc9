package topics

const (
	// Notificações de ganhadores
	WinnerNotifications = "winner_notifications"

	// DLQ
	WinnerNotificationsDLQ = "winner_notifications_dlq"
)
