package enums

import "fmt"

// NotificationKind classifies in-app reminders.
type NotificationKind string

const (
	NotificationKindSaleReminder NotificationKind = "lembrete-venda"
	NotificationKindGeneral      NotificationKind = "geral"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindSaleReminder,
	NotificationKindGeneral,
}

// IsValid checks whether the given kind matches a known value.
func (n NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw strings into NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
