package enums

// NotificationType drives client-side rendering of a notification.
type NotificationType string

const (
	NotificationTypeShopVerified     NotificationType = "shop_verified"
	NotificationTypeShopRejected     NotificationType = "shop_rejected"
	NotificationTypeShopSuspended    NotificationType = "shop_suspended"
	NotificationTypeWishlistDiscount NotificationType = "wishlist_discount"
	NotificationTypeComplaintUpdate  NotificationType = "complaint_update"
	NotificationTypeSystem           NotificationType = "system"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeShopVerified,
	NotificationTypeShopRejected,
	NotificationTypeShopSuspended,
	NotificationTypeWishlistDiscount,
	NotificationTypeComplaintUpdate,
	NotificationTypeSystem,
}

func (n NotificationType) String() string { return string(n) }

func (n NotificationType) IsValid() bool { return contains(validNotificationTypes, n) }

func ParseNotificationType(value string) (NotificationType, error) {
	return parse("notification type", value, validNotificationTypes)
}
