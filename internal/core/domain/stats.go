package domain

// ConnectionStats is an operational snapshot of the hub's registries.
type ConnectionStats struct {
	TotalConnections         int            `json:"totalConnections"`
	AuthenticatedConnections int            `json:"authenticatedConnections"`
	AnonymousConnections     int            `json:"anonymousConnections"`
	NotificationSubscribers  int            `json:"notificationSubscribers"`
	SubscribedUsers          int            `json:"subscribedUsers"`
	ActiveRooms              int            `json:"activeRooms"`
	RoomSizes                map[string]int `json:"roomSizes"`
}
