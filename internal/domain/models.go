package domain

// Models lists every persisted entity in migration order.
func Models() []any {
	return []any{
		&User{},
		&Location{},
		&Space{},
		&AvailabilityBlock{},
		&Booking{},
		&Payment{},
		&Notification{},
	}
}
