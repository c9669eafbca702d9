package models

// Device is one registered sensor unit. DeviceID is the caller-supplied
// external identifier and the natural key for lookups; SecretHash holds the
// argon2id digest of the device secret and must never be logged.
type Device struct {
	ID          uint   `gorm:"primaryKey"`
	DeviceID    string `gorm:"uniqueIndex"`
	SecretHash  string
	MonitorItem string
	CustomName  *string
	DeviceName  *string

	// coordinates are kept as decimal text to avoid float rounding in transit
	Latitude  *string
	Longitude *string

	Owners []DeviceOwner `gorm:"foreignKey:DeviceID;references:ID"`
}

// DeviceOwner links a user (numeric id from a verified token) to a device it
// may operate. The pair is unique; re-registration never creates a second row.
type DeviceOwner struct {
	ID       uint  `gorm:"primaryKey"`
	UserID   int64 `gorm:"uniqueIndex:idx_device_owners_user_device"`
	DeviceID uint  `gorm:"uniqueIndex:idx_device_owners_user_device"`
}
