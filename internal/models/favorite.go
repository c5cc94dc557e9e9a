package models

import "time"

// Favorite — связь «пользователь — избранное объявление».
// Пара (UserID, VehicleID) уникальна.
type Favorite struct {
	ID        string
	UserID    string
	VehicleID int
	CreatedAt time.Time
}
