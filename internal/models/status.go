package models

import "fmt"

// VehicleStatus — закрытое перечисление статусов модерации объявления.
// Неизвестные строки отклоняются на границе (ParseVehicleStatus), внутри
// домена хранится только одно из трёх значений.
type VehicleStatus string

const (
	// StatusPending — объявление ожидает модерации.
	StatusPending VehicleStatus = "pending"
	// StatusApproved — объявление одобрено и видно всем.
	StatusApproved VehicleStatus = "approved"
	// StatusRejected — объявление отклонено модератором.
	StatusRejected VehicleStatus = "rejected"
)

// ParseVehicleStatus проверяет строку статуса и возвращает значение перечисления.
func ParseVehicleStatus(s string) (VehicleStatus, error) {
	switch VehicleStatus(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return VehicleStatus(s), nil
	}
	return "", fmt.Errorf("unknown vehicle status: %q", s)
}

// Condition — состояние транспортного средства.
type Condition string

const (
	ConditionUsed        Condition = "USED"
	ConditionBrandNew    Condition = "BRANDNEW"
	ConditionRefurbished Condition = "REFURBISHED"
)

// ParseCondition проверяет строку состояния и возвращает значение перечисления.
func ParseCondition(s string) (Condition, error) {
	switch Condition(s) {
	case ConditionUsed, ConditionBrandNew, ConditionRefurbished:
		return Condition(s), nil
	}
	return "", fmt.Errorf("unknown vehicle condition: %q", s)
}

// Роли пользователей.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// IsAdminRole сообщает, относится ли роль к административным.
func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperadmin
}
