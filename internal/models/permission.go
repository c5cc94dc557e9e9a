package models

// AdminPermission — права администратора на функцию панели.
// Для суперадминистраторов таблица не проверяется: у них полный доступ.
type AdminPermission struct {
	ID        int    `json:"id"`
	AdminID   string `json:"admin_id"`
	Feature   string `json:"feature"`
	CanAccess bool   `json:"can_access"`
	CanCreate bool   `json:"can_create"`
	CanEdit   bool   `json:"can_edit"`
	CanDelete bool   `json:"can_delete"`
}

// DummyPermission используется для выдачи прав администратору.
type DummyPermission struct {
	AdminID     string            `json:"admin_id" validate:"required"`
	Permissions []PermissionGrant `json:"permissions" validate:"required,dive"`
}

// PermissionGrant — права на одну функцию.
type PermissionGrant struct {
	Feature   string `json:"feature" validate:"required"`
	CanAccess bool   `json:"can_access"`
	CanCreate bool   `json:"can_create"`
	CanEdit   bool   `json:"can_edit"`
	CanDelete bool   `json:"can_delete"`
}
