package models

import "time"

// ContactInfo — контактные данные продавца, хранятся в колонке объявления
// сериализованным JSON-объектом.
type ContactInfo struct {
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Location string `json:"location"`
}

// Vehicle представляет объявление о продаже транспортного средства.
//
// Images и Contact на доменном уровне структурированы; сериализация в
// JSON-колонки происходит только на границе хранилища.
type Vehicle struct {
	ID           int
	Title        string
	Brand        string
	Model        string
	Year         int
	Price        float64
	Type         string
	FuelType     string
	Transmission string
	Condition    Condition
	Mileage      int
	Description  string
	Images       []string
	Contact      ContactInfo
	Status       VehicleStatus
	UserID       string
	IsPremium    bool
	ApprovedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OwnerInfo — проекция владельца объявления. Email присутствует только когда
// запрашивающий — сам владелец либо администратор.
type OwnerInfo struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email"`
}

// VehicleView — денормализованная проекция объявления для ответов API.
type VehicleView struct {
	ID            int           `json:"id"`
	Title         string        `json:"title"`
	Brand         string        `json:"brand"`
	Model         string        `json:"model"`
	Year          int           `json:"year"`
	Price         float64       `json:"price"`
	Type          string        `json:"type"`
	FuelType      string        `json:"fuel_type"`
	Transmission  string        `json:"transmission"`
	Condition     Condition     `json:"condition"`
	Mileage       int           `json:"mileage"`
	Description   string        `json:"description"`
	Images        []string      `json:"images"`
	ContactInfo   ContactInfo   `json:"contact_info"`
	Status        VehicleStatus `json:"status"`
	UserID        string        `json:"user_id"`
	IsPremium     bool          `json:"is_premium"`
	IsPremiumUser bool          `json:"is_premium_user"`
	ApprovedAt    *time.Time    `json:"approved_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Owner         *OwnerInfo    `json:"user,omitempty"`
}

// VehicleTableRow — облегчённая проекция для административной таблицы:
// без описания, изображений и контактов.
type VehicleTableRow struct {
	ID        int           `json:"id"`
	Title     string        `json:"title"`
	Brand     string        `json:"brand"`
	Model     string        `json:"model"`
	Year      int           `json:"year"`
	Price     float64       `json:"price"`
	Type      string        `json:"type"`
	Status    VehicleStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	Owner     *OwnerInfo    `json:"user,omitempty"`
}

// DummyVehicle используется для приёма данных нового объявления из JSON-запроса.
type DummyVehicle struct {
	Title        string      `json:"title" validate:"required"`
	Brand        string      `json:"brand" validate:"required"`
	Model        string      `json:"model" validate:"required"`
	Year         int         `json:"year" validate:"required"`
	Price        float64     `json:"price" validate:"required"`
	Type         string      `json:"type,omitempty"`
	FuelType     string      `json:"fuel_type,omitempty"`
	Transmission string      `json:"transmission,omitempty"`
	Condition    string      `json:"condition" validate:"required"`
	Mileage      int         `json:"mileage"`
	Description  string      `json:"description" validate:"required"`
	Images       []string    `json:"images,omitempty"`
	ContactInfo  ContactInfo `json:"contact_info"`
}

// DummyVehicleUpdate — частичное обновление объявления. Незаполненные поля
// означают «оставить прежнее значение», а не «очистить».
type DummyVehicleUpdate struct {
	Title        string       `json:"title,omitempty"`
	Brand        string       `json:"brand,omitempty"`
	Model        string       `json:"model,omitempty"`
	Year         *int         `json:"year,omitempty"`
	Price        *float64     `json:"price,omitempty"`
	Type         string       `json:"type,omitempty"`
	FuelType     string       `json:"fuel_type,omitempty"`
	Transmission string       `json:"transmission,omitempty"`
	Condition    string       `json:"condition,omitempty"`
	Mileage      *int         `json:"mileage,omitempty"`
	Description  string       `json:"description,omitempty"`
	Images       []string     `json:"images,omitempty"`
	ContactInfo  *ContactInfo `json:"contact_info,omitempty"`
	Status       string       `json:"status,omitempty"`
}

// VehicleFilter — параметры фильтрации и пагинации списка объявлений.
type VehicleFilter struct {
	Search       string
	Type         string
	FuelType     string
	Transmission string
	MinPrice     *float64
	MaxPrice     *float64
	MinYear      *int
	MaxYear      *int
	Status       *VehicleStatus
	MyPosts      bool
	UserID       string
	Page         int
	Limit        int
}

// Pagination — блок пагинации в ответах списков.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
