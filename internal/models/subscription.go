package models

import "time"

// Статусы подписки, хранимые в базе. "expired" никогда не записывается:
// это производное представление (см. EffectiveStatus).
const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
)

// Subscription представляет оплаченную подписку пользователя.
//
// Status допускает NULL в хранилище (исторические строки), такая подписка
// считается пригодной к использованию наравне с active.
type Subscription struct {
	ID            string
	UserID        string
	PlanType      string
	Status        *string
	StartDate     time.Time
	EndDate       time.Time
	Price         float64
	PaymentMethod *string
	TransactionID *string
	PostCount     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CancelledAt   *time.Time
}

// EffectiveStatus возвращает статус подписки с учётом срока действия.
//
// Единственное место, где вычисляется производное состояние "expired":
// активная по данным хранилища подписка с истекшим endDate наружу отдаётся
// как истекшая, но в базу это состояние не записывается.
func EffectiveStatus(s *Subscription, now time.Time) string {
	status := SubscriptionActive
	if s.Status != nil {
		status = *s.Status
	}
	if status == SubscriptionActive && !s.EndDate.After(now) {
		return SubscriptionExpired
	}
	return status
}

// IsUsable сообщает, пригодна ли подписка к потреблению квоты:
// статус active (или NULL) и срок действия не истёк.
func (s *Subscription) IsUsable(now time.Time) bool {
	if s.Status != nil && *s.Status != SubscriptionActive {
		return false
	}
	return s.EndDate.After(now)
}

// SubscriptionPlan — позиция каталога тарифов.
type SubscriptionPlan struct {
	ID        string
	Name      string
	PlanType  string
	Price     float64
	PostCount int
	Features  []string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubscriptionView — проекция подписки для ответов API.
type SubscriptionView struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	PlanType      string     `json:"plan_type"`
	Status        string     `json:"status"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       time.Time  `json:"end_date"`
	Price         float64    `json:"price"`
	PaymentMethod *string    `json:"payment_method,omitempty"`
	TransactionID *string    `json:"transaction_id,omitempty"`
	PostCount     int        `json:"post_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	PlanName      string     `json:"plan_name,omitempty"`
	PlanFeatures  []string   `json:"plan_features"`
	UserEmail     string     `json:"user_email,omitempty"`
	UserName      string     `json:"user_name,omitempty"`
}

// PlanView — проекция тарифа для ответов API.
type PlanView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	PlanType  string   `json:"plan_type"`
	Price     float64  `json:"price"`
	PostCount int      `json:"post_count"`
	Features  []string `json:"features"`
	IsActive  bool     `json:"is_active"`
}

// View возвращает проекцию тарифа.
func (p *SubscriptionPlan) View() PlanView {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return PlanView{
		ID:        p.ID,
		Name:      p.Name,
		PlanType:  p.PlanType,
		Price:     p.Price,
		PostCount: p.PostCount,
		Features:  features,
		IsActive:  p.IsActive,
	}
}

// DummyPurchase используется для приёма запроса на покупку подписки.
// Тариф указывается либо точным ID, либо типом (берётся самый дешёвый активный).
type DummyPurchase struct {
	PlanID        string `json:"plan_id,omitempty"`
	PlanType      string `json:"plan_type,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// DummyPlan используется для создания тарифа администратором.
type DummyPlan struct {
	Name      string   `json:"name" validate:"required"`
	PlanType  string   `json:"plan_type" validate:"required"`
	Price     float64  `json:"price" validate:"required,gt=0"`
	PostCount int      `json:"post_count" validate:"gte=0"`
	Features  []string `json:"features,omitempty"`
	IsActive  *bool    `json:"is_active,omitempty"`
}

// DummyPlanPatch — частичное обновление тарифа, nil-поля не меняются.
type DummyPlanPatch struct {
	Name      *string   `json:"name,omitempty"`
	Price     *float64  `json:"price,omitempty"`
	PostCount *int      `json:"post_count,omitempty"`
	Features  *[]string `json:"features,omitempty"`
	IsActive  *bool     `json:"is_active,omitempty"`
}
