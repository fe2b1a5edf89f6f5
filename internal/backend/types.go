package backend

import (
	"encoding/json"
	"strings"
)

// ID tolerates both identifier shapes the backend emits: a plain string or a
// structured object like {"hex": "..."}; callers always see a plain string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = ID(s)
		return nil
	}

	var obj struct {
		Hex string `json:"hex"`
	}
	if err := json.Unmarshal(b, &obj); err == nil && obj.Hex != "" {
		*id = ID(obj.Hex)
		return nil
	}

	*id = ID(strings.Trim(string(b), `"`))
	return nil
}

func (id ID) String() string { return string(id) }

type MenuItem struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	SuitableFor []string           `json:"suitable_for"`
	ImageURL    string             `json:"image_url,omitempty"`
	Nutrition   map[string]float64 `json:"nutrition"`
	Price       int64              `json:"price"` // minor units
	Category    string             `json:"category,omitempty"`
	Available   bool               `json:"available"`
	Ingredients []string           `json:"ingredients,omitempty"`
	CreatedAt   string             `json:"created_at"`
}

type Profile struct {
	ID                  ID       `json:"id"`
	UserID              ID       `json:"user_id"`
	Name                string   `json:"name"`
	Age                 int      `json:"age"`
	Gender              string   `json:"gender"`
	Height              float64  `json:"height"` // cm
	Weight              float64  `json:"weight"` // kg
	ChronicDiseases     []string `json:"chronic_diseases"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	ChewingAbility      string   `json:"chewing_ability"`
	AvatarURL           string   `json:"avatar_url,omitempty"`
	CreatedAt           string   `json:"created_at"`
	UpdatedAt           string   `json:"updated_at"`
}

// ProfileParams carries only the writable profile fields, so read-only ones
// (id, user_id, timestamps) can never leak into create/update payloads.
type ProfileParams struct {
	Name                string   `json:"name"`
	Age                 int      `json:"age"`
	Gender              string   `json:"gender"`
	Height              float64  `json:"height"`
	Weight              float64  `json:"weight"`
	ChronicDiseases     []string `json:"chronic_diseases"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	ChewingAbility      string   `json:"chewing_ability"`
	AvatarURL           string   `json:"avatar_url,omitempty"`
}

type OrderItem struct {
	MenuItemID          int64  `json:"menu_item_id"`
	Quantity            int64  `json:"quantity"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

type Order struct {
	ID              ID          `json:"id"`
	ProfileID       ID          `json:"profile_id"`
	Items           []OrderItem `json:"items"`
	TotalAmount     int64       `json:"total_amount"` // minor units
	Status          string      `json:"status"`
	StripeSessionID string      `json:"stripe_session_id,omitempty"`
	CheckoutURL     string      `json:"checkout_url,omitempty"`
	CreatedAt       string      `json:"created_at"`
	UpdatedAt       string      `json:"updated_at"`
}

type OrderCreateRequest struct {
	ProfileID     string      `json:"profile_id"`
	Items         []OrderItem `json:"items"`
	TotalAmount   int64       `json:"total_amount"` // minor units
	CustomerEmail string      `json:"customer_email"`
}

// CheckoutResult is returned by order and donation creation; an empty
// CheckoutURL means no payment redirect is needed.
type CheckoutResult struct {
	CheckoutURL string `json:"checkout_url"`
}

type HeatmapDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type NutritionStat struct {
	Category   string  `json:"category"`
	Percentage float64 `json:"percentage"`
}

type DashboardData struct {
	WeeklyHeatmap  []HeatmapDay    `json:"weekly_heatmap"`
	NutritionStats []NutritionStat `json:"nutrition_stats"`
}
