package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GeolocationData — снимок ответа сервиса геолокации по IP.
// Поля asn..continent появились во второй версии схемы и могут отсутствовать.
type GeolocationData struct {
	IP       string `json:"ip"`
	Hostname string `json:"hostname"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	Loc      string `json:"loc"`
	Org      string `json:"org"`
	Postal   string `json:"postal"`
	Timezone string `json:"timezone"`

	ASN           string `json:"asn,omitempty"`
	ASName        string `json:"as_name,omitempty"`
	ASDomain      string `json:"as_domain,omitempty"`
	CountryCode   string `json:"country_code,omitempty"`
	ContinentCode string `json:"continent_code,omitempty"`
	Continent     string `json:"continent,omitempty"`
}

type History struct {
	ID              uuid.UUID                           `gorm:"primaryKey" json:"id"`
	UserID          uuid.UUID                           `gorm:"index;not null" json:"userId"`
	GeolocationData datatypes.JSONType[GeolocationData] `gorm:"not null" json:"geolocationData"`
	CreatedAt       time.Time                           `gorm:"not null" json:"createdAt"`
}

func (History) TableName() string { return "histories" }

func (h *History) BeforeCreate(*gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// OwnedBy — принадлежит ли запись пользователю.
func (h *History) OwnedBy(userID uuid.UUID) bool {
	return h.UserID == userID
}
