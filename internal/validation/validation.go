// Package validation проверяет входные данные API через go-playground/validator.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"mip/internal/models"
)

var (
	ErrInvalidGeolocation = errors.New("invalid geolocation data")
	ErrInvalidID          = errors.New("invalid id")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// uuidTag — uuid v4 в любом регистре.
const uuidTag = "uuid4_rfc4122"

// Credentials — тело sign-up/sign-in.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// GeolocationInput — входной payload геолокации. Указатели отличают
// отсутствующее поле от пустой строки; расширенные поля — всё или ничего.
type GeolocationInput struct {
	IP       *string `json:"ip" validate:"required"`
	Hostname *string `json:"hostname" validate:"required"`
	City     *string `json:"city" validate:"required"`
	Region   *string `json:"region" validate:"required"`
	Country  *string `json:"country" validate:"required"`
	Loc      *string `json:"loc" validate:"required"`
	Org      *string `json:"org" validate:"required"`
	Postal   *string `json:"postal" validate:"required"`
	Timezone *string `json:"timezone" validate:"required"`

	ASN           *string `json:"asn" validate:"required_with=ASName ASDomain CountryCode ContinentCode Continent"`
	ASName        *string `json:"as_name" validate:"required_with=ASN ASDomain CountryCode ContinentCode Continent"`
	ASDomain      *string `json:"as_domain" validate:"required_with=ASN ASName CountryCode ContinentCode Continent"`
	CountryCode   *string `json:"country_code" validate:"required_with=ASN ASName ASDomain ContinentCode Continent"`
	ContinentCode *string `json:"continent_code" validate:"required_with=ASN ASName ASDomain CountryCode Continent"`
	Continent     *string `json:"continent" validate:"required_with=ASN ASName ASDomain CountryCode ContinentCode"`
}

// DeleteRequest — тело DELETE /history.
type DeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid4_rfc4122"`
}

// Struct валидирует тегированную структуру.
func Struct(s any) error {
	return validate.Struct(s)
}

// Geolocation разбирает сырой JSON и возвращает проверенный снимок.
// Любое расхождение со схемой (нет поля, не строка, неполная расширенная группа) — ErrInvalidGeolocation.
func Geolocation(raw json.RawMessage) (models.GeolocationData, error) {
	var in GeolocationInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return models.GeolocationData{}, fmt.Errorf("%w: %v", ErrInvalidGeolocation, err)
	}
	if err := validate.Struct(in); err != nil {
		return models.GeolocationData{}, fmt.Errorf("%w: %v", ErrInvalidGeolocation, err)
	}
	return in.toModel(), nil
}

// ParseID принимает только uuid v4.
func ParseID(s string) (uuid.UUID, error) {
	if err := validate.Var(s, "required,"+uuidTag); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return id, nil
}

// IDs валидирует DeleteRequest и возвращает разобранные id.
func IDs(req DeleteRequest) ([]uuid.UUID, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	out := make([]uuid.UUID, 0, len(req.IDs))
	for _, s := range req.IDs {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
		}
		out = append(out, id)
	}
	return out, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (in GeolocationInput) toModel() models.GeolocationData {
	return models.GeolocationData{
		IP:            deref(in.IP),
		Hostname:      deref(in.Hostname),
		City:          deref(in.City),
		Region:        deref(in.Region),
		Country:       deref(in.Country),
		Loc:           deref(in.Loc),
		Org:           deref(in.Org),
		Postal:        deref(in.Postal),
		Timezone:      deref(in.Timezone),
		ASN:           deref(in.ASN),
		ASName:        deref(in.ASName),
		ASDomain:      deref(in.ASDomain),
		CountryCode:   deref(in.CountryCode),
		ContinentCode: deref(in.ContinentCode),
		Continent:     deref(in.Continent),
	}
}
