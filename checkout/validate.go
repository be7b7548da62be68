// Package checkout holds the pure checkout rules: form validation, the form
// state the checkout page keeps while the customer types, and order totals.
package checkout

import (
	"regexp"
	"strings"

	"storefront/model"
)

// Field names as they appear in requests and error maps.
const (
	FieldName          = "name"
	FieldEmail         = "email"
	FieldPhone         = "phone"
	FieldAddress       = "address"
	FieldZipCode       = "zipCode"
	FieldCity          = "city"
	FieldCountry       = "country"
	FieldPaymentMethod = "paymentMethod"
	FieldEMoneyNumber  = "eMoneyNumber"
	FieldEMoneyPin     = "eMoneyPin"
)

// Error reasons.
const (
	ReasonRequired    = "Required"
	ReasonWrongFormat = "Wrong format"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Form is the checkout form as submitted.
type Form struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	ZipCode       string `json:"zipCode"`
	City          string `json:"city"`
	Country       string `json:"country"`
	PaymentMethod string `json:"paymentMethod"`
	EMoneyNumber  string `json:"eMoneyNumber,omitempty"`
	EMoneyPin     string `json:"eMoneyPin,omitempty"`
}

// Errors maps a field name to its reason. An empty map means the form is valid.
type Errors map[string]string

func (e Errors) Valid() bool { return len(e) == 0 }

// Validate checks required fields and the email format. The e-money fields
// are only required when e-money is the selected payment method.
func Validate(f Form) Errors {
	errs := Errors{}

	required := []struct {
		field string
		value string
	}{
		{FieldName, f.Name},
		{FieldPhone, f.Phone},
		{FieldAddress, f.Address},
		{FieldZipCode, f.ZipCode},
		{FieldCity, f.City},
		{FieldCountry, f.Country},
	}
	for _, r := range required {
		if isBlank(r.value) {
			errs[r.field] = ReasonRequired
		}
	}

	switch {
	case isBlank(f.Email):
		errs[FieldEmail] = ReasonRequired
	case !ValidEmail(f.Email):
		errs[FieldEmail] = ReasonWrongFormat
	}

	if model.PaymentMethod(f.PaymentMethod) == model.PaymentEMoney {
		if isBlank(f.EMoneyNumber) {
			errs[FieldEMoneyNumber] = ReasonRequired
		}
		if isBlank(f.EMoneyPin) {
			errs[FieldEMoneyPin] = ReasonRequired
		}
	}
	return errs
}

// ValidEmail reports whether s looks like local@domain.tld.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ShippingAddress returns the address fields, trimmed.
func (f Form) ShippingAddress() model.ShippingAddress {
	return model.ShippingAddress{
		Address: strings.TrimSpace(f.Address),
		ZipCode: strings.TrimSpace(f.ZipCode),
		City:    strings.TrimSpace(f.City),
		Country: strings.TrimSpace(f.Country),
	}
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
