package checkout

import "storefront/model"

// State is the checkout form while it is being filled in. Errors are only
// reported for touched fields, and editing a field clears its error until
// the next Submit.
type State struct {
	Form    Form
	errs    Errors
	touched map[string]bool
}

// NewState starts an empty form with e-money selected, matching the page default.
func NewState() *State {
	return &State{
		Form:    Form{PaymentMethod: string(model.PaymentEMoney)},
		errs:    Errors{},
		touched: map[string]bool{},
	}
}

// Set updates one field. Unknown field names are ignored.
func (s *State) Set(field, value string) {
	switch field {
	case FieldName:
		s.Form.Name = value
	case FieldEmail:
		s.Form.Email = value
	case FieldPhone:
		s.Form.Phone = value
	case FieldAddress:
		s.Form.Address = value
	case FieldZipCode:
		s.Form.ZipCode = value
	case FieldCity:
		s.Form.City = value
	case FieldCountry:
		s.Form.Country = value
	case FieldPaymentMethod:
		s.Form.PaymentMethod = value
		if model.PaymentMethod(value) != model.PaymentEMoney {
			// e-money fields are irrelevant now.
			delete(s.errs, FieldEMoneyNumber)
			delete(s.errs, FieldEMoneyPin)
		}
	case FieldEMoneyNumber:
		s.Form.EMoneyNumber = value
	case FieldEMoneyPin:
		s.Form.EMoneyPin = value
	default:
		return
	}
	s.touched[field] = true
	delete(s.errs, field)
}

// Touch marks a field as visited without changing it (blur).
func (s *State) Touch(field string) {
	s.touched[field] = true
}

// Submit touches every field, revalidates, and reports whether the form is valid.
func (s *State) Submit() bool {
	for _, f := range []string{
		FieldName, FieldEmail, FieldPhone, FieldAddress, FieldZipCode,
		FieldCity, FieldCountry, FieldEMoneyNumber, FieldEMoneyPin,
	} {
		s.touched[f] = true
	}
	s.errs = Validate(s.Form)
	return s.errs.Valid()
}

// Errors returns a copy of the current errors for touched fields.
func (s *State) Errors() Errors {
	out := Errors{}
	for field, reason := range s.errs {
		if s.touched[field] {
			out[field] = reason
		}
	}
	return out
}
