package checkout

import (
	"testing"

	"storefront/model"
)

func filledEMoneyForm() Form {
	return Form{
		Name:          "Alexei Ward",
		Email:         "alexei@mail.com",
		Phone:         "+1 202-555-0136",
		Address:       "1137 Williams Avenue",
		ZipCode:       "10001",
		City:          "New York",
		Country:       "United States",
		PaymentMethod: string(model.PaymentEMoney),
		EMoneyNumber:  "238521993",
		EMoneyPin:     "6891",
	}
}

func TestValidateFullyFilledEMoney(t *testing.T) {
	errs := Validate(filledEMoneyForm())
	if !errs.Valid() {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidatePartiallyFilled(t *testing.T) {
	f := filledEMoneyForm()
	f.Phone = "   "
	f.City = ""
	f.EMoneyPin = ""

	errs := Validate(f)
	want := map[string]string{
		FieldPhone:     ReasonRequired,
		FieldCity:      ReasonRequired,
		FieldEMoneyPin: ReasonRequired,
	}
	if len(errs) != len(want) {
		t.Fatalf("expected errors exactly on %v, got %v", want, errs)
	}
	for field, reason := range want {
		if errs[field] != reason {
			t.Fatalf("field %s: expected %q, got %q", field, reason, errs[field])
		}
	}
}

func TestValidateEmptyFormCash(t *testing.T) {
	errs := Validate(Form{PaymentMethod: string(model.PaymentCash)})
	for _, field := range []string{FieldName, FieldEmail, FieldPhone, FieldAddress, FieldZipCode, FieldCity, FieldCountry} {
		if errs[field] != ReasonRequired {
			t.Fatalf("expected %s to be Required, got %q", field, errs[field])
		}
	}
	if _, ok := errs[FieldEMoneyNumber]; ok {
		t.Fatalf("e-money number must not be validated for cash")
	}
	if _, ok := errs[FieldEMoneyPin]; ok {
		t.Fatalf("e-money pin must not be validated for cash")
	}
}

func TestValidateWrongEmailFormat(t *testing.T) {
	f := filledEMoneyForm()
	f.Email = "not-an-email"
	errs := Validate(f)
	if errs[FieldEmail] != ReasonWrongFormat {
		t.Fatalf("expected Wrong format, got %q", errs[FieldEmail])
	}
	if len(errs) != 1 {
		t.Fatalf("expected a single error, got %v", errs)
	}
}

func TestValidEmail(t *testing.T) {
	good := []string{"a@b.co", "first.last@shop.example.com"}
	bad := []string{"", "plain", "a@b", "a b@c.d", "@b.co", "a@.co"}
	for _, s := range good {
		if !ValidEmail(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	for _, s := range bad {
		if ValidEmail(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestShippingAddressTrimmed(t *testing.T) {
	f := Form{Address: " 1 Main St ", ZipCode: " 999 ", City: "Oslo ", Country: " Norway"}
	got := f.ShippingAddress()
	want := model.ShippingAddress{Address: "1 Main St", ZipCode: "999", City: "Oslo", Country: "Norway"}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
