package checkout

import (
	"strings"

	"github.com/example/storefront/internal/form"
	"github.com/example/storefront/internal/orders"
)

// Form is the checkout form: shipping contact, optional separate billing
// address, and card details.
type Form struct {
	FirstName string `form:"firstName" validate:"notblank"`
	LastName  string `form:"lastName" validate:"notblank"`
	Email     string `form:"email" validate:"notblank,email"`
	Phone     string `form:"phone" validate:"notblank"`
	Address   string `form:"address" validate:"notblank"`
	City      string `form:"city" validate:"notblank"`
	State     string `form:"state" validate:"notblank"`
	ZipCode   string `form:"zipCode" validate:"notblank"`
	Country   string `form:"country" validate:"notblank"`

	SameAsShipping   bool   `form:"sameAsShipping"`
	BillingFirstName string `form:"billingFirstName" validate:"required_if=SameAsShipping false,omitempty,notblank"`
	BillingLastName  string `form:"billingLastName" validate:"required_if=SameAsShipping false,omitempty,notblank"`
	BillingAddress   string `form:"billingAddress" validate:"required_if=SameAsShipping false,omitempty,notblank"`
	BillingCity      string `form:"billingCity" validate:"required_if=SameAsShipping false,omitempty,notblank"`
	BillingState     string `form:"billingState" validate:"required_if=SameAsShipping false,omitempty,notblank"`
	BillingZipCode   string `form:"billingZipCode" validate:"required_if=SameAsShipping false,omitempty,notblank"`
	BillingCountry   string `form:"billingCountry" validate:"required_if=SameAsShipping false,omitempty,notblank"`

	CardName   string `form:"cardName" validate:"notblank"`
	CardNumber string `form:"cardNumber" validate:"notblank,len=16,number"`
	CardExpiry string `form:"cardExpiry" validate:"notblank,cardexpiry"`
	CardCVV    string `form:"cardCVV" validate:"notblank,number,min=3,max=4"`
}

var formMessages = map[string]string{
	"cardNumber": "Invalid card number",
	"cardExpiry": "Invalid expiry date",
	"cardCVV":    "Invalid CVV",
}

// NewForm returns an empty form prefilled from the signed-in user, with
// billing defaulting to the shipping address.
func NewForm(name, email string) Form {
	f := Form{Email: email, SameAsShipping: true}
	parts := strings.Fields(name)
	if len(parts) > 0 {
		f.FirstName = parts[0]
	}
	if len(parts) > 1 {
		f.LastName = parts[1]
	}
	return f
}

// Validate checks every required field and the card formats. Billing
// fields are required only when billing differs from shipping.
func (f Form) Validate() error {
	if f.SameAsShipping {
		f.BillingFirstName, f.BillingLastName, f.BillingAddress = "", "", ""
		f.BillingCity, f.BillingState, f.BillingZipCode, f.BillingCountry = "", "", "", ""
	}
	f.Email = strings.TrimSpace(f.Email)
	f.CardNumber = NormalizeCardNumber(f.CardNumber)
	f.CardExpiry = strings.TrimSpace(f.CardExpiry)
	f.CardCVV = strings.TrimSpace(f.CardCVV)
	return form.Validate(f, formMessages)
}

// NormalizeCardNumber strips all whitespace from a card number
func NormalizeCardNumber(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func (f Form) Shipping() orders.Address {
	return orders.Address{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Address:   f.Address,
		City:      f.City,
		State:     f.State,
		ZipCode:   f.ZipCode,
		Country:   f.Country,
		Phone:     f.Phone,
	}
}

// Billing is the billing address, copied from shipping when SameAsShipping is set
func (f Form) Billing() orders.Address {
	if f.SameAsShipping {
		a := f.Shipping()
		a.Phone = ""
		return a
	}
	return orders.Address{
		FirstName: f.BillingFirstName,
		LastName:  f.BillingLastName,
		Address:   f.BillingAddress,
		City:      f.BillingCity,
		State:     f.BillingState,
		ZipCode:   f.BillingZipCode,
		Country:   f.BillingCountry,
	}
}
