package domain

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

type PaymentMethod string

const (
	PaymentBankTransfer   PaymentMethod = "Chuyển khoản ngân hàng"
	PaymentCashOnDelivery PaymentMethod = "Thanh toán khi nhận hàng"
)

var PaymentMethods = []PaymentMethod{PaymentBankTransfer, PaymentCashOnDelivery}

func (p PaymentMethod) Valid() bool {
	return p == PaymentBankTransfer || p == PaymentCashOnDelivery
}

type City string

const (
	CityHCM    City = "Tp Hồ Chí Minh"
	CityHanoi  City = "Hà Nội"
	CityDanang City = "Đà Nẵng"
)

var Cities = []City{CityHCM, CityHanoi, CityDanang}

func (c City) Valid() bool {
	for _, v := range Cities {
		if v == c {
			return true
		}
	}
	return false
}

// Outcome pages live outside this service.
const (
	OutcomeResultPath   = "/result"
	OutcomeShipmentPath = "/shipment"
)

// OutcomePath picks the post-submit page. Only an exact cash-on-delivery
// match goes to the result page.
func OutcomePath(p PaymentMethod) string {
	if p == PaymentCashOnDelivery {
		return OutcomeResultPath
	}
	return OutcomeShipmentPath
}

type Field string

const (
	FieldEmail         Field = "email"
	FieldPhone         Field = "phone"
	FieldAddress       Field = "address"
	FieldPaymentMethod Field = "payment_method"
	FieldCity          Field = "city"
)

// BuyerInfo is checkout-local and never persisted.
type BuyerInfo struct {
	Email         string        `form:"email" validate:"notblank,emailshape"`
	Phone         string        `form:"phone" validate:"notblank"`
	Address       string        `form:"address" validate:"notblank"`
	PaymentMethod PaymentMethod `form:"payment_method" validate:"omitempty,paymentmethod"`
	City          City          `form:"city" validate:"omitempty,city"`
}

// WithDefaults fills the select fields left empty.
func (b BuyerInfo) WithDefaults() BuyerInfo {
	if b.PaymentMethod == "" {
		b.PaymentMethod = PaymentBankTransfer
	}
	if b.City == "" {
		b.City = CityHCM
	}
	return b
}

var emailShapeRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var messages = map[Field]map[string]string{
	FieldEmail: {
		"notblank":   "Email là bắt buộc",
		"emailshape": "Email không hợp lệ",
	},
	FieldPhone:         {"notblank": "Số điện thoại là bắt buộc"},
	FieldAddress:       {"notblank": "Địa chỉ là bắt buộc"},
	FieldPaymentMethod: {"paymentmethod": "Phương thức thanh toán không hợp lệ"},
	FieldCity:          {"city": "Thành phố không hợp lệ"},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailShapeRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("paymentmethod", func(fl validator.FieldLevel) bool {
		return PaymentMethod(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("city", func(fl validator.FieldLevel) bool {
		return City(fl.Field().String()).Valid()
	})
	return v
}

// FieldErrors holds one message per currently failing field.
type FieldErrors map[Field]string

func (e FieldErrors) Has(f Field) bool {
	_, ok := e[f]
	return ok
}

func (e FieldErrors) Clear(f Field) {
	delete(e, f)
}

// Validate evaluates every field; there is no short-circuit across fields.
func (b BuyerInfo) Validate() FieldErrors {
	errs := FieldErrors{}
	err := validate.Struct(b)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs
	}
	for _, fe := range verrs {
		f := Field(fe.Field())
		msg, ok := messages[f][fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		errs[f] = msg
	}
	return errs
}

// CheckoutForm is the buyer form state of one checkout page.
type CheckoutForm struct {
	Buyer  BuyerInfo
	Errors FieldErrors
}

// Set edits one field and drops that field's error, leaving the others.
func (f *CheckoutForm) Set(field Field, value string) {
	switch field {
	case FieldEmail:
		f.Buyer.Email = value
	case FieldPhone:
		f.Buyer.Phone = value
	case FieldAddress:
		f.Buyer.Address = value
	case FieldPaymentMethod:
		f.Buyer.PaymentMethod = PaymentMethod(value)
	case FieldCity:
		f.Buyer.City = City(value)
	default:
		return
	}
	if f.Errors.Has(field) {
		f.Errors.Clear(field)
	}
}

// Validate replaces the error set and reports whether the form is clean.
func (f *CheckoutForm) Validate() bool {
	f.Buyer = f.Buyer.WithDefaults()
	f.Errors = f.Buyer.Validate()
	return len(f.Errors) == 0
}
