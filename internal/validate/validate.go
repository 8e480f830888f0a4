package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"stockbook/internal/domain"
)

var (
	reID   = regexp.MustCompile(`^[0-9]{1,18}$`)
	reIMEI = regexp.MustCompile(`^[0-9]{14,16}$`)

	v = newValidator()
)

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// report json names so errors match the payload the caller sent
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// decimals are validated through their canonical string form
	val.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	_ = val.RegisterValidation("decimal_gte0", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsNegative()
	})
	return val
}

// Struct runs tag validation and reports the first failure as a *domain.ValidationError.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &domain.ValidationError{Field: fe.Field(), Reason: reason(fe)}
	}
	return &domain.ValidationError{Reason: err.Error()}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "decimal_gte0", "gte":
		return "must not be negative"
	case "min", "max":
		return "length out of range"
	}
	return "failed " + fe.Tag()
}

// Item checks a new item for the given kind. A new item must carry a price.
func Item(kind domain.Kind, in domain.NewItem) error {
	if err := ItemEdit(kind, in); err != nil {
		return err
	}
	if !in.BasePrice.IsPositive() {
		return &domain.ValidationError{Field: "basePrice", Reason: "must be greater than 0"}
	}
	return nil
}

// ItemEdit checks an update payload; a price of 0 is allowed once the item exists.
func ItemEdit(kind domain.Kind, in domain.NewItem) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := Struct(in); err != nil {
		return err
	}
	if !kind.ValidCategory(in.Category) {
		return &domain.ValidationError{Field: "category", Reason: "must be one of " + strings.Join(kind.Categories(), ", ")}
	}
	if kind == domain.KindProduct && strings.TrimSpace(in.Brand) == "" {
		return &domain.ValidationError{Field: "brand", Reason: "is required"}
	}
	return nil
}

// Extras checks the optional sale fields that carry a format and returns them normalized.
// The IMEI is stored exactly as returned here, so uniqueness holds on the trimmed digits.
func Extras(e domain.Extras) (domain.Extras, error) {
	if e.IMEI != nil {
		imei := strings.TrimSpace(*e.IMEI)
		if !reIMEI.MatchString(imei) {
			return e, &domain.ValidationError{Field: "imei", Reason: "must be 14-16 digits"}
		}
		e.IMEI = &imei
	}
	if e.Color != nil {
		color := strings.TrimSpace(*e.Color)
		e.Color = &color
	}
	for name, n := range map[string]*int{"ram": e.RAM, "rom": e.ROM, "apn": e.APN} {
		if n != nil && *n < 0 {
			return e, &domain.ValidationError{Field: name, Reason: "must not be negative"}
		}
	}
	return e, nil
}

// ID parses a numeric resource identifier from a path segment.
func ID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if !reID.MatchString(s) {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id > 0
}

// Name validates a seller display name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 50 {
		return "", false
	}
	return s, true
}

// Passcode enforces a length window; bcrypt ignores anything past 72 bytes.
func Passcode(s string) bool {
	l := len(s)
	return l >= 4 && l <= 72
}
