package grpc

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/investfolio-backend/internal/domain"
	"google.golang.org/protobuf/types/known/structpb"
)

// fields reads typed values out of a request Struct. Null values count as absent.
type fields map[string]*structpb.Value

func requestFields(req *structpb.Struct) fields {
	if req == nil {
		return fields{}
	}
	return req.GetFields()
}

func (f fields) lookup(name string) (*structpb.Value, bool) {
	v, ok := f[name]
	if !ok || v == nil {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

func (f fields) optionalString(name string) (*string, error) {
	v, ok := f.lookup(name)
	if !ok {
		return nil, nil
	}
	s, isString := v.GetKind().(*structpb.Value_StringValue)
	if !isString {
		return nil, domain.Validationf("%s must be a string", name)
	}
	return &s.StringValue, nil
}

func (f fields) requiredString(name string) (string, error) {
	s, err := f.optionalString(name)
	if err != nil {
		return "", err
	}
	if s == nil || strings.TrimSpace(*s) == "" {
		return "", domain.Validationf("%s is required", name)
	}
	return *s, nil
}

func (f fields) id(name string) (uuid.UUID, error) {
	s, err := f.requiredString(name)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, domain.Validationf("invalid %s format: %v", name, err)
	}
	return id, nil
}

// optionalDecimal accepts a decimal string or a JSON number
func (f fields) optionalDecimal(name string) (*decimal.Decimal, error) {
	v, ok := f.lookup(name)
	if !ok {
		return nil, nil
	}

	var d decimal.Decimal
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		parsed, err := decimal.NewFromString(strings.TrimSpace(kind.StringValue))
		if err != nil {
			return nil, domain.Validationf("invalid %s format: %v", name, err)
		}
		d = parsed
	case *structpb.Value_NumberValue:
		if math.IsNaN(kind.NumberValue) || math.IsInf(kind.NumberValue, 0) {
			return nil, domain.Validationf("invalid %s: not a finite number", name)
		}
		d = decimal.NewFromFloat(kind.NumberValue)
	default:
		return nil, domain.Validationf("%s must be a decimal string or number", name)
	}
	return &d, nil
}

func (f fields) requiredDecimal(name string) (decimal.Decimal, error) {
	d, err := f.optionalDecimal(name)
	if err != nil {
		return decimal.Zero, err
	}
	if d == nil {
		return decimal.Zero, domain.Validationf("%s is required", name)
	}
	return *d, nil
}

// optionalDate parses a YYYY-MM-DD string
func (f fields) optionalDate(name string) (*time.Time, error) {
	s, err := f.optionalString(name)
	if err != nil || s == nil {
		return nil, err
	}
	t, err := domain.ParseDate(strings.TrimSpace(*s))
	if err != nil {
		return nil, domain.Validationf("invalid %s: expected YYYY-MM-DD", name)
	}
	return &t, nil
}

// optionalInt returns fallback for an absent field
func (f fields) optionalInt(name string, fallback int) (int, error) {
	v, ok := f.lookup(name)
	if !ok {
		return fallback, nil
	}
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber || n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		return 0, domain.Validationf("%s must be an integer", name)
	}
	return int(n.NumberValue), nil
}

// Response values. Decimals travel as strings, dates as YYYY-MM-DD.

func decimalValue(d decimal.Decimal) string {
	return d.String()
}

func dateValue(t time.Time) string {
	return domain.DateKey(t)
}

func optionalDateValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return dateValue(*t)
}

func timestampValue(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
