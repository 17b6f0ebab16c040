package funcs

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

var TemplateFuncs = map[string]any{
	"formatMoney": FormatMoney,
	"formatTime":  formatTime,
	"upper":       strings.ToUpper,
	"title":       title,
}

// FormatMoney renders amount in the given ISO 4217 currency, falling back to
// the plain decimal with the code appended when the code is unknown.
func FormatMoney(amount any, code string) string {
	d, err := toDecimal(amount)
	if err != nil {
		return fmt.Sprintf("%v %s", amount, code)
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return d.StringFixed(2) + " " + strings.ToUpper(code)
	}

	f, _ := d.Round(2).Float64()
	return printer.Sprint(currency.Symbol(unit.Amount(f)))
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch value := v.(type) {
	case decimal.Decimal:
		return value, nil
	case *decimal.Decimal:
		if value == nil {
			return decimal.Zero, nil
		}
		return *value, nil
	case string:
		return decimal.NewFromString(value)
	case float64:
		return decimal.NewFromFloat(value), nil
	case int:
		return decimal.NewFromInt(int64(value)), nil
	case int64:
		return decimal.NewFromInt(value), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported amount type %T", v)
	}
}

func formatTime(format string, t time.Time) string {
	return t.Format(format)
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
