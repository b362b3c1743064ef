package format

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.MustParse("es-AR"))

// Money renders an amount as whole pesos with es-AR grouping, e.g. "$ 1.234.567".
func Money(amount decimal.Decimal) string {
	f, _ := amount.Round(0).Float64()
	return "$ " + printer.Sprint(number.Decimal(f, number.MaxFractionDigits(0)))
}

// Quantity renders a stock or line quantity with its unit suffix.
func Quantity(qty decimal.Decimal, unit string) string {
	f, _ := qty.Float64()
	return fmt.Sprintf("%s %s", printer.Sprint(number.Decimal(f, number.MaxFractionDigits(3))), unit)
}

func DateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("02/01/2006 15:04")
}
