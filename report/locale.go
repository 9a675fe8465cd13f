package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is used when the configuration leaves the locale empty.
const DefaultLocale = "es_MX"

// Locale formats numbers and dates for a document.
type Locale struct {
	name    string
	tag     language.Tag
	printer *message.Printer
	dates   monday.Locale
}

// NewLocale parses a locale such as "es_MX" or "en-US".
func NewLocale(name string) (*Locale, error) {
	if name == "" {
		name = DefaultLocale
	}
	key := strings.ToLower(strings.ReplaceAll(name, "-", "_"))
	tag, err := language.Parse(strings.ReplaceAll(key, "_", "-"))
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", name, err)
	}
	return &Locale{
		name:    key,
		tag:     tag,
		printer: message.NewPrinter(tag),
		dates:   mondayLocale(key),
	}, nil
}

// MustLocale is NewLocale for constant names.
func MustLocale(name string) *Locale {
	l, err := NewLocale(name)
	if err != nil {
		panic(err)
	}
	return l
}

// Name returns the normalized locale name, e.g. "es_mx".
func (l *Locale) Name() string { return l.name }

// Number formats x with exactly places decimals using the locale's
// separators. Non-finite values are spelled out.
func (l *Locale) Number(x float64, places int) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	}
	return l.printer.Sprintf("%v", number.Decimal(x,
		number.MinFractionDigits(places),
		number.MaxFractionDigits(places)))
}

// Integer formats a count.
func (l *Locale) Integer(x float64) string {
	return l.Number(x, 0)
}

// Date formats t as a long date with time, e.g. "19 de octubre de 2026, 14:05".
func (l *Locale) Date(t time.Time) string {
	return monday.Format(t, dateLayout(l.dates), l.dates)
}

func dateLayout(loc monday.Locale) string {
	switch loc {
	case monday.LocaleEnUS:
		return "January 2, 2006, 15:04"
	case monday.LocaleEnGB:
		return "2 January 2006, 15:04"
	case monday.LocaleEsES, monday.LocalePtPT, monday.LocalePtBR:
		return "2 de January de 2006, 15:04"
	case monday.LocaleFrFR, monday.LocaleFrCA:
		return "2 January 2006 à 15:04"
	case monday.LocaleDeDE:
		return "2. January 2006, 15:04"
	}
	return "2 January 2006, 15:04"
}

// mondayLocale maps a normalized locale name to a monday locale. Regions
// monday does not ship fall back to the language.
func mondayLocale(name string) monday.Locale {
	locales := map[string]monday.Locale{
		"en":    monday.LocaleEnUS,
		"en_us": monday.LocaleEnUS,
		"en_gb": monday.LocaleEnGB,
		"es":    monday.LocaleEsES,
		"es_es": monday.LocaleEsES,
		"es_mx": monday.LocaleEsES,
		"fr":    monday.LocaleFrFR,
		"fr_ca": monday.LocaleFrCA,
		"de":    monday.LocaleDeDE,
		"pt":    monday.LocalePtPT,
		"pt_br": monday.LocalePtBR,
	}
	if loc, ok := locales[name]; ok {
		return loc
	}
	if lang, _, ok := strings.Cut(name, "_"); ok {
		if loc, ok := locales[lang]; ok {
			return loc
		}
	}
	return monday.LocaleEsES
}
