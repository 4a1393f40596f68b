package format

import (
	"fmt"
	"time"
)

// Locale selects month names and date ordering. It never affects numbers.
type Locale string

const (
	LocaleIndia Locale = "en-IN"
	LocaleUS    Locale = "en-US"
	LocaleUK    Locale = "en-GB"
	LocaleHindi Locale = "hi-IN"
)

var englishMonths = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var englishLongMonths = [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"}

var hindiMonths = [12]string{"जन॰", "फ़र॰", "मार्च", "अप्रैल", "मई", "जून", "जुल॰", "अग॰", "सित॰", "अक्तू॰", "नव॰", "दिस॰"}

var hindiLongMonths = [12]string{"जनवरी", "फ़रवरी", "मार्च", "अप्रैल", "मई", "जून", "जुलाई", "अगस्त", "सितंबर", "अक्तूबर", "नवंबर", "दिसंबर"}

// SupportedLocales lists the locales accepted by configuration
func SupportedLocales() []Locale {
	return []Locale{LocaleIndia, LocaleUS, LocaleUK, LocaleHindi}
}

// ParseLocale validates a configured locale string
func ParseLocale(s string) (Locale, error) {
	for _, l := range SupportedLocales() {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unsupported locale %q", s)
}

func (l Locale) shortMonths() [12]string {
	if l == LocaleHindi {
		return hindiMonths
	}
	return englishMonths
}

func (l Locale) longMonths() [12]string {
	if l == LocaleHindi {
		return hindiLongMonths
	}
	return englishLongMonths
}

// MonthYear renders "Jan 24": short month name and two-digit year
func (l Locale) MonthYear(t time.Time) string {
	return l.shortMonths()[t.Month()-1] + " " + t.Format("06")
}

// UpdatedAt renders the "last updated" notice, e.g. "15 January 2024, 03:04 PM"
func (l Locale) UpdatedAt(t time.Time) string {
	month := l.longMonths()[t.Month()-1]
	if l == LocaleUS {
		return fmt.Sprintf("%s %d, %d, %s", month, t.Day(), t.Year(), t.Format("03:04 PM"))
	}
	return fmt.Sprintf("%d %s %d, %s", t.Day(), month, t.Year(), t.Format("03:04 PM"))
}
