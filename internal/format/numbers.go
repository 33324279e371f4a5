package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var roPrinter = message.NewPrinter(language.Romanian)

// Count renders n with Romanian digit grouping, e.g. 1234567 -> "1.234.567".
func Count(n int) string {
	return roPrinter.Sprintf("%d", n)
}
