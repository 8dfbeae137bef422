package mail

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Canonicalize turns an underscore-delimited name into a class-name
// fragment: smtp_transport becomes SmtpTransport.
func Canonicalize(name string) string {
	var b strings.Builder
	for _, seg := range strings.Split(name, "_") {
		if seg == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(seg)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(seg[size:])
	}
	return b.String()
}
