// Package pdf builds wkhtmltopdf documents from a service configuration
// section.
//
// Build translates the section into document options: enableXvfb is coerced
// to a bool and moved under commandOptions, every other key is passed
// through as a wkhtmltopdf global option. Nothing runs until the document is
// saved.
package pdf
