// Package mail builds messages, transports and mailers on top of go-mail
// from a service configuration section.
//
// Service exposes the configured constructors both as typed methods and
// through a Proxy that resolves snake_case names at run time:
//
//	svc := mail.New(section)
//	tr, err := svc.Proxy().Call("smtp_transport", "smtp.example.com", 587, "tls")
//	img, err := svc.Proxy().Property("image").Call("fromPath", "logo.png")
//
// Messages can be rendered from templates. The first rendered line becomes
// the subject and the rest the body.
package mail
