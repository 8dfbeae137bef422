package mail

import (
	"errors"
	"strings"

	"github.com/kilianp07/svckit/core/adapter"
)

// Proxy resolves names to constructors at run time. The zero-class proxy is
// unbound; Property binds it to a class. Proxies are values and never
// change state.
type Proxy struct {
	svc   *Service
	class string
}

// Class returns the bound class name and whether the proxy is bound.
func (p Proxy) Class() (string, bool) {
	return p.class, p.class != ""
}

// Property binds an unbound proxy to the class named by name, so that
// Property("smtp_transport") is bound to MailSmtpTransport. A bound proxy has
// no properties and returns itself with false.
func (p Proxy) Property(name string) (Proxy, bool) {
	if p.class != "" {
		return p, false
	}
	return Proxy{svc: p.svc, class: ClassPrefix + Canonicalize(name)}, true
}

// Call invokes method. Synthetic constructors of the service win regardless
// of state. Otherwise a bound proxy calls the static method of its class and
// an unbound proxy calls the default factory of the class named by method.
func (p Proxy) Call(method string, in ...any) (any, error) {
	canonical := Canonicalize(method)
	if c, ok := p.svc.Synthetic(canonical); ok {
		return c(in...)
	}
	if p.class != "" {
		return CallStatic(p.class, method, in...)
	}
	return CallStatic(ClassPrefix+canonical, DefaultFactory, in...)
}

// Invoke calls a bound proxy directly. It resolves like an unbound Call with
// the property name, so Property(n).Invoke(args...) equals Call(n, args...).
func (p Proxy) Invoke(in ...any) (any, error) {
	if p.class == "" {
		return nil, errors.New("mail: invoke on unbound proxy")
	}
	canonical := strings.TrimPrefix(p.class, ClassPrefix)
	if c, ok := p.svc.Synthetic(canonical); ok {
		return c(in...)
	}
	if _, ok := Classes.Lookup(p.class); !ok {
		return nil, &adapter.UnknownClassError{Name: p.class}
	}
	return CallStatic(p.class, DefaultFactory, in...)
}
