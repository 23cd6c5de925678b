// Package resolver implements the HrefResolver port.
package resolver

// Identity is the default HrefResolver: it returns text/href/title
// unchanged.
type Identity struct{}

func (Identity) Resolve(text string, href, title *string, _ any) (string, *string, *string) {
	return text, href, title
}

// Func adapts a plain function to the HrefResolver interface.
type Func func(text string, href, title *string, resolverData any) (string, *string, *string)

func (f Func) Resolve(text string, href, title *string, resolverData any) (string, *string, *string) {
	return f(text, href, title, resolverData)
}
