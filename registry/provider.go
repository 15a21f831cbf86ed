package registry

// Provider is implemented by components exposing a set of methods.
// Names returned are unqualified, RegisterBulk adds the prefix.
type Provider interface {
	Methods() map[string]*Method
}

// Namespaced overrides the default prefix of a Provider, which is
// otherwise derived from its type name.
type Namespaced interface {
	Namespace() string
}
