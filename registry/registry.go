package registry

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Registry maps method names to methods. Lookup is an exact string match.
type Registry struct {
	methods map[string]*Method
	lock    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		methods: make(map[string]*Method),
	}
}

// Register binds name to m, replacing any previous binding, and returns m
// unchanged.
func (reg *Registry) Register(name string, m *Method) *Method {
	if m == nil || m.Func == nil {
		panic("registry: nil method " + name)
	}
	reg.lock.Lock()
	defer reg.lock.Unlock()
	reg.methods[name] = m
	return m
}

// Shortcut for Register(name, NewMethod(sig, fn)).
func (reg *Registry) RegisterFunc(name string, sig Signature, fn Func) *Method {
	return reg.Register(name, NewMethod(sig, fn))
}

// RegisterBulk adds several methods at once.
//
// A map[string]*Method is merged under prefix, which defaults to "".
// A Provider is merged under prefix, which defaults to its lower cased
// namespace followed by ".". Provider method names starting with "_" are
// skipped. Later registrations silently replace earlier ones.
func (reg *Registry) RegisterBulk(source interface{}, prefix ...string) error {
	var (
		methods map[string]*Method
		pfx     string
	)
	switch src := source.(type) {
	case map[string]*Method:
		methods = src
	case Provider:
		methods = make(map[string]*Method)
		for name, m := range src.Methods() {
			if strings.HasPrefix(name, "_") {
				continue
			}
			methods[name] = m
		}
		pfx = defaultPrefix(src)
	default:
		return fmt.Errorf("registry: %T is neither a method map nor a Provider", source)
	}
	if len(prefix) > 0 {
		pfx = prefix[0]
	}
	for name, m := range methods {
		if m == nil || m.Func == nil {
			return fmt.Errorf("registry: method %s%s has no handler", pfx, name)
		}
	}

	reg.lock.Lock()
	defer reg.lock.Unlock()
	for name, m := range methods {
		reg.methods[pfx+name] = m
	}
	return nil
}

func (reg *Registry) FindMethod(name string) (*Method, bool) {
	reg.lock.RLock()
	defer reg.lock.RUnlock()
	m, ok := reg.methods[name]
	return m, ok
}

func (reg *Registry) Delete(name string) {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	delete(reg.methods, name)
}

// Sorted list of registered method names.
func (reg *Registry) Names() []string {
	reg.lock.RLock()
	defer reg.lock.RUnlock()
	names := make([]string, 0, len(reg.methods))
	for name := range reg.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (reg *Registry) Len() int {
	reg.lock.RLock()
	defer reg.lock.RUnlock()
	return len(reg.methods)
}

func defaultPrefix(p Provider) string {
	name := ""
	if n, ok := p.(Namespaced); ok {
		name = n.Namespace()
	} else {
		t := reflect.TypeOf(p)
		for t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		name = t.Name()
	}
	if name == "" {
		return ""
	}
	return strings.ToLower(name) + "."
}
