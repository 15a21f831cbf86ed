package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kroksys/jrpc/v2/spec"
)

// ErrInvalidParams marks arguments that can not be bound to a method.
var ErrInvalidParams = spec.ErrInvalidParams

// Signature declares the parameters a method accepts. Positional
// arguments bind to Required and then Optional names in order, named
// arguments bind by name.
type Signature struct {
	Required []string
	Optional []string

	// Accept any number of extra positional arguments.
	Variadic bool

	// Accept named arguments that are not declared.
	Keywords bool
}

// Any accepts every combination of arguments.
var Any = Signature{Variadic: true, Keywords: true}

// Returns signature with required parameters only.
func Positional(names ...string) Signature {
	return Signature{Required: names}
}

// Names of all declared parameters in positional order.
func (s Signature) Names() []string {
	names := make([]string, 0, len(s.Required)+len(s.Optional))
	names = append(names, s.Required...)
	return append(names, s.Optional...)
}

// Accepts reports whether args and kwargs can be bound to the signature.
func (s Signature) Accepts(args []interface{}, kwargs map[string]interface{}) bool {
	return s.Check(args, kwargs) == nil
}

// Check validates arguments against the declared parameters. It only
// looks at structure: unexpected names, missing required parameters and
// too many positional arguments.
func (s Signature) Check(args []interface{}, kwargs map[string]interface{}) error {
	declared := make(map[string]bool, len(s.Required)+len(s.Optional))
	for _, name := range s.Names() {
		declared[name] = true
	}

	if !s.Keywords {
		unexpected := []string{}
		for key := range kwargs {
			if !declared[key] {
				unexpected = append(unexpected, key)
			}
		}
		if len(unexpected) > 0 {
			sort.Strings(unexpected)
			return fmt.Errorf("%w: unexpected named arguments: %s", ErrInvalidParams, strings.Join(unexpected, ", "))
		}
	}

	// Parameters not bound by name are left for positional arguments.
	required, total := 0, 0
	for _, name := range s.Required {
		if _, ok := kwargs[name]; !ok {
			required++
			total++
		}
	}
	for _, name := range s.Optional {
		if _, ok := kwargs[name]; !ok {
			total++
		}
	}

	if len(args) < required {
		return fmt.Errorf("%w: expected at least %d positional arguments, got %d", ErrInvalidParams, required, len(args))
	}
	if !s.Variadic && len(args) > total {
		return fmt.Errorf("%w: expected at most %d positional arguments, got %d", ErrInvalidParams, total, len(args))
	}
	return nil
}
