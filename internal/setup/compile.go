package setup

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

// DefaultCode is the setup body used when a component has none.
const DefaultCode = "return {}"

// Compile checks and compiles a setup body. Syntax errors surface here, at
// registration time, rather than when the first instance initializes.
func Compile(name, code string) (*goja.Program, error) {
	if strings.TrimSpace(code) == "" {
		code = DefaultCode
	}
	src := "(function(__env){ with(__env){ return (function(){\n" + code + "\n}).call(this); } })"
	prog, err := goja.Compile(name, src, false)
	if err != nil {
		return nil, fmt.Errorf("failed to compile setup for %s: %w", name, err)
	}
	return prog, nil
}
