package hcl

import (
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// envFunc reads an environment variable, returning "" when it is unset.
var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{{Name: "name", Type: cty.String}},
	Type:   function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return cty.StringVal(os.Getenv(args[0].AsString())), nil
	},
})

func functions() map[string]function.Function {
	return map[string]function.Function{
		"env":        envFunc,
		"lower":      stdlib.LowerFunc,
		"upper":      stdlib.UpperFunc,
		"trimprefix": stdlib.TrimPrefixFunc,
		"trimsuffix": stdlib.TrimSuffixFunc,
	}
}

// fileContext is the evaluation context for top-level attributes.
func fileContext() *hcl.EvalContext {
	return &hcl.EvalContext{Functions: functions()}
}

// nameContext is the evaluation context of a transform for one component.
func nameContext(name string) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"name": cty.StringVal(name)},
		Functions: functions(),
	}
}
