package app

import (
	"github.com/specialistvlad/compositor/internal/registry"
	"github.com/specialistvlad/compositor/modules/env_vars"
	"github.com/specialistvlad/compositor/modules/layout"
	"github.com/specialistvlad/compositor/modules/print"
)

// coreModules is the definitive list of all component packs that are
// compiled into the compositor binary.
var coreModules = []registry.Module{
	&layout.Module{},
	&print.Module{},
	&env_vars.Module{},
}
