package app

import (
	"github.com/vk/fusegrid/internal/registry"
	"github.com/vk/fusegrid/modules/env_vars"
	"github.com/vk/fusegrid/modules/identity"
	"github.com/vk/fusegrid/modules/print"
)

// coreModules is the definitive list of all modules that are compiled into
// the fusegrid binary.
var coreModules = []registry.Module{
	&env_vars.Module{},
	&identity.Module{},
	&print.Module{},
}
