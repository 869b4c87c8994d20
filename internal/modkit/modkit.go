// Package modkit builds API modules from shared deps and functional options
package modkit

import "surveysync/internal/modkit/module"

// Module is re-exported so module packages need one import
type Module = module.Module
