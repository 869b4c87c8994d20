// Package module is the contract API modules satisfy plus port lookup
package module

import phttp "surveysync/internal/platform/net/http"

// Module mounts routes and exposes the ports other modules or main may call
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
