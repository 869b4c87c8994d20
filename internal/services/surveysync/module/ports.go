package module

import "surveysync/internal/services/surveysync/domain"

// Ports defines survey sync module ports exposed via the registry
type Ports struct {
	Sync domain.ServicePort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
