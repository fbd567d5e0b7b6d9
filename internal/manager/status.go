package manager

import "modelhub/pkg/types"

// Status builds the response for GET /models/current.
func (m *Manager) Status() types.CurrentModelResponse {
	cur, ok := m.Current()
	return types.CurrentModelResponse{Name: cur, Loaded: ok, Resident: m.Loaded()}
}
