package server

// DeleteResponse is the body of DELETE /api/tasks/{id}
type DeleteResponse struct {
	ID string `json:"id"`
}

// ResetResponse is the body of POST /api/reset
type ResetResponse struct {
	Reset int `json:"reset"`
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}
