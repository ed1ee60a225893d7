// Package types contains common types used across the application
package types

// HealthyStatus is reported while the process is serving.
const HealthyStatus = "healthy"

// Health reports whether the artifact is loaded and which version serves.
type Health struct {
	Status       string `json:"status"`
	ModelLoaded  bool   `json:"model_loaded"`
	ModelVersion string `json:"model_version"`
}
