package dto

import "time"

type ServiceStatus struct {
	Database bool  `json:"database"`
	LLM      bool  `json:"llm"`
	Redis    *bool `json:"redis"` // nil when redis is not configured
}

type HealthResponse struct {
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Services  ServiceStatus `json:"services"`
	Version   string        `json:"version"`
}
