package models

import "time"

// Package is a deployable package of an application
type Package struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Version      string    `json:"version"`
	Dependencies []string  `json:"dependencies"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PackageListResponse is the response of the package listing endpoint
type PackageListResponse struct {
	Packages []Package `json:"packages"`
	Total    int       `json:"total"`
}
