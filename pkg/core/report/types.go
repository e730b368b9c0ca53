package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"property_report/pkg/core/invest"
	"property_report/pkg/models"
)

// GenerateRequest is what a client submits.
type GenerateRequest struct {
	Address       string           `json:"address"`
	PurchasePrice float64          `json:"purchasePrice"`
	Overrides     invest.Overrides `json:"overrides"`
	// NoCache skips the response cache lookup. The result is still cached.
	NoCache bool `json:"noCache,omitempty"`
}

// Validate trims the address and checks every field, returning an
// ErrInvalidRequest-wrapped error on the first problem.
func (r *GenerateRequest) Validate() error {
	r.Address = strings.TrimSpace(r.Address)
	if r.Address == "" {
		return fmt.Errorf("%w: address is required", ErrInvalidRequest)
	}
	if math.IsNaN(r.PurchasePrice) || math.IsInf(r.PurchasePrice, 0) || r.PurchasePrice <= 0 || r.PurchasePrice > invest.MaxAmount {
		return fmt.Errorf("%w: purchasePrice must be a positive number up to %.0f", ErrInvalidRequest, invest.MaxAmount)
	}
	if err := r.Overrides.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// Metrics is the locally computed part of a response.
type Metrics struct {
	Metrics       invest.Result           `json:"metrics"`
	Sensitivity   invest.SensitivityTable `json:"sensitivity"`
	Discrepancies []invest.Discrepancy    `json:"discrepancies"`
	Warnings      []string                `json:"warnings"`
}

// GenerateResponse is the report together with its derived metrics.
type GenerateResponse struct {
	ID            string                  `json:"id"`
	Report        *models.PropertyReport  `json:"report"`
	Metrics       invest.Result           `json:"metrics"`
	Sensitivity   invest.SensitivityTable `json:"sensitivity"`
	Discrepancies []invest.Discrepancy    `json:"discrepancies"`
	Warnings      []string                `json:"warnings"`
	Provider      string                  `json:"provider"`
	Model         string                  `json:"model,omitempty"`
	Cached        bool                    `json:"cached"`
	GeneratedAt   time.Time               `json:"generatedAt"`
}
