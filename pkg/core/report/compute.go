package report

import (
	"encoding/json"
	"fmt"

	"property_report/pkg/core/invest"
	"property_report/pkg/core/schema"
	"property_report/pkg/core/utils"
	"property_report/pkg/models"
)

// Parse pulls a report out of raw model output and checks it against the
// contract. Schema violations come back as warnings unless strict is set; a
// document that cannot be decoded into a report is always an error.
func Parse(s *schema.Schema, raw string, strict bool) (*models.PropertyReport, []string, error) {
	data, err := utils.ExtractReportJSON(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrContract, err)
	}

	var warnings []string
	if s != nil {
		if err := s.Validate(data); err != nil {
			if strict {
				return nil, nil, fmt.Errorf("%w: %w", ErrContract, err)
			}
			warnings = append(warnings, schema.Violations(err)...)
		}
	}

	var rep models.PropertyReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, nil, fmt.Errorf("%w: report does not decode: %v", ErrContract, err)
	}
	return &rep, warnings, nil
}

// Compute derives metrics, sensitivity and reconciliation for rep.
func Compute(rep *models.PropertyReport, o invest.Overrides, tolerance float64) (*Metrics, error) {
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	in := invest.FromReport(rep, o)
	res := invest.Calculate(in)

	m := &Metrics{
		Metrics:       res,
		Sensitivity:   invest.Sensitivity(in),
		Discrepancies: []invest.Discrepancy{},
		Warnings:      []string{},
	}
	if rep != nil {
		if d := invest.Reconcile(rep.Totals, res, tolerance); d != nil {
			m.Discrepancies = d
		}
	}
	return m, nil
}

// ComputeRaw parses raw (in any shape Parse accepts) and computes its
// metrics. Schema violations land in Warnings.
func ComputeRaw(s *schema.Schema, raw []byte, o invest.Overrides, tolerance float64) (*models.PropertyReport, *Metrics, error) {
	rep, warnings, err := Parse(s, string(raw), false)
	if err != nil {
		return nil, nil, err
	}
	m, err := Compute(rep, o, tolerance)
	if err != nil {
		return nil, nil, err
	}
	m.Warnings = append(m.Warnings, warnings...)
	return rep, m, nil
}
