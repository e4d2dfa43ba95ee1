package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// MetricStatus explains why a metric value is or is not usable.
type MetricStatus string

const (
	StatusOK               MetricStatus = "ok"
	StatusInsufficientData MetricStatus = "insufficient_data"
	StatusNotMeaningful    MetricStatus = "not_meaningful"
	StatusLowConfidence    MetricStatus = "low_confidence"
)

// Metric is a computed value plus its validity. Ratios with invalid
// denominators and indicators with short windows carry a sentinel status
// instead of letting NaN or Inf leak into the bundle.
type Metric struct {
	Value  float64      `json:"value,omitempty"`
	Status MetricStatus `json:"status"`
}

func Ok(value float64) Metric {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NotMeaningful()
	}
	return Metric{Value: value, Status: StatusOK}
}

func LowConfidence(value float64) Metric {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NotMeaningful()
	}
	return Metric{Value: value, Status: StatusLowConfidence}
}

func NotMeaningful() Metric {
	return Metric{Status: StatusNotMeaningful}
}

func Insufficient() Metric {
	return Metric{Status: StatusInsufficientData}
}

// Usable reports whether the metric carries a value a consumer may read.
func (m Metric) Usable() bool {
	return m.Status == StatusOK || m.Status == StatusLowConfidence
}

// Degraded reports whether the metric should downgrade bundle data quality.
func (m Metric) Degraded() bool {
	return m.Status == StatusInsufficientData || m.Status == StatusLowConfidence
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Usable() {
		return json.Marshal(struct {
			Status MetricStatus `json:"status"`
		}{m.Status})
	}
	return json.Marshal(struct {
		Value  float64      `json:"value"`
		Status MetricStatus `json:"status"`
	}{m.Value, m.Status})
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value  *float64     `json:"value"`
		Status MetricStatus `json:"status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("error unmarshaling metric: %w", err)
	}

	m.Status = raw.Status
	if raw.Value != nil {
		m.Value = *raw.Value
	} else {
		m.Value = 0
	}
	return nil
}
