package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// DonorFields is a partial donor as submitted by a client. A nil pointer
// means the field was not supplied; JSON null is treated the same way.
type DonorFields struct {
	FirstName        *string      `json:"first_name"`
	LastName         *string      `json:"last_name"`
	Email            *string      `json:"email"`
	Phone            *string      `json:"phone"`
	BirthDate        *string      `json:"birth_date"`
	BloodType        *string      `json:"blood_type"`
	Weight           *WeightInput `json:"weight"`
	LastDonationDate *string      `json:"last_donation_date"`
	IsEligible       *bool        `json:"is_eligible"`
	MedicalNotes     *string      `json:"medical_notes"`
}

// IsEmpty reports whether no field was supplied.
func (f *DonorFields) IsEmpty() bool {
	return f == nil || (f.FirstName == nil && f.LastName == nil && f.Email == nil &&
		f.Phone == nil && f.BirthDate == nil && f.BloodType == nil && f.Weight == nil &&
		f.LastDonationDate == nil && f.IsEligible == nil && f.MedicalNotes == nil)
}

// WeightInput keeps the raw JSON for weight so that a non-numeric value is
// reported by the validator instead of failing the request decode.
type WeightInput struct {
	raw json.RawMessage
}

// NewWeightInput builds a numeric weight, mainly for tests and seeding.
func NewWeightInput(kg float64) *WeightInput {
	return &WeightInput{raw: json.RawMessage(strconv.FormatFloat(kg, 'f', -1, 64))}
}

// RawWeightInput wraps an arbitrary JSON fragment.
func RawWeightInput(raw string) *WeightInput {
	return &WeightInput{raw: json.RawMessage(raw)}
}

func (w *WeightInput) UnmarshalJSON(b []byte) error {
	w.raw = append(w.raw[:0], b...)
	return nil
}

func (w WeightInput) MarshalJSON() ([]byte, error) {
	if len(w.raw) == 0 {
		return []byte("null"), nil
	}
	return w.raw, nil
}

// IsBlank reports whether the value is null or an empty string.
func (w *WeightInput) IsBlank() bool {
	if w == nil {
		return true
	}
	trimmed := bytes.TrimSpace(w.raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return true
	}
	var s string
	if json.Unmarshal(trimmed, &s) == nil {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// Float parses the weight from a JSON number or a numeric string.
func (w *WeightInput) Float() (float64, bool) {
	if w == nil {
		return 0, false
	}
	trimmed := bytes.TrimSpace(w.raw)
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	switch t := v.(type) {
	case json.Number:
		n = t
	case string:
		n = json.Number(strings.TrimSpace(t))
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
