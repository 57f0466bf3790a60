package models

import "strings"

// Recognized sensor and lab field names.
const (
	FieldPH              = "ph"
	FieldHardness        = "hardness"
	FieldSolids          = "solids"
	FieldChloramines     = "chloramines"
	FieldSulfate         = "sulfate"
	FieldConductivity    = "conductivity"
	FieldOrganicCarbon   = "organic_carbon"
	FieldTrihalomethanes = "trihalomethanes"
	FieldTurbidity       = "turbidity"
)

// PrimarySensorFields are the fields an on-site probe actually measures.
var PrimarySensorFields = []string{FieldPH, FieldTurbidity, FieldChloramines, FieldConductivity}

// IsPrimarySensorField reports whether name is one of PrimarySensorFields.
func IsPrimarySensorField(name string) bool {
	for _, f := range PrimarySensorFields {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// SensorReading is a sparse mapping of field name to measured value.
type SensorReading map[string]float64

// Get looks name up, trying the exact key before a case-insensitive match.
func (r SensorReading) Get(name string) (float64, bool) {
	if v, ok := r[name]; ok {
		return v, true
	}
	for k, v := range r {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return 0, false
}

// GetOr returns the value for name or def when absent.
func (r SensorReading) GetOr(name string, def float64) float64 {
	if v, ok := r.Get(name); ok {
		return v
	}
	return def
}
