package processing

import (
	"fmt"

	"aquawatch/internal/models"
)

// Feature set names.
const (
	FeatureSetFull   = "full"
	FeatureSetSensor = "sensor"
)

// FullFeatures is the training column order of the 9-feature model.
var FullFeatures = []string{
	models.FieldPH,
	models.FieldHardness,
	models.FieldSolids,
	models.FieldChloramines,
	models.FieldSulfate,
	models.FieldConductivity,
	models.FieldOrganicCarbon,
	models.FieldTrihalomethanes,
	models.FieldTurbidity,
}

// SensorFeatures is FullFeatures restricted to probe fields, same relative order.
var SensorFeatures = []string{
	models.FieldPH,
	models.FieldChloramines,
	models.FieldConductivity,
	models.FieldTurbidity,
}

// FeatureNames returns a copy of the ordered names for set.
func FeatureNames(set string) ([]string, error) {
	switch set {
	case FeatureSetFull:
		return append([]string(nil), FullFeatures...), nil
	case FeatureSetSensor:
		return append([]string(nil), SensorFeatures...), nil
	default:
		return nil, fmt.Errorf("unknown feature set %q", set)
	}
}

// ResolveFeatures maps reading onto names in order. Absent fields resolve to
// 0.0 and are reported in missing.
func ResolveFeatures(reading models.SensorReading, names []string) (raw []float64, missing []string) {
	raw = make([]float64, len(names))
	for i, name := range names {
		v, ok := reading.Get(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		raw[i] = v
	}
	return raw, missing
}
