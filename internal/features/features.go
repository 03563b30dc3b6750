// Package features defines the fixed-order voice measurements consumed by the
// Parkinson's classifier and the text scan used to prefill them from a report.
package features

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Count is the length of every feature vector.
const Count = 22

type Feature struct {
	Label string
	Field string
}

var ordered = [Count]Feature{
	{Label: "MDVP:Fo(Hz)", Field: "mdvp_fo"},
	{Label: "MDVP:Fhi(Hz)", Field: "mdvp_fhi"},
	{Label: "MDVP:Flo(Hz)", Field: "mdvp_flo"},
	{Label: "MDVP:Jitter(%)", Field: "mdvp_jitter"},
	{Label: "MDVP:Jitter(Abs)", Field: "mdvp_jitter_abs"},
	{Label: "MDVP:RAP", Field: "mdvp_rap"},
	{Label: "MDVP:PPQ", Field: "mdvp_ppq"},
	{Label: "Jitter:DDP", Field: "jitter_ddp"},
	{Label: "MDVP:Shimmer", Field: "mdvp_shimmer"},
	{Label: "MDVP:Shimmer(dB)", Field: "mdvp_shimmer_db"},
	{Label: "Shimmer:APQ3", Field: "shimmer_apq3"},
	{Label: "Shimmer:APQ5", Field: "shimmer_apq5"},
	{Label: "MDVP:APQ", Field: "mdvp_apq"},
	{Label: "Shimmer:DDA", Field: "shimmer_dda"},
	{Label: "NHR", Field: "nhr"},
	{Label: "HNR", Field: "hnr"},
	{Label: "RPDE", Field: "rpde"},
	{Label: "DFA", Field: "dfa"},
	{Label: "spread1", Field: "spread1"},
	{Label: "spread2", Field: "spread2"},
	{Label: "D2", Field: "d2"},
	{Label: "PPE", Field: "ppe"},
}

// All returns the features in classifier order.
func All() []Feature {
	out := make([]Feature, Count)
	copy(out, ordered[:])
	return out
}

// Vector holds one value per feature in classifier order.
type Vector [Count]float64

// Value is one labelled entry of a vector, used for listings.
type Value struct {
	Label string
	Field string
	Value float64
}

func (vector Vector) Values() []Value {
	values := make([]Value, 0, Count)
	for index, feature := range ordered {
		values = append(values, Value{Label: feature.Label, Field: feature.Field, Value: vector[index]})
	}
	return values
}

// FormatValue renders a confirmed value the same way in every report listing.
func FormatValue(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// ParseVector reads every feature field through lookup. All fields are required.
func ParseVector(lookup func(field string) string) (Vector, error) {
	var vector Vector
	for index, feature := range ordered {
		raw := strings.TrimSpace(lookup(feature.Field))
		if raw == "" {
			return Vector{}, fmt.Errorf("missing value for %s", feature.Field)
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Vector{}, fmt.Errorf("invalid value for %s", feature.Field)
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return Vector{}, fmt.Errorf("invalid value for %s", feature.Field)
		}
		vector[index] = value
	}
	return vector, nil
}
