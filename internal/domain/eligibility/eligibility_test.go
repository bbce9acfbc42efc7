package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_AgeOnly(t *testing.T) {
	r := Rules{AgeMin: 18, AgeMax: 65, Gender: AnyGender}
	res := Evaluate(r, Candidate{Age: 45, Gender: "male"})

	assert.Equal(t, 100, res.Score)
	require.Len(t, res.Reasons, 1)
	assert.Equal(t, "Age 45 is within range 18-65", res.Reasons[0])
}

func TestEvaluate_AgeBoundariesInclusive(t *testing.T) {
	r := Rules{AgeMin: 18, AgeMax: 65}
	for age := 10; age <= 70; age++ {
		got := Score(r, Candidate{Age: age})
		if age >= 18 && age <= 65 {
			assert.Equal(t, 100, got, "age %d", age)
		} else {
			assert.Equal(t, 0, got, "age %d", age)
		}
	}
}

func TestEvaluate_ConditionSubstringMatch(t *testing.T) {
	r := Rules{AgeMin: 40, AgeMax: 80, Conditions: []string{"Diabetes"}}
	res := Evaluate(r, Candidate{Age: 45, Conditions: []string{"Type 2 Diabetes"}})

	assert.Equal(t, 100, res.Score)
	assert.Equal(t, []string{
		"Age 45 is within range 40-80",
		"Has required conditions: Diabetes",
	}, res.Reasons)
}

func TestEvaluate_ConditionCaseInsensitive(t *testing.T) {
	r := Rules{AgeMin: 0, AgeMax: 120, Conditions: []string{"HYPERTENSION"}}
	assert.Equal(t, 100, Score(r, Candidate{Age: 30, Conditions: []string{"essential hypertension"}}))
}

func TestEvaluate_ConditionExistential(t *testing.T) {
	r := Rules{AgeMin: 0, AgeMax: 120, Conditions: []string{"Asthma", "Hypertension", "Obesity"}}
	res := Evaluate(r, Candidate{Age: 50, Conditions: []string{"Hypertension"}})

	assert.Equal(t, 100, res.Score)
	assert.Contains(t, res.Reasons, "Has required conditions: Hypertension")
}

func TestEvaluate_EmptyConditionsNotApplicable(t *testing.T) {
	withEmpty := Rules{AgeMin: 18, AgeMax: 65, Gender: "female", Conditions: []string{}}
	withNil := Rules{AgeMin: 18, AgeMax: 65, Gender: "female"}
	c := Candidate{Age: 30, Gender: "male", Conditions: []string{"Healthy"}}

	// age met, gender not: 1 of 2
	assert.Equal(t, 50, Score(withEmpty, c))
	assert.Equal(t, 50, Score(withNil, c))
}

func TestEvaluate_GenderFactor(t *testing.T) {
	tests := []struct {
		name   string
		gender string
		want   int
	}{
		{"unset gender not applicable", "", 100},
		{"any not applicable", AnyGender, 100},
		{"matching gender", "male", 100},
		{"mismatched gender", "female", 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(Rules{AgeMin: 0, AgeMax: 99, Gender: tt.gender}, Candidate{Age: 40, Gender: "male"})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_Rounding(t *testing.T) {
	r := Rules{AgeMin: 18, AgeMax: 30, Gender: "female", Conditions: []string{"Asthma"}}

	// 1 of 3
	assert.Equal(t, 33, Score(r, Candidate{Age: 20, Gender: "male"}))
	// 2 of 3
	assert.Equal(t, 67, Score(r, Candidate{Age: 20, Gender: "female"}))
	// 0 of 3
	assert.Equal(t, 0, Score(r, Candidate{Age: 50, Gender: "male"}))
}

func TestEvaluate_ReasonsMatchSatisfiedFactors(t *testing.T) {
	r := Rules{AgeMin: 30, AgeMax: 70, Gender: "male", Conditions: []string{"Hypertension", "Cholesterol"}}
	res := Evaluate(r, Candidate{Age: 58, Gender: "male", Conditions: []string{"Hypertension", "High Cholesterol"}})

	assert.Equal(t, 100, res.Score)
	assert.Equal(t, []string{
		"Age 58 is within range 30-70",
		"Gender matches: male",
		"Has required conditions: Hypertension, Cholesterol",
	}, res.Reasons)
}

func TestEvaluate_NoReasonsWhenNothingSatisfied(t *testing.T) {
	res := Evaluate(Rules{AgeMin: 18, AgeMax: 20, Conditions: []string{"Asthma"}}, Candidate{Age: 60})
	assert.Equal(t, 0, res.Score)
	assert.NotNil(t, res.Reasons)
	assert.Empty(t, res.Reasons)
}
