// Package eligibility scores a patient against a study's eligibility rules.
//
// Three factors are considered. Age range always counts. Gender counts only
// when the rules name a gender other than "any". Conditions count only when
// the rules list at least one condition, and are satisfied when any listed
// condition appears (case-insensitively) inside any of the patient's
// recorded conditions. The score is the rounded percentage of counted
// factors that are satisfied, or 0 when nothing counts.
package eligibility

import (
	"fmt"
	"math"
	"strings"
)

// AnyGender is the wildcard gender constraint.
const AnyGender = "any"

// Rules is the scoring input taken from a study's criteria.
type Rules struct {
	AgeMin     int
	AgeMax     int
	Gender     string
	Conditions []string
}

// Candidate is the scoring input taken from a patient record.
type Candidate struct {
	Age        int
	Gender     string
	Conditions []string
}

type Result struct {
	Score   int
	Reasons []string
}

// assessment records which factors apply and which are satisfied. Both the
// score and the reasons are derived from it so they cannot disagree.
type assessment struct {
	ageMet bool

	genderApplies bool
	genderMet     bool

	conditionsApply bool
	matched         []string
}

func assess(r Rules, c Candidate) assessment {
	a := assessment{
		ageMet: c.Age >= r.AgeMin && c.Age <= r.AgeMax,
	}

	if r.Gender != "" && r.Gender != AnyGender {
		a.genderApplies = true
		a.genderMet = c.Gender == r.Gender
	}

	if len(r.Conditions) > 0 {
		a.conditionsApply = true
		for _, want := range r.Conditions {
			if hasCondition(c.Conditions, want) {
				a.matched = append(a.matched, want)
			}
		}
	}
	return a
}

func hasCondition(have []string, want string) bool {
	w := strings.ToLower(want)
	for _, h := range have {
		if strings.Contains(strings.ToLower(h), w) {
			return true
		}
	}
	return false
}

func (a assessment) score() int {
	applicable, satisfied := 1, 0
	if a.ageMet {
		satisfied++
	}
	if a.genderApplies {
		applicable++
		if a.genderMet {
			satisfied++
		}
	}
	if a.conditionsApply {
		applicable++
		if len(a.matched) > 0 {
			satisfied++
		}
	}
	return int(math.Round(100 * float64(satisfied) / float64(applicable)))
}

func (a assessment) reasons(r Rules, c Candidate) []string {
	out := []string{}
	if a.ageMet {
		out = append(out, fmt.Sprintf("Age %d is within range %d-%d", c.Age, r.AgeMin, r.AgeMax))
	}
	if a.genderApplies && a.genderMet {
		out = append(out, fmt.Sprintf("Gender matches: %s", c.Gender))
	}
	if a.conditionsApply && len(a.matched) > 0 {
		out = append(out, fmt.Sprintf("Has required conditions: %s", strings.Join(a.matched, ", ")))
	}
	return out
}

// Evaluate scores c against r.
func Evaluate(r Rules, c Candidate) Result {
	a := assess(r, c)
	return Result{Score: a.score(), Reasons: a.reasons(r, c)}
}

// Score is Evaluate without the reasons.
func Score(r Rules, c Candidate) int {
	return assess(r, c).score()
}
