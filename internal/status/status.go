// Package status holds the status enums of the planning aggregates and the
// transition tables the handlers and expiry jobs share. The enums carry no
// behavior; every rule lives in the free functions below.
package status

import (
	"fmt"

	"github.com/samber/lo"
)

// MealStatus is the lifecycle status of a planned meal.
type MealStatus string

const (
	MealCreated     MealStatus = "CREATED"
	MealReserved    MealStatus = "RESERVED"
	MealBackordered MealStatus = "BACKORDERED"
	MealDone        MealStatus = "DONE"
	MealCancelled   MealStatus = "CANCELLED"
	MealExpired     MealStatus = "EXPIRED"
)

// PlanStatus is the lifecycle status of a shopping plan.
type PlanStatus string

const (
	PlanCreated    PlanStatus = "CREATED"
	PlanInProgress PlanStatus = "IN_PROGRESS"
	PlanDone       PlanStatus = "DONE"
	PlanCancelled  PlanStatus = "CANCELLED"
	PlanExpired    PlanStatus = "EXPIRED"
)

// UnitStatus is the status of a storage unit (an item in the pantry or fridge).
type UnitStatus string

const (
	UnitAvailable UnitStatus = "AVAILABLE"
	UnitReserved  UnitStatus = "RESERVED"
	UnitConsumed  UnitStatus = "CONSUMED"
	UnitExpired   UnitStatus = "EXPIRED"
)

var mealTransitions = map[MealStatus][]MealStatus{
	MealCreated:     {MealReserved, MealBackordered, MealDone, MealCancelled, MealExpired},
	MealBackordered: {MealReserved, MealDone, MealCancelled, MealExpired},
	MealReserved:    {MealDone, MealCancelled, MealExpired},
}

var planTransitions = map[PlanStatus][]PlanStatus{
	PlanCreated:    {PlanInProgress, PlanCancelled, PlanExpired},
	PlanInProgress: {PlanDone, PlanCancelled, PlanExpired},
}

// RESERVED -> AVAILABLE is the release edge used when a meal is cancelled.
var unitTransitions = map[UnitStatus][]UnitStatus{
	UnitAvailable: {UnitReserved, UnitConsumed, UnitExpired},
	UnitReserved:  {UnitAvailable, UnitConsumed, UnitExpired},
}

var (
	allMealStatuses = []MealStatus{MealCreated, MealReserved, MealBackordered, MealDone, MealCancelled, MealExpired}
	allPlanStatuses = []PlanStatus{PlanCreated, PlanInProgress, PlanDone, PlanCancelled, PlanExpired}
	allUnitStatuses = []UnitStatus{UnitAvailable, UnitReserved, UnitConsumed, UnitExpired}
)

// Status is any of the aggregate status enums.
type Status interface {
	MealStatus | PlanStatus | UnitStatus
}

// Parse validates s against the known values of S.
func Parse[S Status](s string) (S, error) {
	known, entity := catalog[S]()
	for _, k := range known {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown %s status %q", entity, s)
}

// IsTerminalMeal reports whether s is a known status no transition leaves.
func IsTerminalMeal(s MealStatus) bool { return isTerminal(mealTransitions, allMealStatuses, s) }

// IsTerminalPlan reports whether no transition leaves s.
func IsTerminalPlan(s PlanStatus) bool { return isTerminal(planTransitions, allPlanStatuses, s) }

// IsTerminalUnit reports whether no transition leaves s.
func IsTerminalUnit(s UnitStatus) bool { return isTerminal(unitTransitions, allUnitStatuses, s) }

// OpenMeals lists the non-terminal meal statuses. Partial indexes cover
// only these rows, which are the ones the expiry sweep reads.
func OpenMeals() []MealStatus { return lo.Reject(allMealStatuses, ignoreIndex(IsTerminalMeal)) }

func OpenPlans() []PlanStatus { return lo.Reject(allPlanStatuses, ignoreIndex(IsTerminalPlan)) }

func OpenUnits() []UnitStatus { return lo.Reject(allUnitStatuses, ignoreIndex(IsTerminalUnit)) }

func CanTransitionMeal(from, to MealStatus) bool { return canTransition(mealTransitions, from, to) }

func CanTransitionPlan(from, to PlanStatus) bool { return canTransition(planTransitions, from, to) }

func CanTransitionUnit(from, to UnitStatus) bool { return canTransition(unitTransitions, from, to) }

// MealSources lists the statuses a meal may move to target from, in declaration
// order. Bulk updates use it as the status filter, so rows already at target or
// in a terminal status are left untouched.
func MealSources(target MealStatus) []MealStatus {
	return sources(allMealStatuses, target, CanTransitionMeal)
}

// PlanSources lists the statuses a plan may move to target from.
func PlanSources(target PlanStatus) []PlanStatus {
	return sources(allPlanStatuses, target, CanTransitionPlan)
}

// UnitSources lists the statuses a storage unit may move to target from.
func UnitSources(target UnitStatus) []UnitStatus {
	return sources(allUnitStatuses, target, CanTransitionUnit)
}

// Strings converts a status slice for use in store filters.
func Strings[S ~string](statuses []S) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func catalog[S Status]() ([]S, string) {
	var zero S
	switch any(zero).(type) {
	case MealStatus:
		return any(allMealStatuses).([]S), "meal"
	case PlanStatus:
		return any(allPlanStatuses).([]S), "plan"
	default:
		return any(allUnitStatuses).([]S), "storage unit"
	}
}

func isTerminal[S comparable](table map[S][]S, known []S, s S) bool {
	for _, k := range known {
		if k == s {
			return len(table[s]) == 0
		}
	}
	return false
}

func ignoreIndex[S any](pred func(S) bool) func(S, int) bool {
	return func(s S, _ int) bool { return pred(s) }
}

func canTransition[S comparable](table map[S][]S, from, to S) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

func sources[S comparable](all []S, target S, can func(from, to S) bool) []S {
	var out []S
	for _, from := range all {
		if can(from, target) {
			out = append(out, from)
		}
	}
	return out
}
