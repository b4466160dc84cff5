package meal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/contract"
	"github.com/cuongct220020/convenient-shopping-system-sub002/internal/status"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/core/logger"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/envelope"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/messaging/kafka/consumer"
	"github.com/cuongct220020/convenient-shopping-system-sub002/pkg/persistence/persistencetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type harness struct {
	repo  *memoryRepository
	tm    *persistencetest.TxManager
	cache *recordingInvalidator
	h     *Handlers
}

func newHarness(meals ...Meal) *harness {
	repo := newMemoryRepository(meals...)
	tm := persistencetest.NewTxManager(repo)
	cache := &recordingInvalidator{}
	h := NewHandlers(tm, repo, cache)
	h.now = func() time.Time { return fixedNow }
	return &harness{repo: repo, tm: tm, cache: cache, h: h}
}

func dispatch(t *testing.T, r *consumer.Router, raw string) error {
	t.Helper()
	env, err := envelope.Decode([]byte(raw))
	require.NoError(t, err)
	return r.Dispatch(logger.WithLogger(context.Background(), zap.NewNop()), env)
}

func TestUnitAllocated_RedeliveryIsNoop(t *testing.T) {
	hs := newHarness(
		Meal{ID: 7, Status: status.MealCreated},
		Meal{ID: 9, Status: status.MealBackordered},
	)
	router := NewStorageRouter(hs.h)
	event := `{"event_type": "unit_allocated", "data": [{"meal_id": 7}, {"meal_id": 9}]}`

	require.NoError(t, dispatch(t, router, event))
	assert.Equal(t, status.MealReserved, hs.repo.get(7).Status)
	assert.Equal(t, status.MealReserved, hs.repo.get(9).Status)
	assert.Equal(t, fixedNow, hs.repo.get(7).UpdatedAt)

	hs.h.now = func() time.Time { return fixedNow.Add(time.Hour) }
	require.NoError(t, dispatch(t, router, event))

	assert.Equal(t, status.MealReserved, hs.repo.get(7).Status)
	assert.Equal(t, status.MealReserved, hs.repo.get(9).Status)
	assert.Equal(t, fixedNow, hs.repo.get(7).UpdatedAt, "second delivery must not touch the rows")
	assert.Equal(t, 2, hs.tm.Commits)
	assert.Equal(t, [][]string{{"meal:7", "meal:9"}, {"meal:7", "meal:9"}}, hs.cache.keys)
}

func TestUnitBackordered(t *testing.T) {
	hs := newHarness(
		Meal{ID: 1, Status: status.MealCreated},
		Meal{ID: 2, Status: status.MealReserved},
		Meal{ID: 3, Status: status.MealDone},
	)

	err := dispatch(t, NewStorageRouter(hs.h), `{"event_type":"unit_backordered","data":[{"meal_id":1},{"meal_id":2},{"meal_id":3}]}`)

	require.NoError(t, err)
	assert.Equal(t, status.MealBackordered, hs.repo.get(1).Status)
	assert.Equal(t, status.MealReserved, hs.repo.get(2).Status, "RESERVED cannot go back to BACKORDERED")
	assert.Equal(t, status.MealDone, hs.repo.get(3).Status, "terminal status is kept")
}

func TestTerminalMealsAreNeverReopened(t *testing.T) {
	for _, terminal := range []status.MealStatus{status.MealDone, status.MealCancelled, status.MealExpired} {
		t.Run(string(terminal), func(t *testing.T) {
			hs := newHarness(Meal{ID: 7, Status: terminal})

			require.NoError(t, dispatch(t, NewStorageRouter(hs.h), `{"event_type":"unit_allocated","data":[{"meal_id":7}]}`))
			require.NoError(t, dispatch(t, NewShoppingRouter(hs.h), `{"event_type":"plan_completed","data":{"plan_id":1,"meal_ids":[7]}}`))

			assert.Equal(t, terminal, hs.repo.get(7).Status)
		})
	}
}

func TestSufficiencyUpdated_Overwrites(t *testing.T) {
	hs := newHarness(Meal{ID: 7, Status: status.MealReserved, IsSufficient: true})
	event := `{"event_type": "meal_sufficiency_updated", "data": [{"meal_id": 7, "is_sufficient": false}]}`

	require.NoError(t, dispatch(t, NewStorageRouter(hs.h), event))
	assert.False(t, hs.repo.get(7).IsSufficient)

	require.NoError(t, dispatch(t, NewStorageRouter(hs.h), event))
	assert.False(t, hs.repo.get(7).IsSufficient)
	assert.Equal(t, status.MealReserved, hs.repo.get(7).Status)
}

func TestSufficiencyUpdated_LastEntryWins(t *testing.T) {
	hs := newHarness(Meal{ID: 7})

	err := dispatch(t, NewStorageRouter(hs.h), `{"event_type":"meal_sufficiency_updated","data":[{"meal_id":7,"is_sufficient":false},{"meal_id":7,"is_sufficient":true}]}`)

	require.NoError(t, err)
	assert.True(t, hs.repo.get(7).IsSufficient)
}

func TestRecipeUpdated(t *testing.T) {
	hs := newHarness(
		Meal{ID: 7, ComponentNameList: []string{"old"}},
		Meal{ID: 8, ComponentNameList: []string{"other"}},
	)

	err := dispatch(t, NewRecipeRouter(hs.h), `{"event_type":"recipe_updated","data":{"recipe_id":3,"component_name_list":["rice","egg"],"meal_ids":[7]}}`)

	require.NoError(t, err)
	assert.Equal(t, []string{"rice", "egg"}, hs.repo.get(7).ComponentNameList)
	assert.Equal(t, []string{"other"}, hs.repo.get(8).ComponentNameList)
}

func TestPlanCompleted(t *testing.T) {
	hs := newHarness(
		Meal{ID: 7, Status: status.MealReserved},
		Meal{ID: 9, Status: status.MealCreated},
	)

	err := dispatch(t, NewShoppingRouter(hs.h), `{"event_type":"plan_completed","data":{"plan_id":5,"meal_ids":[7,9,7]}}`)

	require.NoError(t, err)
	assert.Equal(t, status.MealDone, hs.repo.get(7).Status)
	assert.Equal(t, status.MealDone, hs.repo.get(9).Status)
	assert.Equal(t, [][]string{{"meal:7", "meal:9"}}, hs.cache.keys)
}

func TestEmptyEventsSkipTheStore(t *testing.T) {
	hs := newHarness()
	router := NewStorageRouter(hs.h)

	require.NoError(t, dispatch(t, router, `{"event_type":"unit_allocated","data":[]}`))
	require.NoError(t, dispatch(t, router, `{"event_type":"meal_sufficiency_updated","data":[{"meal_id":0,"is_sufficient":true}]}`))

	assert.Zero(t, hs.tm.Commits)
	assert.Empty(t, hs.cache.keys)
}

func TestShapeMismatchIsSkipped(t *testing.T) {
	hs := newHarness(Meal{ID: 7, Status: status.MealCreated})

	err := dispatch(t, NewStorageRouter(hs.h), `{"event_type":"unit_allocated","data":{"meal_id":7}}`)

	assert.ErrorIs(t, err, consumer.ErrSkipMessage)
	assert.Equal(t, status.MealCreated, hs.repo.get(7).Status)
}

func TestHandlerErrorRollsBackEveryRow(t *testing.T) {
	hs := newHarness(
		Meal{ID: 7, Status: status.MealCreated},
		Meal{ID: 9, Status: status.MealCreated},
	)
	hs.repo.failAfter = 2

	err := dispatch(t, NewStorageRouter(hs.h), `{"event_type":"unit_allocated","data":[{"meal_id":7},{"meal_id":9}]}`)

	assert.ErrorIs(t, err, errWriteFailed)
	assert.Equal(t, status.MealCreated, hs.repo.get(7).Status, "the first row must be rolled back too")
	assert.Equal(t, status.MealCreated, hs.repo.get(9).Status)
	assert.Equal(t, 1, hs.tm.Rollbacks)
	assert.Empty(t, hs.cache.keys, "nothing to invalidate after a rollback")
}

func TestCacheFailureIsReturnedAfterCommit(t *testing.T) {
	hs := newHarness(Meal{ID: 7, Status: status.MealCreated})
	hs.cache.err = errors.New("redis down")

	err := dispatch(t, NewStorageRouter(hs.h), `{"event_type":"unit_allocated","data":[{"meal_id":7}]}`)

	assert.ErrorIs(t, err, hs.cache.err)
	assert.Equal(t, status.MealReserved, hs.repo.get(7).Status)
	assert.Equal(t, 1, hs.tm.Commits)
}

func TestTransitionLogsCounts(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	hs := newHarness(Meal{ID: 7, Status: status.MealCreated})

	ctx := logger.WithLogger(context.Background(), zap.New(core))
	require.NoError(t, hs.h.PlanCompleted(ctx, planCompleted(7, 8)))

	entries := logs.FilterMessage("meals transitioned").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "DONE", fields["target"])
	assert.Equal(t, int64(1), fields["matched"])
}

func TestRouters(t *testing.T) {
	h := newHarness().h

	assert.Equal(t, []string{"meal_sufficiency_updated", "unit_allocated", "unit_backordered"}, NewStorageRouter(h).EventTypes())
	assert.Equal(t, []string{"recipe_updated"}, NewRecipeRouter(h).EventTypes())
	assert.Equal(t, []string{"plan_completed"}, NewShoppingRouter(h).EventTypes())
}

func planCompleted(mealIDs ...int64) contract.PlanCompleted {
	return contract.PlanCompleted{PlanID: 1, MealIDs: mealIDs}
}
