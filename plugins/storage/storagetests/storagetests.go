// Package storagetests provides common acceptance tests for storage.Store
// implementations.
package storagetests

import (
	"context"
	"testing"

	"github.com/aakritigupta/openproject/plugins/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Priority int

const (
	PriorityLow       Priority = 1
	PriorityNormal    Priority = 2
	PriorityHigh      Priority = 3
	PriorityUrgent    Priority = 4
	PriorityImmediate Priority = 5
)

type Ticket struct {
	ID       string
	Subject  string
	Priority Priority
	Votes    *int // Ptr fields allow filtering on zero values.
}

func (t Ticket) PK() string {
	return t.ID
}

type Milestone struct {
	ID   string
	Name string
}

func (m Milestone) PK() string {
	return m.ID
}

type BadModel struct {
	ID    string
	Cycle *BadModel
}

func (b BadModel) PK() string {
	return b.ID
}

func pint(i int) *int {
	return &i
}

//nolint:funlen // This is a test helper.
func Run(t *testing.T, newStore func() storage.Store) {
	t.Run("TestCreateReadRoundTrip", func(t *testing.T) {
		crash := Ticket{
			ID:       "1",
			Subject:  "Crash on login",
			Priority: PriorityHigh,
		}
		typo := Ticket{
			ID:       "2",
			Subject:  "Typo on signup page",
			Priority: PriorityLow,
		}

		crash2 := Ticket{}
		typo2 := Ticket{}

		store := newStore()
		err := store.Create(context.Background(), crash, typo)
		require.NoError(t, err, "unexpected error putting records")

		err = store.Read(context.Background(), "1", &crash2)
		require.NoError(t, err, "unexpected error getting first ticket")
		assert.Equal(t, crash, crash2)

		err = store.Read(context.Background(), "2", &typo2)
		require.NoError(t, err, "unexpected error getting second ticket")
		assert.Equal(t, typo, typo2)
	})

	t.Run("TestCreateConflict", func(t *testing.T) {
		crash := Ticket{
			ID:       "1",
			Subject:  "Crash on login",
			Priority: PriorityHigh,
		}
		dupe := Ticket{
			ID:       "1",
			Subject:  "Crash on login",
			Priority: PriorityUrgent,
		}

		store := newStore()
		err := store.Create(context.Background(), crash)
		require.NoError(t, err, "unexpected error putting records")

		err = store.Create(context.Background(), dupe)
		require.ErrorIs(t, err, storage.ErrAlreadyExists, "expected conflict error")
	})

	t.Run("TestCreateBadModel", func(t *testing.T) {
		bm := BadModel{ID: "XXX"}
		bm.Cycle = &bm

		store := newStore()
		err := store.Create(context.Background(), bm)
		require.ErrorIs(t, err, storage.ErrInvalidModel, "expected invalid model error")
	})

	t.Run("TestReadNotFound", func(t *testing.T) {
		store := newStore()
		err := store.Read(context.Background(), "1", &Ticket{})
		require.ErrorIs(t, err, storage.ErrNotFound)

		err = store.Create(context.Background(), &Ticket{ID: "1", Subject: "Crash on login"})
		require.NoError(t, err, "unexpected error creating records")

		err = store.Read(context.Background(), "2", &Ticket{})
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("TestReadWithNilPointer", func(t *testing.T) {
		crash := Ticket{
			ID:       "1",
			Subject:  "Crash on login",
			Priority: PriorityHigh,
		}

		var receiver *Ticket

		store := newStore()
		err := store.Create(context.Background(), crash)
		require.NoError(t, err, "unexpected error putting records")

		err = store.Read(context.Background(), "1", receiver)
		require.ErrorIs(t, err, storage.ErrNilModel, "expected nil model error")
	})

	t.Run("TestUpdate", func(t *testing.T) {
		crash := Ticket{
			ID:       "1",
			Subject:  "Crash on login",
			Priority: PriorityHigh,
		}

		crash2 := Ticket{}

		store := newStore()
		err := store.Create(context.Background(), crash)
		require.NoError(t, err, "unexpected error putting records")

		err = store.Read(context.Background(), "1", &crash2)
		require.NoError(t, err, "unexpected error getting ticket")
		assert.Equal(t, crash, crash2)

		crash.Priority = PriorityImmediate
		err = store.Update(context.Background(), crash)
		require.NoError(t, err, "unexpected error updating ticket")

		err = store.Read(context.Background(), "1", &crash2)
		require.NoError(t, err, "unexpected error getting ticket")
		assert.Equal(t, crash, crash2)
	})

	t.Run("TestUpdateNotExists", func(t *testing.T) {
		crash := Ticket{
			ID:       "1",
			Subject:  "Crash on login",
			Priority: PriorityHigh,
		}

		store := newStore()
		err := store.Update(context.Background(), crash)
		require.ErrorIs(t, err, storage.ErrNotFound, "expected not found error")
	})

	t.Run("TestUpdateBadModel", func(t *testing.T) {
		bm := BadModel{ID: "XXX"}
		bm.Cycle = &bm

		store := newStore()
		err := store.Update(context.Background(), bm)
		require.ErrorIs(t, err, storage.ErrInvalidModel, "expected invalid model error")
	})

	t.Run("TestUpsert", func(t *testing.T) {
		crash := Ticket{
			ID:       "1",
			Subject:  "Crash on login",
			Priority: PriorityHigh,
		}

		crash2 := Ticket{}
		typo2 := Ticket{}

		store := newStore()
		err := store.Create(context.Background(), crash)
		require.NoError(t, err, "unexpected error putting records")

		crash.Priority = PriorityImmediate
		typo := Ticket{ID: "2", Subject: "Typo on signup page", Priority: PriorityLow}
		err = store.Upsert(context.Background(), crash, typo)
		require.NoError(t, err, "unexpected error upserting tickets")

		err = store.Read(context.Background(), "1", &crash2)
		require.NoError(t, err, "unexpected error getting first ticket")
		assert.Equal(t, crash, crash2)

		err = store.Read(context.Background(), "2", &typo2)
		require.NoError(t, err, "unexpected error getting second ticket")
		assert.Equal(t, typo, typo2)
	})

	t.Run("TestUpsertBadModel", func(t *testing.T) {
		bm := BadModel{ID: "XXX"}
		bm.Cycle = &bm

		store := newStore()
		err := store.Upsert(context.Background(), bm)
		require.ErrorIs(t, err, storage.ErrInvalidModel, "expected invalid model error")
	})

	t.Run("TestDelete", func(t *testing.T) {
		store := newStore()
		err := store.Create(context.Background(), &Ticket{ID: "4", Subject: "Slow dashboard"})
		require.NoError(t, err)

		exists, err := store.Exists(context.Background(), "4", &Ticket{})
		assert.True(t, exists)
		require.NoError(t, err)

		err = store.Delete(context.Background(), &Ticket{ID: "4"})
		require.NoError(t, err)

		exists, err = store.Exists(context.Background(), "4", &Ticket{})
		assert.False(t, exists)
		require.NoError(t, err)

		err = store.Delete(context.Background(), &Ticket{ID: "4"})
		require.ErrorIs(t, err, storage.ErrNotFound, "expected not found error")
	})

	t.Run("TestListErrorCases", func(t *testing.T) {
		store := newStore()

		out := []Ticket{}

		tests := []struct {
			name    string
			models  any
			filter  storage.Model
			wantErr error
		}{
			{"Ok", &out, Ticket{}, nil},
			{"Not a slice", Ticket{}, Ticket{}, storage.ErrSliceRequired},
			{"Not a pointer", out, Ticket{}, storage.ErrSliceRequired},
			{"Mismatched type", &out, Milestone{}, storage.ErrTypeMismatch},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := store.List(context.Background(), tt.models, tt.filter)
				require.ErrorIs(t, err, tt.wantErr, "store.List() error = %v, wantErr %v", err, tt.wantErr)
			})
		}
	})

	t.Run("TestList", func(t *testing.T) {
		store := newStore()
		err := store.Create(context.Background(),
			Ticket{"1", "Crash on login", PriorityHigh, nil},
			Ticket{"2", "Typo on signup page", PriorityLow, nil},
			Ticket{"3", "Slow dashboard", PriorityNormal, nil},
		)
		require.NoError(t, err)

		actual := []Ticket{}
		err = store.List(context.Background(), &actual, Ticket{})
		require.NoError(t, err)

		expected := []Ticket{
			{"1", "Crash on login", PriorityHigh, nil},
			{"2", "Typo on signup page", PriorityLow, nil},
			{"3", "Slow dashboard", PriorityNormal, nil},
		}

		assert.Equal(t, expected, actual)
	})

	t.Run("TestListFilter", func(t *testing.T) {
		store := newStore()
		err := store.Create(context.Background(),
			Ticket{"1", "Crash on login", PriorityHigh, nil},
			Ticket{"2", "Typo on signup page", PriorityLow, nil},
			Ticket{"3", "Slow dashboard", PriorityNormal, nil},
			Ticket{"4", "Data loss on save", PriorityUrgent, nil},
			Ticket{"5", "Broken avatar upload", PriorityHigh, nil},
			Ticket{"6", "Email never arrives", PriorityUrgent, nil},
			Ticket{"7", "Wrong sort order", PriorityLow, nil},
			Ticket{"8", "Session dropped", PriorityUrgent, nil},
		)
		require.NoError(t, err)

		actual := []Ticket{}
		err = store.List(context.Background(), &actual, Ticket{Priority: PriorityHigh})
		require.NoError(t, err)

		expected := []Ticket{
			{"1", "Crash on login", PriorityHigh, nil},
			{"5", "Broken avatar upload", PriorityHigh, nil},
		}

		assert.Equal(t, expected, actual)
	})

	t.Run("TestListPointerFilter", func(t *testing.T) {
		store := newStore()
		err := store.Create(context.Background(),
			Ticket{"1", "Crash on login", PriorityHigh, nil},
			Ticket{"2", "Typo on signup page", PriorityLow, nil},
		)
		require.NoError(t, err)

		actual := []Ticket{}
		err = store.List(context.Background(), &actual, &Ticket{Priority: PriorityLow})
		require.NoError(t, err)

		expected := []Ticket{
			{"2", "Typo on signup page", PriorityLow, nil},
		}

		assert.Equal(t, expected, actual)
	})

	t.Run("TestListFilterZero", func(t *testing.T) {
		store := newStore()
		err := store.Create(context.Background(),
			Ticket{"1", "Crash on login", PriorityHigh, pint(4)},
			Ticket{"2", "Typo on signup page", PriorityLow, pint(3)},
			Ticket{"3", "Slow dashboard", PriorityNormal, pint(0)},
			Ticket{"4", "Data loss on save", PriorityUrgent, pint(0)},
			Ticket{"5", "Broken avatar upload", PriorityHigh, nil},
		)
		require.NoError(t, err)

		actual := []Ticket{}
		err = store.List(context.Background(), &actual, Ticket{Votes: pint(0)})
		require.NoError(t, err)

		expected := []Ticket{
			{"3", "Slow dashboard", PriorityNormal, pint(0)},
			{"4", "Data loss on save", PriorityUrgent, pint(0)},
		}

		assert.Equal(t, expected, actual)
	})

	t.Run("TestExists", func(t *testing.T) {
		store := newStore()
		exists, err := store.Exists(context.Background(), "3", &Ticket{})
		assert.False(t, exists)
		require.NoError(t, err)

		err = store.Create(context.Background(), &Ticket{ID: "3", Subject: "Slow dashboard"})
		require.NoError(t, err)

		exists, err = store.Exists(context.Background(), "3", &Ticket{})
		assert.True(t, exists)
		require.NoError(t, err)
	})
}
