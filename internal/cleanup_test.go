package internal_test

import (
	"errors"
	"testing"

	"github.com/ryanmoran/gitferry/internal"
	"github.com/stretchr/testify/assert"
)

func TestCleanupManager(t *testing.T) {
	t.Run("executes cleanup functions in LIFO order", func(t *testing.T) {
		manager := internal.NewCleanupManager()

		var order []string
		manager.Add("first", func() error {
			order = append(order, "first")
			return nil
		})
		manager.Add("second", func() error {
			order = append(order, "second")
			return nil
		})

		manager.Execute()
		assert.Equal(t, []string{"second", "first"}, order)
	})

	t.Run("runs every cleanup even when one fails", func(t *testing.T) {
		manager := internal.NewCleanupManager()

		var ran []string
		manager.Add("survivor", func() error {
			ran = append(ran, "survivor")
			return nil
		})
		manager.Add("failing", func() error {
			ran = append(ran, "failing")
			return errors.New("boom")
		})

		manager.Execute()
		assert.Equal(t, []string{"failing", "survivor"}, ran)
	})

	t.Run("does nothing when empty", func(t *testing.T) {
		internal.NewCleanupManager().Execute()
	})
}
