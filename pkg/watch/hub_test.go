package watch_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/pkg/watch"
)

func TestHub_PublishSubscribe(t *testing.T) {
	t.Parallel()

	t.Run("Подписчик получает события только своей записи", func(t *testing.T) {
		t.Parallel()

		hub := watch.NewHub[string]()
		ch, cancel := hub.Subscribe(1)
		defer cancel()

		hub.Publish(2, "other")
		hub.Publish(1, "mine")

		select {
		case got := <-ch:
			assert.Equal(t, "mine", got)
		case <-time.After(time.Second):
			t.Fatal("событие не доставлено")
		}

		select {
		case got := <-ch:
			t.Fatalf("лишнее событие: %v", got)
		default:
		}
	})

	t.Run("Cancel закрывает канал и снимает подписку", func(t *testing.T) {
		t.Parallel()

		hub := watch.NewHub[int]()
		ch, cancel := hub.Subscribe(7)

		cancel()
		cancel() // повторный cancel безопасен

		_, open := <-ch
		require.False(t, open)

		// публикация после cancel не должна паниковать
		hub.Publish(7, 42)
	})

	t.Run("Переполненный буфер не блокирует Publish", func(t *testing.T) {
		t.Parallel()

		hub := watch.NewHub[int]()
		_, cancel := hub.Subscribe(3)
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 100; i++ {
				hub.Publish(3, i)
			}
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Publish заблокировался на медленном подписчике")
		}
	})

	t.Run("Несколько подписчиков одной записи получают событие", func(t *testing.T) {
		t.Parallel()

		hub := watch.NewHub[string]()
		a, cancelA := hub.Subscribe(5)
		defer cancelA()
		b, cancelB := hub.Subscribe(5)
		defer cancelB()

		hub.Publish(5, "state")

		assert.Equal(t, "state", <-a)
		assert.Equal(t, "state", <-b)
	})
}
