package token_bucket_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/pkg/token_bucket"
)

func TestTokenBucket_Allow(t *testing.T) {
	t.Parallel()

	t.Run("Пропускает ровно capacity запросов подряд", func(t *testing.T) {
		t.Parallel()

		bucket := token_bucket.NewTokenBucket(3, 0.0001)

		for i := 0; i < 3; i++ {
			assert.True(t, bucket.Allow(), "запрос %d должен пройти", i)
		}
		assert.False(t, bucket.Allow())
	})

	t.Run("Токены восстанавливаются со временем", func(t *testing.T) {
		t.Parallel()

		bucket := token_bucket.NewTokenBucket(1, 100) // 100 токенов/сек

		require.True(t, bucket.Allow())
		require.False(t, bucket.Allow())

		time.Sleep(50 * time.Millisecond)
		assert.True(t, bucket.Allow())
	})

	t.Run("Не переполняется выше capacity", func(t *testing.T) {
		t.Parallel()

		bucket := token_bucket.NewTokenBucket(2, 1000)

		time.Sleep(20 * time.Millisecond)

		assert.True(t, bucket.Allow())
		assert.True(t, bucket.Allow())
		assert.False(t, bucket.Allow())
	})
}
