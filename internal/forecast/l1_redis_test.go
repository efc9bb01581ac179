package forecast_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakamo-wni/weathercomment/internal/domain"
	"github.com/sakamo-wni/weathercomment/internal/forecast"
)

func TestRedisL1_SetGet_RoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l1 := forecast.NewRedisL1(client)
	ctx := context.Background()
	hour := forecast.HourFloor(time.Now())

	fc := domain.NewForecastCollection("osaka", []domain.WeatherForecast{{LocationID: "osaka", DatetimeUTC: hour}})
	l1.Set(ctx, "osaka", hour, fc, time.Minute)

	got, ok := l1.Get(ctx, "osaka", hour)
	require.True(t, ok)
	assert.Equal(t, "osaka", got.LocationID)
	assert.Equal(t, 1, l1.Len())
}

func TestRedisL1_Miss(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l1 := forecast.NewRedisL1(client)

	_, ok := l1.Get(context.Background(), "nowhere", time.Now())
	assert.False(t, ok)
}
