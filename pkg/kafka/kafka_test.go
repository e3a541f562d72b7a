package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer(ProducerConfig{})
	assert.ErrorContains(t, err, "brokers are required")

	_, err = NewConsumer(ConsumerConfig{}, nil)
	assert.ErrorContains(t, err, "brokers are required")
}

func TestConfigDefaults(t *testing.T) {
	p := ProducerConfig{Brokers: []string{"k:9092"}, BatchSize: 10}
	require.NoError(t, prepare(&p, p.Brokers))
	assert.Equal(t, -1, p.RequiredAcks)
	assert.Equal(t, "gzip", p.Compression)
	assert.Equal(t, 10, p.BatchSize)
	assert.Equal(t, 50*time.Millisecond, p.Linger)

	c := ConsumerConfig{Brokers: []string{"k:9092"}, GroupID: "insights"}
	require.NoError(t, prepare(&c, c.Brokers))
	assert.Equal(t, "insights", c.GroupID)
	assert.Equal(t, 1, c.Workers)
	assert.Equal(t, 2*time.Second, c.BackoffMax)
}

func TestEncodeValue(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{name: "bytes pass through", in: []byte("raw"), want: "raw"},
		{name: "string pass through", in: "AAPL", want: "AAPL"},
		{name: "struct as json", in: struct {
			Ticker string `json:"ticker"`
		}{"MSFT"}, want: `{"ticker":"MSFT"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}

	_, err := encodeValue(make(chan int))
	assert.Error(t, err)
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Snappy, parseCompression("snappy"))
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Gzip, parseCompression("bogus"))
}

func TestBackoffWithJitter(t *testing.T) {
	for attempt := 1; attempt <= 8; attempt++ {
		d := backoffWithJitter(100*time.Millisecond, time.Second, attempt)
		assert.LessOrEqual(t, d, time.Second)
		assert.Greater(t, d, time.Duration(0))
	}
}

func TestHookChain(t *testing.T) {
	var order []string
	var errs int
	rec := func(name string) ConsumerHook {
		return HookFuncs{
			Before: func(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
				order = append(order, "before:"+name)
				return ctx, km, data, nil
			},
			After: func(context.Context, string, kafka.Message, []byte, error) {
				order = append(order, "after:"+name)
			},
			Err: func(context.Context, string, kafka.Message, []byte, error) { errs++ },
		}
	}

	chain := NewHookChain(rec("a"), nil, rec("b"))
	ctx, km, _, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	require.NoError(t, err)
	chain.AfterHandle(ctx, "t", km, nil, nil)
	assert.Equal(t, []string{"before:a", "before:b", "after:b", "after:a"}, order)

	panicky := HookFuncs{Before: func(context.Context, string, kafka.Message, []byte) (context.Context, kafka.Message, []byte, error) {
		panic("boom")
	}}
	_, _, _, err = NewHookChain(rec("a"), panicky).BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	var hookErr *HookError
	require.True(t, errors.As(err, &hookErr))
	assert.Equal(t, "ERR_PANIC", hookErr.Code)
	assert.Equal(t, 1, errs)
}

func TestTraceHookCarriesHeader(t *testing.T) {
	km := kafka.Message{Headers: []kafka.Header{{Key: HeaderTraceID, Value: []byte("abc123")}}}
	ctx, _, _, err := TraceHook().BeforeHandle(context.Background(), "t", km, nil)
	require.NoError(t, err)
	assert.Equal(t, "abc123", TraceIDFrom(ctx))
	_, ok := ctx.Value(CtxStartTime).(time.Time)
	assert.True(t, ok)
}
