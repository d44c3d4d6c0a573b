package connector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/bqlab/database"
	"github.com/Konsultn-Engineering/bqlab/dialect"
)

type fakeConnection struct{}

func (fakeConnection) Database() database.Database  { return nil }
func (fakeConnection) Dialect() dialect.Dialect     { return dialect.NewPostgresDialect() }
func (fakeConnection) Health(context.Context) error { return nil }
func (fakeConnection) Stats() ConnectionStats       { return ConnectionStats{} }
func (fakeConnection) Close() error                 { return nil }

type flakyProvider struct {
	failures int
	calls    int
}

func (p *flakyProvider) Connect(context.Context, Config) (Connection, error) {
	p.calls++
	if p.calls <= p.failures {
		return nil, errors.New("connection refused")
	}
	return fakeConnection{}, nil
}

func (p *flakyProvider) Dialect() dialect.Dialect { return dialect.NewPostgresDialect() }

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("nope", Config{Host: "h"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestNewValidatesConfig(t *testing.T) {
	Register("validate-test", &flakyProvider{})
	_, err := New("validate-test", Config{})
	assert.ErrorContains(t, err, "host is required")
}

func TestConnectWithRetry(t *testing.T) {
	p := &flakyProvider{failures: 2}
	Register("retry-test", p)
	c, err := New("retry-test", Config{Host: "h"})
	require.NoError(t, err)

	conn, err := c.ConnectWithRetry(context.Background(), RetryOptions{MaxRetries: 2, BaseDelay: time.Millisecond})
	require.NoError(t, err)
	assert.NotNil(t, conn)
	assert.Equal(t, 3, p.calls)
}

func TestConnectWithRetryExhausted(t *testing.T) {
	p := &flakyProvider{failures: 10}
	Register("exhaust-test", p)
	c, err := New("exhaust-test", Config{Host: "h"})
	require.NoError(t, err)

	_, err = c.ConnectWithRetry(context.Background(), RetryOptions{MaxRetries: 1, BaseDelay: time.Millisecond})
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, 2, p.calls)
}

func TestConnectWithRetryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	_, err := retryConnect(ctx, RetryOptions{MaxRetries: 5, BaseDelay: time.Hour}, func(context.Context) (Connection, error) {
		attempts++
		cancel()
		return nil, errors.New("connection refused")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"Valid", Config{Host: "h", Port: 5432, SSLMode: "disable"}, ""},
		{"MissingHost", Config{}, "host is required"},
		{"BadPort", Config{Host: "h", Port: 70000}, "invalid port"},
		{"BadSSLMode", Config{Host: "h", SSLMode: "sometimes"}, "invalid ssl mode"},
		{"IdleAboveOpen", Config{Host: "h", Pool: PoolConfig{MaxOpen: 1, MinIdle: 2}}, "exceeds max_open"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDSNBuilder(t *testing.T) {
	dsn := NewDSNBuilder("postgres").
		Auth("user", "").
		Host("localhost", 5432).
		Database("db").
		Params(map[string]string{"b": "2", "a": "1", "empty": ""}).
		Build()
	assert.Equal(t, "postgres://user@localhost:5432/db?a=1&b=2", dsn)

	assert.Error(t, NewDSNBuilder("postgres").Validate())
	assert.NoError(t, NewDSNBuilder("postgres").Host("h", 0).Validate())
}
