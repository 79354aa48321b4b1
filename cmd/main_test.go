package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/carlog/internal/auth"
	"github.com/ukydev/carlog/internal/config"
	"github.com/ukydev/carlog/internal/notify"
)

func TestRun_RejectsEmptySecret(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: ""}}

	err := run(context.Background(), cfg, logger)

	assert.ErrorIs(t, err, auth.ErrEmptySecret)
}

func TestNewPublisher_WithoutBrokerLogs(t *testing.T) {
	logger, hook := test.NewNullLogger()

	p, closeFn := newPublisher(config.MQTTConfig{}, logger)
	defer closeFn()

	assert.IsType(t, notify.LogPublisher{}, p)
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, "MQTT_BROKER not set")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, logger) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServe_ListenError(t *testing.T) {
	logger, _ := test.NewNullLogger()
	srv := &http.Server{Addr: "127.0.0.1:-1", Handler: http.NotFoundHandler()}

	err := serve(context.Background(), srv, logger)

	assert.Error(t, err)
}
