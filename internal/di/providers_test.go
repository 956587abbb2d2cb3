package di

import (
	"errors"
	"net/http"
	"testing"

	"DefiPrime/pkg/config"
	xhttp "DefiPrime/pkg/http"
	applogger "DefiPrime/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostHealthy(t *testing.T) {
	assert.True(t, hostHealthy(nil))
	assert.True(t, hostHealthy(&xhttp.StatusError{Code: http.StatusNotFound}))
	assert.False(t, hostHealthy(&xhttp.StatusError{Code: http.StatusTooManyRequests}))
	assert.False(t, hostHealthy(&xhttp.StatusError{Code: http.StatusBadGateway}))
	assert.False(t, hostHealthy(errors.New("dial tcp: refused")))
}

func TestProvideSourceAndSink(t *testing.T) {
	cfg, err := config.Parse([]byte("entities: [a]\nsource: {type: file, dir: /tmp}\nsink: {type: csv, path: out.csv}\n"))
	require.NoError(t, err)

	src, cleanup, err := ProvideSource(cfg, applogger.Nop(), ProvideHTTPClient(cfg), ProvideLimiter(cfg), ProvideBreaker(cfg, applogger.Nop()))
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, "file", src.Name())

	cfg.Source.Type = "llama"
	src, _, err = ProvideSource(cfg, applogger.Nop(), ProvideHTTPClient(cfg), ProvideLimiter(cfg), nil)
	require.NoError(t, err)
	assert.Equal(t, "llama", src.Name())

	sink, closeSink, err := ProvideSink(cfg, ProvideRegistry())
	require.NoError(t, err)
	assert.NotNil(t, sink)
	closeSink()

	cfg.Sink.Type = "carrier-pigeon"
	_, _, err = ProvideSink(cfg, ProvideRegistry())
	assert.Error(t, err)
}
