package cli

import (
	stdcontext "context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/uvcview/internal/api"
	apihttp "github.com/Paintersrp/uvcview/internal/api/http"
)

var newStatusServer = apihttp.NewServer

// startStatusServer serves status and metrics on addr until the returned stop
// function runs. An empty addr disables the server.
func startStatusServer(runCtx stdcontext.Context, cmd *cobra.Command, addr string, src api.StatusSource, logger logrus.FieldLogger) (func(), error) {
	if addr == "" {
		return func() {}, nil
	}

	server, err := newStatusServer(apihttp.Config{Addr: addr, Source: src})
	if err != nil {
		return nil, err
	}

	serverCtx, cancel := stdcontext.WithCancel(runCtx)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(serverCtx)
	}()

	readyTimer := time.NewTimer(200 * time.Millisecond)
	defer readyTimer.Stop()
	select {
	case err := <-errCh:
		cancel()
		if err == nil {
			err = errors.New("status server exited")
		}
		return nil, fmt.Errorf("status server: %w", err)
	case <-readyTimer.C:
	case <-runCtx.Done():
		cancel()
		<-errCh
		return nil, runCtx.Err()
	}

	logger.WithField("addr", server.Addr()).Info("status endpoint listening")

	stop := func() {
		cancel()
		if err := <-errCh; err != nil && !errors.Is(err, stdcontext.Canceled) && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("status server shutdown")
		}
	}
	return stop, nil
}
