// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
)

// interruptSignals defines the default signals to catch in order to do a proper
// shutdown.
var interruptSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// interruptContext returns a context that is cancelled on the first SIGINT
// or SIGTERM. Repeated signals are only logged so the user knows the
// shutdown is in progress.
func interruptContext(parent context.Context, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		interruptChannel := make(chan os.Signal, 1)
		signal.Notify(interruptChannel, interruptSignals...)
		defer signal.Stop(interruptChannel)

		select {
		case sig := <-interruptChannel:
			log.Info().Msg("Received signal " + sig.String() + ". Shutting down...")
			cancel()
		case <-ctx.Done():
			return
		}

		for {
			select {
			case sig := <-interruptChannel:
				log.Info().Msg("Received signal " + sig.String() + ". Already shutting down...")
			case <-parent.Done():
				return
			}
		}
	}()

	return ctx, cancel
}
