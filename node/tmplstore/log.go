// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tmplstore

import (
	"github.com/rs/zerolog"
	"gitlab.com/jaxnet/jaxminer/corelog"
)

var log = corelog.Disabled

// UseLogger uses a specified Logger to output package logging info.
// Stores opened afterwards pass it on to their database engine.
func UseLogger(logger zerolog.Logger) {
	log = logger
}
