// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2017 The Decred developers
// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gitlab.com/jaxnet/jaxminer/corelog"
	"gitlab.com/jaxnet/jaxminer/node/mining"
	"gitlab.com/jaxnet/jaxminer/node/tmplstore"
)

const (
	LogUnitMINR = "MINR"
	LogUnitSTOR = "STOR"
	LogUnitMETR = "METR"
	LogUnitTMPD = "TMPD"
	LogUnitTOOL = "TOOL"

	showSubsystems = "show"
)

// useLoggers hands the unit loggers to the packages that log on their own.
var useLoggers = map[string]func(zerolog.Logger){
	LogUnitMINR: mining.UseLogger,
	LogUnitSTOR: tmplstore.UseLogger,
	LogUnitMETR: nil,
	LogUnitTMPD: nil,
	LogUnitTOOL: nil,
}

// Loggers maps each subsystem identifier to its logger.
type Loggers map[string]zerolog.Logger

// Get returns the logger of unit, or a disabled one for unknown units.
func (l Loggers) Get(unit string) zerolog.Logger {
	if logger, ok := l[unit]; ok {
		return logger
	}
	return corelog.Disabled
}

// SupportedSubsystems returns a sorted slice of the supported subsystems for
// logging purposes.
func SupportedSubsystems() []string {
	subsystems := make([]string, 0, len(useLoggers))
	for subsysID := range useLoggers {
		subsystems = append(subsystems, subsysID)
	}

	sort.Strings(subsystems)
	return subsystems
}

// SetupLoggers builds one logger per subsystem with the levels requested by
// debugLevel and installs them into the library packages.
func SetupLoggers(debugLevel string, logConfig corelog.Config) (Loggers, error) {
	levels, err := parseDebugLevels(debugLevel)
	if err != nil {
		return nil, err
	}

	loggers := make(Loggers, len(levels))
	for unit, level := range levels {
		logger := corelog.New(unit, level, logConfig)
		loggers[unit] = logger
		if use := useLoggers[unit]; use != nil {
			use(logger)
		}
	}
	return loggers, nil
}

// parseDebugLevels attempts to parse the specified debug level. A bare level
// applies to every subsystem; otherwise the string is a comma separated list
// of subsystem=level pairs and unnamed subsystems keep the default level.
func parseDebugLevels(debugLevel string) (map[string]zerolog.Level, error) {
	levels := make(map[string]zerolog.Level, len(useLoggers))

	// When the specified string doesn't have any delimiters, treat it as
	// the log level for all subsystems.
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		level, err := corelog.ParseLevel(debugLevel)
		if err != nil {
			return nil, errors.Errorf("the specified debug level [%v] is invalid", debugLevel)
		}
		for unit := range useLoggers {
			levels[unit] = level
		}
		return levels, nil
	}

	for unit := range useLoggers {
		levels[unit] = corelog.DefaultLevel
	}

	for _, logLevelPair := range strings.Split(debugLevel, ",") {
		if !strings.Contains(logLevelPair, "=") {
			return nil, errors.Errorf("the specified debug level contains an invalid "+
				"subsystem/level pair [%v]", logLevelPair)
		}

		fields := strings.SplitN(logLevelPair, "=", 2)
		subsysID, logLevel := strings.ToUpper(strings.TrimSpace(fields[0])), strings.TrimSpace(fields[1])

		if _, exists := useLoggers[subsysID]; !exists {
			return nil, errors.Errorf("the specified subsystem [%v] is invalid -- "+
				"supported subsystems %v", subsysID, SupportedSubsystems())
		}

		level, err := corelog.ParseLevel(logLevel)
		if err != nil {
			return nil, errors.Errorf("the specified debug level [%v] is invalid", logLevel)
		}
		levels[subsysID] = level
	}

	return levels, nil
}
