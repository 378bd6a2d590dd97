// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli/v2"
	"gitlab.com/jaxnet/jaxminer/node/tmplstore"
)

const (
	flagBackend    = "backend"
	flagBlob       = "blob"
	flagCoin       = "coin"
	flagDebugLevel = "debuglevel"
	flagDifficulty = "difficulty"
	flagDump       = "dump"
	flagExtraNonce = "extra-nonce"
	flagFile       = "file"
	flagHash       = "hash"
	flagHeader     = "header"
	flagIn         = "in"
	flagNonce      = "nonce"
	flagOut        = "out"
	flagPath       = "path"
)

func getFlags() map[string]cli.Flag {
	return map[string]cli.Flag{
		flagCoin: &cli.StringFlag{
			Name:    flagCoin,
			Aliases: []string{"c"},
			Value:   "monero",
			EnvVars: []string{"BLOBTOOL_COIN"},
			Usage:   "coin dialect of the template (name or ticker)",
		},
		flagDebugLevel: &cli.StringFlag{
			Name:    flagDebugLevel,
			Aliases: []string{"d"},
			Value:   "warn",
			Usage:   "log level {trace, debug, info, warn, error}",
		},
		flagBlob: &cli.StringFlag{
			Name:    flagBlob,
			Aliases: []string{"b"},
			Usage:   "hex-encoded block template",
		},
		flagFile: &cli.StringFlag{
			Name:    flagFile,
			Aliases: []string{"f"},
			Usage:   "file with the hex-encoded block template, - for stdin",
		},
		flagDump: &cli.BoolFlag{
			Name:  flagDump,
			Usage: "dump the whole parsed template instead of the summary",
		},
		flagHeader: &cli.BoolFlag{
			Name:  flagHeader,
			Usage: "build the hashing blob from the block header instead of the miner tx prefix",
		},
		flagExtraNonce: &cli.StringFlag{
			Name:  flagExtraNonce,
			Usage: "hex-encoded extra nonce written before hashing",
		},
		flagNonce: &cli.Uint64Flag{
			Name:  flagNonce,
			Usage: "header nonce written before hashing",
		},
		flagIn: &cli.StringFlag{
			Name:     flagIn,
			Aliases:  []string{"i"},
			Usage:    "CSV file with coin,blob rows",
			Required: true,
		},
		flagOut: &cli.StringFlag{
			Name:    flagOut,
			Aliases: []string{"o"},
			Usage:   "CSV output file, stdout when empty",
		},
		flagBackend: &cli.StringFlag{
			Name:  flagBackend,
			Value: tmplstore.BackendBadger,
			Usage: "template archive backend {badger, leveldb}",
		},
		flagHash: &cli.StringFlag{
			Name:     flagHash,
			Usage:    "hex-encoded proof-of-work hash",
			Required: true,
		},
		flagDifficulty: &cli.Uint64Flag{
			Name:     flagDifficulty,
			Usage:    "share or block difficulty",
			Required: true,
		},
		flagPath: &cli.StringFlag{
			Name:     flagPath,
			Aliases:  []string{"p"},
			Usage:    "template archive directory",
			Required: true,
		},
	}
}

func (app *App) templateFlags(extra ...string) []cli.Flag {
	flags := []cli.Flag{
		app.flags[flagCoin],
		app.flags[flagBlob],
		app.flags[flagFile],
	}
	for _, name := range extra {
		flags = append(flags, app.flags[name])
	}
	return flags
}
