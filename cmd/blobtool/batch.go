// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gitlab.com/jaxnet/jaxminer/node/mining"
	"gitlab.com/jaxnet/jaxminer/types/chaincfg"
)

// batchRow is one input template. An empty coin falls back to --coin.
type batchRow struct {
	Coin string `csv:"coin"`
	Blob string `csv:"blob"`
}

type batchResult struct {
	Row         int    `csv:"row"`
	Coin        string `csv:"coin"`
	Height      uint64 `csv:"height"`
	NumHashes   uint64 `csv:"num_hashes"`
	Checkpoint  bool   `csv:"checkpoint"`
	RootHash    string `csv:"root_hash"`
	HashingBlob string `csv:"hashing_blob"`
	Error       string `csv:"error"`
}

func (app *App) batchCmd(c *cli.Context) error {
	file, err := os.Open(c.String(flagIn))
	if err != nil {
		return cli.Exit(errors.Wrap(err, "can't open batch input"), 1)
	}
	defer file.Close()

	var rows []batchRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return cli.Exit(errors.Wrap(err, "can't read batch input"), 1)
	}

	results := processBatch(rows, c.String(flagCoin))

	var out io.Writer = c.App.Writer
	if path := c.String(flagOut); path != "" {
		outFile, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return cli.Exit(errors.Wrap(err, "can't create batch output"), 1)
		}
		defer outFile.Close()
		out = outFile
	}

	if err := gocsv.Marshal(&results, out); err != nil {
		return cli.Exit(errors.Wrap(err, "can't write batch output"), 1)
	}
	return nil
}

func processBatch(rows []batchRow, defaultCoin string) []batchResult {
	results := make([]batchResult, 0, len(rows))
	for i, row := range rows {
		coin := row.Coin
		if coin == "" {
			coin = defaultCoin
		}

		res := batchResult{Row: i + 1, Coin: coin}
		if err := fillResult(&res, coin, row.Blob); err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

func fillResult(res *batchResult, coin, blob string) error {
	params, err := chaincfg.ParamsByName(coin)
	if err != nil {
		return err
	}

	tmpl, err := mining.ParseHex(strings.TrimSpace(blob), params, true)
	if err != nil {
		return err
	}

	res.Height = tmpl.Height
	res.NumHashes = tmpl.NumHashes
	res.Checkpoint = tmpl.Checkpoint
	if !tmpl.HasHashes() {
		return nil
	}

	res.RootHash = tmpl.RootHash.String()
	hashingBlob, err := tmpl.HeaderHashingBlob()
	if err != nil {
		return err
	}
	res.HashingBlob = hex.EncodeToString(hashingBlob)
	return nil
}
