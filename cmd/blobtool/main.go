// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gitlab.com/jaxnet/jaxminer/config"
	"gitlab.com/jaxnet/jaxminer/corelog"
	"gitlab.com/jaxnet/jaxminer/node/mining"
	"gitlab.com/jaxnet/jaxminer/node/tmplstore"
	"gitlab.com/jaxnet/jaxminer/types/chaincfg"
	"gitlab.com/jaxnet/jaxminer/types/chainhash"
	"gitlab.com/jaxnet/jaxminer/types/pow"
)

var version = "dev"

func main() {
	app := newApp()
	err := app.cli().Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// App holds the state shared by the commands.
type App struct {
	flags map[string]cli.Flag
	stdin io.Reader
}

func newApp() *App {
	return &App{
		flags: getFlags(),
		stdin: os.Stdin,
	}
}

func (app *App) cli() *cli.App {
	return &cli.App{
		Name:     "blobtool",
		Usage:    "inspect CryptoNote block templates",
		Version:  version,
		Flags:    []cli.Flag{app.flags[flagDebugLevel]},
		Before:   app.initLogging,
		Commands: app.getCommands(),
	}
}

func (app *App) getCommands() cli.Commands {
	return []*cli.Command{
		{
			Name:   "decode",
			Usage:  "parse a template and print its fields as JSON",
			Flags:  app.templateFlags(flagDump),
			Action: app.decodeCmd,
		},
		{
			Name:   "proof",
			Usage:  "print the merkle proof of the miner transaction",
			Flags:  app.templateFlags(),
			Action: app.proofCmd,
		},
		{
			Name:   "hashing-blob",
			Usage:  "print the proof-of-work input of a template",
			Flags:  app.templateFlags(flagHeader, flagExtraNonce, flagNonce),
			Action: app.hashingBlobCmd,
		},
		{
			Name:   "check-hash",
			Usage:  "check a proof-of-work hash against a difficulty",
			Flags:  []cli.Flag{app.flags[flagHash], app.flags[flagDifficulty]},
			Action: app.checkHashCmd,
		},
		{
			Name:   "batch",
			Usage:  "parse the templates of a CSV file and write one result row per template",
			Flags:  []cli.Flag{app.flags[flagCoin], app.flags[flagIn], app.flags[flagOut]},
			Action: app.batchCmd,
		},
		{
			Name:   "replay",
			Usage:  "parse every template of an archive again",
			Flags:  []cli.Flag{app.flags[flagBackend], app.flags[flagPath]},
			Action: app.replayCmd,
		},
	}
}

func (app *App) initLogging(c *cli.Context) error {
	level, err := corelog.ParseLevel(c.String(flagDebugLevel))
	if err != nil {
		return cli.Exit(err, 1)
	}

	logCfg := corelog.Config{}.Default()
	logger := corelog.New(config.LogUnitTOOL, level, logCfg)
	mining.UseLogger(logger)
	tmplstore.UseLogger(logger)
	return nil
}

// parseTemplate reads the template named by the command flags and parses it
// with its hashes.
func (app *App) parseTemplate(c *cli.Context) (*mining.BlockTemplate, error) {
	params, err := chaincfg.ParamsByName(c.String(flagCoin))
	if err != nil {
		return nil, err
	}

	text, err := app.readBlob(c)
	if err != nil {
		return nil, err
	}

	return mining.ParseHex(text, params, true)
}

func (app *App) readBlob(c *cli.Context) (string, error) {
	if blob := c.String(flagBlob); blob != "" {
		return strings.TrimSpace(blob), nil
	}

	var in io.Reader
	switch path := c.String(flagFile); path {
	case "", "-":
		in = app.stdin
	default:
		file, err := os.Open(path)
		if err != nil {
			return "", errors.Wrap(err, "can't open template file")
		}
		defer file.Close()
		in = file
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", errors.Wrap(err, "can't read template")
	}
	return strings.TrimSpace(string(data)), nil
}

type templateSummary struct {
	Coin           string         `json:"coin"`
	MajorVersion   uint64         `json:"major_version"`
	MinorVersion   uint64         `json:"minor_version"`
	Timestamp      uint64         `json:"timestamp"`
	PrevID         string         `json:"prev_id"`
	Height         uint64         `json:"height"`
	TxVersion      uint64         `json:"tx_version"`
	UnlockTime     uint64         `json:"unlock_time"`
	NumOutputs     uint64         `json:"num_outputs"`
	Amount         uint64         `json:"amount"`
	OutputType     uint8          `json:"output_type"`
	ExtraSize      uint64         `json:"extra_size"`
	ExtraNonceSize int            `json:"extra_nonce_size"`
	MergeMiningTag string         `json:"merge_mining_tag,omitempty"`
	Checkpoint     bool           `json:"checkpoint"`
	NumHashes      uint64         `json:"num_hashes"`
	MinerTxHash    string         `json:"miner_tx_hash,omitempty"`
	RootHash       string         `json:"root_hash,omitempty"`
	Offsets        map[string]int `json:"offsets"`
}

func summarize(tmpl *mining.BlockTemplate) templateSummary {
	s := templateSummary{
		Coin:           tmpl.Params().Name,
		MajorVersion:   tmpl.MajorVersion,
		MinorVersion:   tmpl.MinorVersion,
		Timestamp:      tmpl.Timestamp,
		PrevID:         tmpl.PrevID.String(),
		Height:         tmpl.Height,
		TxVersion:      tmpl.TxVersion,
		UnlockTime:     tmpl.UnlockTime,
		NumOutputs:     tmpl.NumOutputs,
		Amount:         tmpl.Amount,
		OutputType:     tmpl.OutputType,
		ExtraSize:      tmpl.ExtraSize,
		ExtraNonceSize: len(tmpl.TxExtraNonce),
		MergeMiningTag: hex.EncodeToString(tmpl.TxMergeMiningTag),
		Checkpoint:     tmpl.Checkpoint,
		NumHashes:      tmpl.NumHashes,
		Offsets:        make(map[string]int),
	}

	for _, o := range mining.Offsets() {
		if pos, ok := tmpl.Offset(o); ok {
			s.Offsets[o.String()] = pos
		}
	}

	if tmpl.HasHashes() {
		s.MinerTxHash = tmpl.Hashes[tmpl.CoinbaseIndex].String()
		s.RootHash = tmpl.RootHash.String()
	}
	return s
}

func (app *App) decodeCmd(c *cli.Context) error {
	tmpl, err := app.parseTemplate(c)
	if err != nil {
		return cli.Exit(err, 1)
	}

	if c.Bool(flagDump) {
		fmt.Fprint(c.App.Writer, spew.Sdump(tmpl))
		return nil
	}

	return writeJSON(c.App.Writer, summarize(tmpl))
}

type proofResult struct {
	Leaves        int      `json:"leaves"`
	CoinbaseIndex int      `json:"coinbase_index"`
	Leaf          string   `json:"leaf"`
	Root          string   `json:"root"`
	Branch        []string `json:"branch"`
	Path          uint32   `json:"path"`
	Depth         int      `json:"depth"`
	Valid         bool     `json:"valid"`
}

func (app *App) proofCmd(c *cli.Context) error {
	tmpl, err := app.parseTemplate(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	if !tmpl.HasHashes() {
		return cli.Exit(mining.ErrIncompleteTemplate, 1)
	}

	leaf := tmpl.Hashes[tmpl.CoinbaseIndex]
	proof := tmpl.MinerTxProof
	res := proofResult{
		Leaves:        len(tmpl.Hashes),
		CoinbaseIndex: tmpl.CoinbaseIndex,
		Leaf:          leaf.String(),
		Root:          tmpl.RootHash.String(),
		Branch:        make([]string, 0, len(proof.Branch)),
		Path:          proof.Path,
		Depth:         proof.Depth(),
		Valid:         chainhash.ValidateMerkleTreeProof(leaf, proof, tmpl.RootHash),
	}
	for _, h := range proof.Branch {
		res.Branch = append(res.Branch, h.String())
	}

	return writeJSON(c.App.Writer, res)
}

func (app *App) hashingBlobCmd(c *cli.Context) error {
	tmpl, err := app.parseTemplate(c)
	if err != nil {
		return cli.Exit(err, 1)
	}

	var blob []byte
	switch {
	case c.IsSet(flagExtraNonce) || c.IsSet(flagNonce):
		job, err := mining.NewJob(tmpl)
		if err != nil {
			return cli.Exit(err, 1)
		}
		if c.IsSet(flagExtraNonce) {
			extraNonce, err := hex.DecodeString(c.String(flagExtraNonce))
			if err != nil {
				return cli.Exit(errors.Wrap(err, "invalid extra nonce"), 1)
			}
			if err := job.SetExtraNonce(extraNonce); err != nil {
				return cli.Exit(err, 1)
			}
		}
		if c.IsSet(flagNonce) {
			job.SetNonce(uint32(c.Uint64(flagNonce)))
		}
		blob = job.HashingBlob()

	case c.Bool(flagHeader):
		blob, err = tmpl.HeaderHashingBlob()
	default:
		blob, err = tmpl.HashingBlob()
	}
	if err != nil {
		return cli.Exit(err, 1)
	}

	fmt.Fprintln(c.App.Writer, hex.EncodeToString(blob))
	return nil
}

type checkHashResult struct {
	Hash       string `json:"hash"`
	Difficulty uint64 `json:"difficulty"`
	Target     string `json:"target"`
	Meets      bool   `json:"meets"`
}

func (app *App) checkHashCmd(c *cli.Context) error {
	hash, err := chainhash.NewHashFromStr(c.String(flagHash))
	if err != nil {
		return cli.Exit(err, 1)
	}

	difficulty := c.Uint64(flagDifficulty)
	return writeJSON(c.App.Writer, checkHashResult{
		Hash:       hash.String(),
		Difficulty: difficulty,
		Target:     fmt.Sprintf("%064x", pow.Target(difficulty)),
		Meets:      pow.CheckHash(hash, difficulty),
	})
}

func (app *App) replayCmd(c *cli.Context) error {
	backend := c.String(flagBackend)
	if !tmplstore.IsPersistent(backend) {
		return cli.Exit(errors.Errorf("replay needs a persistent backend, got %q", backend), 1)
	}

	store, err := tmplstore.Open(backend, c.String(flagPath))
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer store.Close()

	keys, err := store.Keys()
	if err != nil {
		return cli.Exit(err, 1)
	}

	var failed int
	for _, key := range keys {
		result := "ok"
		if err := replayOne(store, key); err != nil {
			failed++
			result = err.Error()
		}
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", key, result)
	}

	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d templates failed", failed, len(keys)), 1)
	}
	return nil
}

func replayOne(store tmplstore.Store, key string) error {
	rec, err := store.Get(key)
	if err != nil {
		return err
	}

	params, err := chaincfg.ParamsByName(rec.Coin)
	if err != nil {
		return err
	}

	tmpl, err := mining.Parse(rec.Blob, params, true)
	if err != nil {
		return err
	}
	if tmpl.Height != rec.Height {
		return errors.Errorf("height %d, archived as %d", tmpl.Height, rec.Height)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return cli.Exit(err, 1)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
