// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gitlab.com/jaxnet/jaxminer/node/metrics"
	"gitlab.com/jaxnet/jaxminer/node/mining"
	"gitlab.com/jaxnet/jaxminer/node/tmplstore"
	"gitlab.com/jaxnet/jaxminer/types/chaincfg"
)

// maxLineSize bounds one hex template line.
const maxLineSize = 16 << 20

// jobLine is one emitted mining job.
type jobLine struct {
	JobID       string `json:"job_id"`
	Coin        string `json:"coin"`
	Height      uint64 `json:"height"`
	ExtraNonce  string `json:"extra_nonce,omitempty"`
	HashingBlob string `json:"hashing_blob"`
	MerkleRoot  string `json:"merkle_root"`
	TemplateKey string `json:"template_key"`
}

type processor struct {
	params      *chaincfg.Params
	store       tmplstore.Store
	recorder    metrics.Recorder
	extraNonces uint32
	log         zerolog.Logger
	now         func() time.Time
}

type runStats struct {
	Templates int
	Rejected  int
	Jobs      int
}

// run reads hex templates from r, one per line, and writes the jobs of each
// accepted template to w as JSON lines. Rejected templates are logged and
// skipped. Blank lines and lines starting with # are ignored.
func (p *processor) run(ctx context.Context, r io.Reader, w io.Writer) (runStats, error) {
	var stats runStats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	enc := json.NewEncoder(w)

	for lineNo := 1; scanner.Scan(); lineNo++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		stats.Templates++
		jobs, err := p.process(line)
		if err != nil {
			stats.Rejected++
			p.log.Warn().Err(err).Int("line", lineNo).Msg("template rejected")
			continue
		}

		for i := range jobs {
			if err := enc.Encode(&jobs[i]); err != nil {
				return stats, errors.Wrap(err, "can't write job")
			}
		}
		stats.Jobs += len(jobs)
	}

	return stats, scanner.Err()
}

// process parses one hex template, archives it and derives its jobs.
// Checkpoint templates are archived but produce no jobs.
func (p *processor) process(line string) ([]jobLine, error) {
	coin := p.params.Name

	tmpl, err := mining.ParseHex(line, p.params, true)
	p.recorder.TemplateParsed(coin, err)
	if err != nil {
		return nil, err
	}
	p.recorder.TemplateHeight(coin, tmpl.Height)

	key, err := p.store.Put(&tmplstore.Record{
		Coin:       coin,
		Height:     tmpl.Height,
		ReceivedAt: p.now().UTC(),
		Blob:       tmpl.Blob(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't archive template")
	}

	job, err := mining.NewJob(tmpl)
	if errors.Is(err, mining.ErrIncompleteTemplate) {
		p.log.Info().Uint64("height", tmpl.Height).Str("key", key).
			Msg("checkpoint template archived, no jobs")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return p.jobs(job, key)
}

func (p *processor) jobs(job *mining.Job, key string) ([]jobLine, error) {
	tmpl := job.Template()
	size := len(tmpl.TxExtraNonce)

	count := int(p.extraNonces)
	if size == 0 {
		count = 1
	}

	lines := make([]jobLine, 0, count)
	for i := 0; i < count; i++ {
		var extraNonce []byte
		if size > 0 {
			extraNonce = encodeExtraNonce(uint32(i), size)
			if err := job.SetExtraNonce(extraNonce); err != nil {
				return nil, err
			}
		}

		root := job.Root()
		lines = append(lines, jobLine{
			JobID:       job.IDString(),
			Coin:        p.params.Name,
			Height:      tmpl.Height,
			ExtraNonce:  hex.EncodeToString(extraNonce),
			HashingBlob: hex.EncodeToString(job.HashingBlob()),
			MerkleRoot:  root.String(),
			TemplateKey: key,
		})
		p.recorder.HashingBlobBuilt(p.params.Name)
	}

	return lines, nil
}

// encodeExtraNonce writes n little endian into at most size bytes.
func encodeExtraNonce(n uint32, size int) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], n)
	if size > len(buf) {
		size = len(buf)
	}
	return append([]byte(nil), buf[:size]...)
}
