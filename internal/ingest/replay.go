package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/schema"
)

// ReplaySource reads recorded tickers from a CSV file and delivers them as
// fast as the consumer can take them. Expected layout, header included:
//
//	timestamp,symbol,bid_price,bid_qty,ask_price,ask_qty
type ReplaySource struct {
	path string
	cb   TickerCallback
}

// NewReplaySource creates a replay source over the given CSV file.
func NewReplaySource(path string) *ReplaySource {
	return &ReplaySource{path: path}
}

func (s *ReplaySource) SetCallback(cb TickerCallback) {
	s.cb = cb
}

// Run streams the whole file. Malformed lines are logged and skipped so a
// single bad capture row never aborts a replay.
func (s *ReplaySource) Run(ctx context.Context) error {
	if s.cb == nil {
		return errors.New("ingest: callback not set")
	}

	f, err := os.Open(s.path)
	if err != nil {
		return errors.Wrap(err, "open replay file")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 6
	r.ReuseRecord = true

	line := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		record, err := r.Read()
		if err == io.EOF {
			logs.Infof("ingest: replay finished, %d lines", line)
			return nil
		}
		line++
		if err != nil {
			logs.Warnf("ingest: replay line %d skipped: %+v", line, err)
			continue
		}
		if line == 1 && record[0] == "timestamp" {
			continue
		}

		ticker, err := parseReplayRecord(record)
		if err != nil {
			logs.Warnf("ingest: replay line %d skipped: %+v", line, err)
			continue
		}
		s.cb(ticker)
	}
}

func parseReplayRecord(record []string) (schema.BookTicker, error) {
	ts, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return schema.BookTicker{}, errors.Wrap(err, "parse timestamp")
	}

	fields := [4]float64{}
	for i, name := range [4]string{"bid_price", "bid_qty", "ask_price", "ask_qty"} {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[i+2]), 64)
		if err != nil {
			return schema.BookTicker{}, errors.Wrap(err, "parse "+name)
		}
		fields[i] = v
	}

	return schema.BookTicker{
		Symbol:   strings.ToLower(strings.TrimSpace(record[1])),
		BidPrice: schema.Price(fields[0]),
		BidQty:   schema.Quantity(fields[1]),
		AskPrice: schema.Price(fields[2]),
		AskQty:   schema.Quantity(fields[3]),
		UpdateID: ts,
	}, nil
}
