package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/yanun0323/decimal"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
	"github.com/yanun0323/pkg/ws"

	"main/internal/schema"
)

const _binanceBaseWsUrl = "wss://stream.binance.com:9443/ws"

// BinanceSource streams bookTicker updates over the public websocket.
type BinanceSource struct {
	wss     *ws.WebSocket
	symbols []string
	cb      TickerCallback
}

// NewBinanceSource creates a source subscribed to the bookTicker stream of
// each symbol.
func NewBinanceSource(ctx context.Context, symbols []string) *BinanceSource {
	return &BinanceSource{
		wss:     ws.New(ctx, _binanceBaseWsUrl),
		symbols: symbols,
	}
}

func (s *BinanceSource) SetCallback(cb TickerCallback) {
	s.cb = cb
}

// Run connects, subscribes every symbol and pumps tickers into the callback
// until the stream closes, ctx is done, or the process shuts down.
func (s *BinanceSource) Run(ctx context.Context) error {
	if s.cb == nil {
		return errors.New("ingest: callback not set")
	}

	if err := s.wss.Start(ctx); err != nil {
		return errors.Wrap(err, "start wss")
	}
	defer s.wss.Close()

	if err := s.subscribe(ctx); err != nil {
		return err
	}

	ch, cancel := s.wss.Subscribe()
	defer cancel()

	for {
		select {
		case <-sys.Shutdown():
			return nil
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			s.handle(m)
		}
	}
}

type binanceSubscribeRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int64    `json:"id"`
}

type binanceSubscribeResponse struct {
	ID     int64 `json:"id"`
	Result any   `json:"result"`
}

func (s *BinanceSource) subscribe(ctx context.Context) error {
	params := make([]string, 0, len(s.symbols))
	for _, symbol := range s.symbols {
		params = append(params, fmt.Sprintf("%s@bookTicker", strings.ToLower(symbol)))
	}

	appendIntoRegister := true
	if err := s.wss.SendAndWait(ctx, ws.Sidecar{
		Sender: func(ctx context.Context, ws *ws.WebSocket) error {
			payload := binanceSubscribeRequest{
				Method: "SUBSCRIBE",
				Params: params,
				ID:     1,
			}

			if err := ws.WriteJSON(payload); err != nil {
				return errors.Wrap(err, "write subscribe payload").With("payload", payload)
			}

			return nil
		},
		Waiter: func(ctx context.Context, m ws.Message) (bool, error) {
			var resp binanceSubscribeResponse
			if err := m.Unmarshal(&resp); err != nil || resp.ID != 1 {
				return false, nil
			}

			if resp.Result != nil {
				return false, errors.Errorf("subscribe and wait, err: %+v", resp.Result)
			}
			return true, nil
		},
	}, appendIntoRegister); err != nil {
		return errors.Wrap(err, "send and wait")
	}

	logs.Infof("ingest: subscribed %v", params)
	return nil
}

type binanceBookTicker struct {
	UpdateID int64           `json:"u"`
	Symbol   string          `json:"s"`
	BidPrice decimal.Decimal `json:"b"`
	BidQty   decimal.Decimal `json:"B"`
	AskPrice decimal.Decimal `json:"a"`
	AskQty   decimal.Decimal `json:"A"`
}

// binanceStreamEnvelope is the combined-streams wrapper; the raw /ws
// endpoint delivers the payload bare.
type binanceStreamEnvelope struct {
	Stream string            `json:"stream"`
	Data   binanceBookTicker `json:"data"`
}

func (s *BinanceSource) handle(m ws.Message) {
	payload, ok := ws.ReadMessage[binanceBookTicker](m)
	if !ok || payload.Symbol == "" {
		envelope, ok := ws.ReadMessage[binanceStreamEnvelope](m)
		if !ok || envelope.Data.Symbol == "" {
			return
		}
		payload = envelope.Data
	}

	ticker, err := payload.ticker()
	if err != nil {
		logs.Errorf("ingest: bad bookTicker payload: %+v", err)
		return
	}
	s.cb(ticker)
}

func (p binanceBookTicker) ticker() (schema.BookTicker, error) {
	bidPrice, err := parsePrice(p.BidPrice)
	if err != nil {
		return schema.BookTicker{}, err
	}
	bidQty, err := parsePrice(p.BidQty)
	if err != nil {
		return schema.BookTicker{}, err
	}
	askPrice, err := parsePrice(p.AskPrice)
	if err != nil {
		return schema.BookTicker{}, err
	}
	askQty, err := parsePrice(p.AskQty)
	if err != nil {
		return schema.BookTicker{}, err
	}
	return schema.BookTicker{
		Symbol:   strings.ToLower(p.Symbol),
		BidPrice: schema.Price(bidPrice),
		BidQty:   schema.Quantity(bidQty),
		AskPrice: schema.Price(askPrice),
		AskQty:   schema.Quantity(askQty),
		UpdateID: p.UpdateID,
	}, nil
}

func parsePrice(d decimal.Decimal) (float64, error) {
	f, err := strconv.ParseFloat(d.String(), 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse decimal").With("value", d.String())
	}
	return f, nil
}
