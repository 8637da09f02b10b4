//
// Package watch polls an exchange for a market's price and keeps a simple moving average over the
// most recent quotes.
//
package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lukehollenback/cryptox/exchange"
	"github.com/lukehollenback/cryptox/logger"
	"github.com/lukehollenback/cryptox/structs/evictingqueue"
)

const (
	DefaultEvery  = 10 * time.Second
	DefaultWindow = 15
)

//
// Quote is a single polled price along with the moving average over the window it completed.
//
type Quote struct {
	At      time.Time
	Price   decimal.Decimal
	Average decimal.Decimal
	Samples int
}

//
// Warm reports whether the window was full when the quote was taken.
//
func (o Quote) Warm(window int) bool {
	return o.Samples >= window
}

type Config struct {
	Coin   string
	Quote  string
	Side   exchange.MarketSide
	Every  time.Duration
	Window int
	Logger *logger.Logger
}

//
// Watcher represents a price watcher for one market.
//
type Watcher struct {
	client exchange.Client
	coin   string
	quote  string
	side   exchange.MarketSide
	every  time.Duration
	window *evictingqueue.EvictingQueue[decimal.Decimal]
	log    *logger.Logger
	now    func() time.Time
}

func New(client exchange.Client, cfg Config) (*Watcher, error) {
	if cfg.Coin == "" || cfg.Quote == "" {
		return nil, exchange.NewParameterError("market", "coin and quote must be provided", cfg.Coin+"/"+cfg.Quote)
	}

	if cfg.Every <= 0 {
		cfg.Every = DefaultEvery
	}

	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	return &Watcher{
		client: client,
		coin:   cfg.Coin,
		quote:  cfg.Quote,
		side:   cfg.Side,
		every:  cfg.Every,
		window: evictingqueue.New[decimal.Decimal](cfg.Window),
		log:    cfg.Logger.With("exchange", client.Name(), "coin", cfg.Coin, "quote", cfg.Quote),
		now:    time.Now,
	}, nil
}

//
// Poll fetches one price, adds it to the window and returns the resulting quote.
//
func (o *Watcher) Poll(ctx context.Context) (Quote, error) {
	raw, err := o.client.GetCoinPrice(ctx, o.coin, o.quote, o.side)
	if err != nil {
		return Quote{}, err
	}

	price, err := decimal.NewFromString(raw)
	if err != nil {
		return Quote{}, fmt.Errorf("%s returned a non-numeric price %q: %w", o.client.Name(), raw, err)
	}

	o.window.Add(price)

	return Quote{
		At:      o.now(),
		Price:   price,
		Average: o.average(),
		Samples: o.window.Len(),
	}, nil
}

//
// Run polls right away and then once per period until ctx is done, handing every quote to handle.
// An unreachable exchange is logged and skipped; any other failure stops the watcher. Cancelling
// ctx is a clean shutdown and yields nil.
//
func (o *Watcher) Run(ctx context.Context, handle func(Quote)) error {
	ticker := time.NewTicker(o.every)
	defer ticker.Stop()

	for {
		quote, err := o.Poll(ctx)

		switch {
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, exchange.ErrUnavailable):
			o.log.Warnw("price poll failed, will retry", "error", err)
		case err != nil:
			return err
		default:
			handle(quote)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

//
// average calculates the simple moving average over every price in the window.
//
func (o *Watcher) average() decimal.Decimal {
	prices := o.window.Values()
	if len(prices) == 0 {
		return decimal.Zero
	}

	return decimal.Sum(prices[0], prices[1:]...).Div(decimal.NewFromInt(int64(len(prices))))
}
