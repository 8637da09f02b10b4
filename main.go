package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/logrusorgru/aurora"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lukehollenback/cryptox/config"
	"github.com/lukehollenback/cryptox/constants"
	"github.com/lukehollenback/cryptox/exchange"
	"github.com/lukehollenback/cryptox/exchange/registry"
	"github.com/lukehollenback/cryptox/logger"
	"github.com/lukehollenback/cryptox/metrics"
	"github.com/lukehollenback/cryptox/store"
	"github.com/lukehollenback/cryptox/watch"
)

const usage = `usage: cryptox <command> [flags]

commands:
  exchanges   list the supported exchanges
  balances    print every non-zero balance
  balance     print the balance of one coin
  markets     list the markets of an exchange
  price       print the price of one coin
  prices      print the prices of several coins
  book        print the top of a market's order book
  candles     print candles
  dump        write candles to a CSV file
  load        read candles back from a CSV file
  watch       poll a price and track its moving average

run "cryptox <command> -h" for the flags of a command.
`

//
// app carries what every command needs.
//
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	metrics  *metrics.Requests
	gatherer prometheus.Gatherer
	out      io.Writer
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"exchanges": runExchanges,
	"balances":  runBalances,
	"balance":   runBalance,
	"markets":   runMarkets,
	"price":     runPrice,
	"prices":    runPrices,
	"book":      runBook,
	"candles":   runCandles,
	"dump":      runDump,
	"load":      runLoad,
	"watch":     runWatch,
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	//
	// Load the configuration and bring up logging and metrics.
	//
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load the configuration. (Error: %s)\n", err)
		return 1
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging. (Error: %s)\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	a := &app{
		cfg:      cfg,
		log:      logger.Get(),
		metrics:  metrics.NewRequests(prometheus.DefaultRegisterer),
		gatherer: prometheus.DefaultGatherer,
		out:      os.Stdout,
	}

	//
	// Cancel whatever is in flight if the operating system asks us to stop.
	//
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd(ctx, a, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}

		a.log.Errorw("command failed", "command", args[0], "error", err)
		return 1
	}

	return 0
}

//
// client builds the adapter named by the -exchange flag.
//
func (a *app) client(name string) (exchange.Client, error) {
	return registry.FromConfig(a.cfg, name, a.metrics, a.log)
}

//
// printf writes a line prefixed with the exchange's name, the way every service in the project
// prefixes its output.
//
func (a *app) printf(name, format string, args ...interface{}) {
	prefix := fmt.Sprintf(constants.LogPrefixFmt, "≪"+name+"≫")
	fmt.Fprintf(a.out, prefix+format+"\n", args...)
}

//
// formatBalance renders a balance with ten fractional digits whatever precision the exchange used.
// Anything that is not a number is printed as the exchange sent it.
//
func formatBalance(raw string) string {
	formatted, err := exchange.FormatAmount(raw)
	if err != nil {
		return raw
	}

	return formatted
}

// ----------------------------------------------------------------------------------------------
// Flags
// ----------------------------------------------------------------------------------------------

type marketFlags struct {
	exchange string
	coin     string
	quote    string
	side     string
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func (o *marketFlags) register(fs *flag.FlagSet, withSide bool) {
	fs.StringVar(&o.exchange, "exchange", "binance", "The exchange to talk to ("+strings.Join(registry.Names(), ", ")+").")
	fs.StringVar(&o.coin, "coin", "BTC", "The base coin.")
	fs.StringVar(&o.quote, "quote", "USDT", "The quote coin.")

	if withSide {
		fs.StringVar(&o.side, "side", "latest", "Which price to use: asks, bids or latest.")
	}
}

func (o *marketFlags) marketSide() (exchange.MarketSide, error) {
	return exchange.ParseMarketSide(o.side)
}

type candleFlags struct {
	marketFlags

	interval string
	amount   int
	start    string
	end      string
}

func (o *candleFlags) register(fs *flag.FlagSet) {
	o.marketFlags.register(fs, false)

	fs.StringVar(&o.interval, "interval", "1h", "The candle interval, e.g. 1m, 15min, 1h, 1d.")
	fs.IntVar(&o.amount, "amount", 0, "Fetch this many of the most recent candles.")
	fs.StringVar(&o.start, "start", "", "Fetch candles from this RFC 3339 time instead.")
	fs.StringVar(&o.end, "end", "", "Fetch candles up to this RFC 3339 time. Defaults to now.")
}

func (o *candleFlags) request(path string) (exchange.DumpRequest, error) {
	interval, err := exchange.ParseInterval(o.interval)
	if err != nil {
		return exchange.DumpRequest{}, err
	}

	req := exchange.DumpRequest{
		Coin:     o.coin,
		Quote:    o.quote,
		Interval: interval,
		Path:     path,
		Amount:   o.amount,
	}

	if o.start != "" {
		if req.Start, err = time.Parse(time.RFC3339, o.start); err != nil {
			return req, exchange.NewParameterError("start", "must be an RFC 3339 time", o.start)
		}
	}

	if o.end != "" {
		if req.End, err = time.Parse(time.RFC3339, o.end); err != nil {
			return req, exchange.NewParameterError("end", "must be an RFC 3339 time", o.end)
		}
	}

	return req, nil
}

// ----------------------------------------------------------------------------------------------
// Commands
// ----------------------------------------------------------------------------------------------

func runExchanges(_ context.Context, a *app, args []string) error {
	if err := newFlagSet("exchanges").Parse(args); err != nil {
		return err
	}

	for _, name := range registry.Names() {
		fmt.Fprintln(a.out, name)
	}

	return nil
}

func runBalances(ctx context.Context, a *app, args []string) error {
	var f marketFlags

	fs := newFlagSet("balances")
	fs.StringVar(&f.exchange, "exchange", "binance", "The exchange to talk to.")

	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := a.client(f.exchange)
	if err != nil {
		return err
	}

	balances, err := client.GetAllBalances(ctx)
	if err != nil {
		return err
	}

	coins := make([]string, 0, len(balances))
	for coin := range balances {
		coins = append(coins, coin)
	}

	sort.Strings(coins)

	for _, coin := range coins {
		a.printf(client.Name(), "%-8s %s", coin, aurora.Bold(aurora.Yellow(formatBalance(balances[coin]))))
	}

	a.printf(client.Name(), "%s non-zero balances.", humanize.Comma(int64(len(coins))))

	return nil
}

func runBalance(ctx context.Context, a *app, args []string) error {
	var f marketFlags

	fs := newFlagSet("balance")
	f.register(fs, false)

	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := a.client(f.exchange)
	if err != nil {
		return err
	}

	balance, err := client.GetBalance(ctx, f.coin)
	if err != nil {
		return err
	}

	a.printf(client.Name(), "%s %s", strings.ToUpper(f.coin), aurora.Bold(aurora.Yellow(formatBalance(balance))))

	return nil
}

func runMarkets(ctx context.Context, a *app, args []string) error {
	var (
		f      marketFlags
		filter string
	)

	fs := newFlagSet("markets")
	fs.StringVar(&f.exchange, "exchange", "binance", "The exchange to talk to.")
	fs.StringVar(&filter, "filter", "", "Only list markets containing this text.")

	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := a.client(f.exchange)
	if err != nil {
		return err
	}

	markets, err := client.GetAvailableMarkets(ctx)
	if err != nil {
		return err
	}

	listed := 0

	for _, market := range markets {
		if filter != "" && !strings.Contains(exchange.CompactSymbol(market), exchange.CompactSymbol(filter)) {
			continue
		}

		fmt.Fprintln(a.out, market)
		listed++
	}

	a.printf(client.Name(), "Listed %s of %s markets.", humanize.Comma(int64(listed)), humanize.Comma(int64(len(markets))))

	return nil
}

func runPrice(ctx context.Context, a *app, args []string) error {
	var f marketFlags

	fs := newFlagSet("price")
	f.register(fs, true)

	if err := fs.Parse(args); err != nil {
		return err
	}

	side, err := f.marketSide()
	if err != nil {
		return err
	}

	client, err := a.client(f.exchange)
	if err != nil {
		return err
	}

	price, err := client.GetCoinPrice(ctx, f.coin, f.quote, side)
	if err != nil {
		return err
	}

	a.printf(client.Name(), "%s/%s %s: %s", strings.ToUpper(f.coin), strings.ToUpper(f.quote), side, aurora.Bold(aurora.Green(price)))

	return nil
}

func runPrices(ctx context.Context, a *app, args []string) error {
	var (
		f     marketFlags
		coins string
	)

	fs := newFlagSet("prices")
	f.register(fs, true)
	fs.StringVar(&coins, "coins", "BTC,ETH", "Comma separated coins to price.")

	if err := fs.Parse(args); err != nil {
		return err
	}

	side, err := f.marketSide()
	if err != nil {
		return err
	}

	client, err := a.client(f.exchange)
	if err != nil {
		return err
	}

	requested := strings.Split(coins, ",")
	for i := range requested {
		requested[i] = strings.TrimSpace(requested[i])
	}

	prices, err := client.GetCoinsPrices(ctx, requested, f.quote, side)
	if err != nil {
		return err
	}

	for _, coin := range requested {
		price, ok := prices[strings.ToUpper(coin)]
		if !ok {
			a.printf(client.Name(), "%-8s %s", strings.ToUpper(coin), aurora.Red("no market"))
			continue
		}

		a.printf(client.Name(), "%-8s %s", strings.ToUpper(coin), aurora.Bold(aurora.Green(price)))
	}

	return nil
}

func runBook(ctx context.Context, a *app, args []string) error {
	var (
		f     marketFlags
		depth int
	)

	fs := newFlagSet("book")
	f.register(fs, false)
	fs.IntVar(&depth, "depth", 10, "How many levels of each side to print.")

	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := a.client(f.exchange)
	if err != nil {
		return err
	}

	book, err := client.GetOrderBook(ctx, f.coin, f.quote)
	if err != nil {
		return err
	}

	for _, side := range []exchange.MarketSide{exchange.Ask, exchange.Bid} {
		levels := book.Side(side)
		if len(levels) > depth {
			levels = levels[:depth]
		}

		a.printf(client.Name(), "%s (%s levels)", side, humanize.Comma(int64(len(book.Side(side)))))

		for _, level := range levels {
			price := aurora.Green(level.Price)
			if side == exchange.Ask {
				price = aurora.Red(level.Price)
			}

			fmt.Fprintf(a.out, "  %s  %s\n", price, level.Amount)
		}
	}

	return nil
}

func runCandles(ctx context.Context, a *app, args []string) error {
	var f candleFlags

	fs := newFlagSet("candles")
	f.register(fs)

	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := f.request("")
	if err != nil {
		return err
	}

	client, err := a.client(f.exchange)
	if err != nil {
		return err
	}

	if req.Amount > 0 {
		candles, err := client.GetLastCandles(ctx, req.Coin, req.Quote, req.Interval, req.Amount)
		if err != nil {
			return err
		}

		return store.Write(a.out, candles)
	}

	if req.Start.IsZero() {
		return exchange.NewParameterError("amount", "provide an amount or a start time", req.Amount)
	}

	candles, err := client.GetCandles(ctx, req.Coin, req.Quote, req.Interval, req.Start, req.End)
	if err != nil {
		return err
	}

	return store.Write(a.out, candles)
}

func runDump(ctx context.Context, a *app, args []string) error {
	var (
		f    candleFlags
		path string
	)

	fs := newFlagSet("dump")
	f.register(fs)
	fs.StringVar(&path, "out", "candles.csv", "The CSV file to write.")

	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := f.request(path)
	if err != nil {
		return err
	}

	client, err := a.client(f.exchange)
	if err != nil {
		return err
	}

	candles, err := exchange.DumpMarketData(ctx, client, req)
	if err != nil {
		return err
	}

	size := "unknown size"
	if info, err := os.Stat(path); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}

	a.printf(client.Name(), "Wrote %s candles (%s) to %s.", aurora.Bold(humanize.Comma(int64(len(candles)))), size, path)

	return nil
}

func runLoad(_ context.Context, a *app, args []string) error {
	var path string

	fs := newFlagSet("load")
	fs.StringVar(&path, "in", "candles.csv", "The CSV file to read.")

	if err := fs.Parse(args); err != nil {
		return err
	}

	records, err := store.Load(path)
	if err != nil {
		return err
	}

	a.printf("store", "Loaded %s candles from %s.", aurora.Bold(humanize.Comma(int64(len(records)))), path)

	if len(records) == 0 {
		return nil
	}

	first := records[0].Candle()
	last := records[len(records)-1].Candle()

	a.printf("store", "First candle opened %s, last %s.", humanize.Time(time.Unix(first.Ts, 0)), humanize.Time(time.Unix(last.Ts, 0)))

	return nil
}

func runWatch(ctx context.Context, a *app, args []string) error {
	var (
		f           marketFlags
		every       time.Duration
		window      int
		metricsAddr string
	)

	fs := newFlagSet("watch")
	f.register(fs, true)
	fs.DurationVar(&every, "every", watch.DefaultEvery, "How often to poll the price.")
	fs.IntVar(&window, "window", watch.DefaultWindow, "How many quotes the moving average spans.")
	fs.StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090) while watching.")

	if err := fs.Parse(args); err != nil {
		return err
	}

	side, err := f.marketSide()
	if err != nil {
		return err
	}

	client, err := a.client(f.exchange)
	if err != nil {
		return err
	}

	watcher, err := watch.New(client, watch.Config{
		Coin:   f.coin,
		Quote:  f.quote,
		Side:   side,
		Every:  every,
		Window: window,
		Logger: a.log,
	})
	if err != nil {
		return err
	}

	if metricsAddr != "" && a.gatherer != nil {
		go func() {
			if err := metrics.Serve(ctx, metricsAddr, a.gatherer); err != nil {
				a.log.Errorw("metrics server failed", "addr", metricsAddr, "error", err)
			}
		}()

		a.printf(client.Name(), "Serving metrics on %s/metrics.", metricsAddr)
	}

	err = watcher.Run(ctx, func(q watch.Quote) {
		price := aurora.Bold(aurora.Yellow(q.Price.String()))

		switch {
		case !q.Warm(window):
		case q.Price.GreaterThan(q.Average):
			price = aurora.Bold(aurora.Green(q.Price.String()))
		case q.Price.LessThan(q.Average):
			price = aurora.Bold(aurora.Red(q.Price.String()))
		}

		a.printf(client.Name(), "%s %s (SMA%d %s)", q.At.Format(time.TimeOnly), price, window, q.Average.StringFixed(8))
	})

	a.printf(client.Name(), "Goodbye.")

	return err
}
