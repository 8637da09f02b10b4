//
// Package store persists candle series as CSV files and loads them back.
//
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lukehollenback/cryptox/kline"
)

const (
	Extension = ".csv"

	TsKey    = "ts"
	OpenKey  = "open"
	HighKey  = "high"
	LowKey   = "low"
	CloseKey = "close"
)

var (
	// Header is the fixed first row of every market data file.
	Header = []string{TsKey, OpenKey, HighKey, LowKey, CloseKey}

	// ErrExtension is returned for paths that do not end in .csv.
	ErrExtension = errors.New("market data files must have a " + Extension + " extension")
)

//
// Record is a candle as read back from disk. Every column, the timestamp included, is loaded as a
// float64, so a record is a widened Candle.
//
type Record struct {
	Ts    float64
	Open  float64
	High  float64
	Low   float64
	Close float64
}

//
// Candle narrows the record back into a Candle.
//
func (o Record) Candle() kline.Candle {
	return kline.Candle{
		Ts:    int64(o.Ts),
		Open:  o.Open,
		High:  o.High,
		Low:   o.Low,
		Close: o.Close,
	}
}

//
// Dump writes the candles to the file at path, replacing it if it exists. The header row is always
// written, so an empty series produces a header-only file.
//
func Dump(candles []kline.Candle, path string) (err error) {
	if !hasExtension(path) {
		return ErrExtension
	}

	//
	// Create the output file and make sure its handle is released no matter what happens.
	//
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	return Write(file, candles)
}

//
// Write renders the candles as CSV onto w.
//
func Write(w io.Writer, candles []kline.Candle) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return err
	}

	for _, c := range candles {
		row := []string{
			strconv.FormatInt(c.Ts, 10),
			formatFloat(c.Open),
			formatFloat(c.High),
			formatFloat(c.Low),
			formatFloat(c.Close),
		}

		if err := writer.Write(row); err != nil {
			return err
		}
	}

	//
	// Flush the CSV writer's buffer and surface anything that went wrong along the way.
	//
	writer.Flush()

	return writer.Error()
}

//
// Load parses a file previously created with Dump.
//
func Load(path string) ([]Record, error) {
	if !hasExtension(path) {
		return nil, ErrExtension
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Read(file)
}

//
// Read parses CSV market data from r. The first row is treated as the header and skipped.
//
func Read(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Header)

	records := make([]Record, 0)
	line := 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		line++

		if line == 1 {
			continue
		}

		record, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		records = append(records, record)
	}

	return records, nil
}

func parseRow(row []string) (Record, error) {
	var (
		record Record
		err    error
	)

	dst := []*float64{&record.Ts, &record.Open, &record.High, &record.Low, &record.Close}

	for i, p := range dst {
		*p, err = strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return Record{}, fmt.Errorf("column %s: %w", Header[i], err)
		}
	}

	return record, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func hasExtension(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Extension)
}
