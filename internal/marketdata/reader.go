package marketdata

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/chooser/internal/contracts"
)

// ReadMarketList reads a list file naming one market history file per line.
// Reading stops at the first empty line. Relative paths resolve against the
// list file's directory.
func ReadMarketList(path string) ([]*contracts.Market, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open market list: %w", err)
	}
	defer f.Close()

	baseDir := filepath.Dir(path)
	var markets []*contracts.Market

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			break
		}
		if !filepath.IsAbs(name) {
			name = filepath.Join(baseDir, name)
		}

		m, err := ReadMarketFile(name)
		if err != nil {
			return nil, err
		}
		markets = append(markets, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read market list %s: %w", path, err)
	}

	if len(markets) == 0 {
		return nil, contracts.NewInputError(path, 0, "market list names no market files")
	}

	return markets, nil
}

// MarketName derives the market name from a history file path: the base
// name without its extension.
func MarketName(path string) (string, error) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" {
		return "", contracts.NewInputError(path, 0, "market file name has no extension")
	}

	name := strings.TrimSuffix(base, ext)
	if name == "" {
		return "", contracts.NewInputError(path, 0, "market file name is empty")
	}
	if len(name) > contracts.MaxMarketNameLength {
		return "", contracts.NewInputError(path, 0, "market name %q is longer than %d characters",
			name, contracts.MaxMarketNameLength)
	}

	return name, nil
}

// ReadMarketFile reads one market history. Each line is
// "YYYYMMDD open [high [low [close]]]"; reading stops at the first empty line.
func ReadMarketFile(path string) (*contracts.Market, error) {
	name, err := MarketName(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open market file: %w", err)
	}
	defer f.Close()

	m := &contracts.Market{Name: name, Source: path}

	var prior time.Time
	lineNo := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			break
		}
		lineNo++

		bar, err := ParseRecord(line)
		if err != nil {
			return nil, contracts.NewInputError(path, lineNo, "%s", err.Error())
		}

		if !bar.Date.After(prior) {
			return nil, contracts.NewInputError(path, lineNo, "date failed to increase")
		}
		prior = bar.Date

		if err := ValidateBar(bar); err != nil {
			return nil, contracts.NewInputError(path, lineNo, "%s", err.Error())
		}

		m.Bars = append(m.Bars, bar)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read market file %s: %w", path, err)
	}

	if len(m.Bars) == 0 {
		return nil, contracts.NewInputError(path, 0, "market file has no records")
	}

	return m, nil
}

func isDateDelim(r rune) bool {
	return r == ' ' || r == ',' || r == '\t'
}

func isPriceDelim(r rune) bool {
	return isDateDelim(r) || r == '/'
}

// ParseRecord parses one history line. Missing high, low and close default
// to the open.
func ParseRecord(line string) (contracts.Bar, error) {
	line = strings.TrimLeftFunc(line, isDateDelim)
	end := strings.IndexFunc(line, isDateDelim)
	dateField, rest := line, ""
	if end >= 0 {
		dateField, rest = line[:end], line[end:]
	}

	date, err := ParseDate(dateField)
	if err != nil {
		return contracts.Bar{}, err
	}

	fields := strings.FieldsFunc(rest, isPriceDelim)
	if len(fields) == 0 {
		return contracts.Bar{}, fmt.Errorf("missing open price")
	}
	if len(fields) > 4 {
		fields = fields[:4]
	}

	prices := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return contracts.Bar{}, fmt.Errorf("invalid price %q", field)
		}
		prices[i] = v
	}

	bar := contracts.Bar{Date: date, Open: prices[0], High: prices[0], Low: prices[0], Close: prices[0]}
	if len(prices) > 1 {
		bar.High = prices[1]
	}
	if len(prices) > 2 {
		bar.Low = prices[2]
	}
	if len(prices) > 3 {
		bar.Close = prices[3]
	}

	return bar, nil
}

// ParseDate parses a YYYYMMDD field into a UTC date
func ParseDate(field string) (time.Time, error) {
	full, err := strconv.Atoi(field)
	if err != nil || full <= 0 {
		return time.Time{}, fmt.Errorf("invalid date %q", field)
	}

	year := full / 10000
	month := (full / 100) % 100
	day := full % 100

	if year < 1800 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid date %d", full)
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day {
		return time.Time{}, fmt.Errorf("invalid date %d", full)
	}

	return date, nil
}

// FormatDate renders a date as YYYYMMDD
func FormatDate(t time.Time) string {
	return t.Format("20060102")
}
