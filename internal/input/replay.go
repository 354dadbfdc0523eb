package input

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"gleipnir/internal/common"
)

// ReplayReader streams inbound orders from a recorded replay file.
// Malformed lines are skipped with a diagnostic; they are never fatal.
type ReplayReader struct {
	file    *os.File
	scanner *bufio.Scanner
	line    int
	skipped int
}

func NewReplayReader(path string) (*ReplayReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &ReplayReader{
		file:    f,
		scanner: scanner,
	}, nil
}

func (r *ReplayReader) Next() (common.Inbound, bool) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(r.scanner.Text())
		if text == "" {
			continue
		}
		event, err := ParseEvent(text)
		if err != nil {
			r.skipped++
			log.Warn().Err(err).Int("line", r.line).Msg("skipping malformed replay line")
			continue
		}
		return event, true
	}
	return nil, false
}

// Skipped is the number of lines dropped as malformed so far.
func (r *ReplayReader) Skipped() int {
	return r.skipped
}

func (r *ReplayReader) Close() error {
	return r.file.Close()
}

// ParseEvent decodes one replay line:
//
//	ADD,<order_id>,<B|A>,LIMIT,<price>,<qty>
//	ADD,<order_id>,<B|A>,MARKET,<qty>
//	CANCEL,<order_id>
func ParseEvent(line string) (common.Inbound, error) {
	parts := strings.Split(line, ",")

	switch parts[0] {
	case "ADD":
		if len(parts) < 5 {
			return nil, fmt.Errorf("short ADD line %q", line)
		}
		id, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("order id %q: %w", parts[1], err)
		}

		var side common.Side
		switch parts[2] {
		case "B":
			side = common.Buy
		case "A":
			side = common.Sell
		default:
			return nil, fmt.Errorf("unknown side tag %q", parts[2])
		}

		switch parts[3] {
		case "LIMIT":
			if len(parts) != 6 {
				return nil, fmt.Errorf("malformed LIMIT line %q", line)
			}
			price, err := strconv.ParseUint(parts[4], 10, 64)
			if err != nil || price == 0 {
				return nil, fmt.Errorf("limit price %q", parts[4])
			}
			qty, err := strconv.ParseUint(parts[5], 10, 32)
			if err != nil || qty == 0 {
				return nil, fmt.Errorf("limit qty %q", parts[5])
			}
			return common.LimitOrder{
				ID:    common.OrderID(id),
				Side:  side,
				Price: common.Price(price),
				Qty:   common.Qty(qty),
			}, nil

		case "MARKET":
			if len(parts) != 5 {
				return nil, fmt.Errorf("malformed MARKET line %q", line)
			}
			qty, err := strconv.ParseUint(parts[4], 10, 32)
			if err != nil || qty == 0 {
				return nil, fmt.Errorf("market qty %q", parts[4])
			}
			return common.MarketOrder{
				ID:   common.OrderID(id),
				Side: side,
				Qty:  common.Qty(qty),
			}, nil
		}
		return nil, fmt.Errorf("unknown ADD kind %q", parts[3])

	case "CANCEL":
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed CANCEL line %q", line)
		}
		id, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("order id %q: %w", parts[1], err)
		}
		return common.CancelOrder{ID: common.OrderID(id)}, nil
	}

	return nil, fmt.Errorf("unknown event kind %q", parts[0])
}
