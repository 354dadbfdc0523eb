package input

import (
	"bufio"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"gleipnir/internal/common"
)

// ReplayWriter records an inbound stream in the replay file format so a
// generated run can be replayed bit-for-bit later.
type ReplayWriter struct {
	file   *os.File
	writer *bufio.Writer
}

func NewReplayWriter(path string) (*ReplayWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create replay file: %w", err)
	}
	return &ReplayWriter{
		file:   f,
		writer: bufio.NewWriterSize(f, 64*1024),
	}, nil
}

func (w *ReplayWriter) Write(event common.Inbound) error {
	var err error
	switch order := event.(type) {
	case common.LimitOrder:
		_, err = fmt.Fprintf(w.writer, "ADD,%d,%s,LIMIT,%d,%d\n",
			order.ID, order.Side.Tag(), order.Price, order.Qty)
	case common.MarketOrder:
		_, err = fmt.Fprintf(w.writer, "ADD,%d,%s,MARKET,%d\n",
			order.ID, order.Side.Tag(), order.Qty)
	case common.CancelOrder:
		_, err = fmt.Fprintf(w.writer, "CANCEL,%d\n", order.ID)
	}
	return err
}

func (w *ReplayWriter) Close() error {
	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// RecordingSource passes a source through unchanged while writing every
// event it yields to a replay file.
type RecordingSource struct {
	source Source
	writer *ReplayWriter
}

func NewRecordingSource(source Source, writer *ReplayWriter) *RecordingSource {
	return &RecordingSource{
		source: source,
		writer: writer,
	}
}

func (s *RecordingSource) Next() (common.Inbound, bool) {
	event, ok := s.source.Next()
	if !ok {
		return nil, false
	}
	if err := s.writer.Write(event); err != nil {
		log.Error().Err(err).Msg("unable to record replay event")
	}
	return event, true
}
