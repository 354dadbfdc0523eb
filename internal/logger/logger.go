package logger

import (
	"bufio"
	"fmt"
	"os"

	"gleipnir/internal/common"
)

// BookLogger appends book events to a file, one line per event. The
// terminal snapshot event is written verbatim.
type BookLogger struct {
	file   *os.File
	writer *bufio.Writer
	count  uint64
}

func New(path string) (*BookLogger, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create book event log: %w", err)
	}
	return &BookLogger{
		file:   f,
		writer: bufio.NewWriterSize(f, 64*1024),
	}, nil
}

// Log formats and appends one event.
func (l *BookLogger) Log(event common.BookEvent) error {
	var err error
	switch ev := event.(type) {
	case common.MatchEvent:
		_, err = fmt.Fprintf(l.writer, "MATCH,maker(%d),taker(%d),price(%d),qty(%d),ts(%d)\n",
			ev.Maker, ev.Taker, ev.Price, ev.Qty, ev.TS)
	case common.CancelEvent:
		_, err = fmt.Fprintf(l.writer, "CANCEL,id(%d),qty(%d),ts(%d)\n",
			ev.ID, ev.Qty, ev.TS)
	case common.InsertEvent:
		_, err = fmt.Fprintf(l.writer, "INSERT,id(%d),price(%d),qty(%d),ts(%d)\n",
			ev.ID, ev.Price, ev.Qty, ev.TS)
	case common.SnapshotEvent:
		_, err = l.writer.WriteString(ev.Text)
	}
	if err != nil {
		return fmt.Errorf("append book event: %w", err)
	}
	l.count++
	return nil
}

// Count is the number of events written so far.
func (l *BookLogger) Count() uint64 {
	return l.count
}

// Close flushes and closes the log file.
func (l *BookLogger) Close() error {
	if err := l.writer.Flush(); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}
