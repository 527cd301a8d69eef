package console

import (
	"fmt"
	"io"
	"os"
	"time"

	"dcareport/internal/application/port"
)

type Sink struct {
	out io.Writer
}

func NewSink() port.Sink { return &Sink{out: os.Stdout} }

// NewWriterSink writes to w instead of stdout.
func NewWriterSink(w io.Writer) port.Sink { return &Sink{out: w} }

// 先打印生成时间，再打印报表
func (s *Sink) WriteReport(ts time.Time, body string) error {
	if _, err := fmt.Fprintf(s.out, "%s\n", ts.Format("2006-01-02 15:04:05")); err != nil {
		return err
	}
	_, err := fmt.Fprint(s.out, body)
	return err
}

func (s *Sink) NewLine() error {
	_, err := fmt.Fprint(s.out, "\n")
	return err
}
