package port

import "time"

type Sink interface {
	// WriteReport prints a rendered report block with its generation time
	WriteReport(ts time.Time, body string) error
	// Normal newline
	NewLine() error
}
