package logs

// Span tags log records of one controller run.
type Span string

type spanKeyType struct{}

var SpanKey spanKeyType
