package storage

import "interview-bot/internal/aggregate"

// RowRecorder abstracts durable persistence of completed interview rows.
// LoadRows should return rows in the order they were appended.
// Implementations must be safe for concurrent use.
type RowRecorder interface {
	AppendRow(row aggregate.Row) error
	LoadRows() ([]aggregate.Row, error)
}
