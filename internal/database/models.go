package database

import (
	"time"

	"github.com/uptrace/bun"
)

// ReplacementRecord is one clipboard rewrite performed by the monitor.
type ReplacementRecord struct {
	bun.BaseModel `bun:"table:replacement_records"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	Original     string    `bun:"original,notnull" json:"original"`
	Result       string    `bun:"result,notnull" json:"result"`
	Replacements int       `bun:"replacements,notnull" json:"replacements"`
	Size         int       `bun:"size,notnull" json:"size"`
	Hash         string    `bun:"hash,unique,notnull" json:"hash"`
	Timestamp    time.Time `bun:"timestamp,notnull,default:current_timestamp" json:"timestamp"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}
