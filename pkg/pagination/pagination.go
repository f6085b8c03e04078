// Package pagination implements keyset paging over lists ordered newest first
// by (created_at, id): the listing feed, wishlists and notifications.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Cursor is the sort key of the last row a client has seen.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Clamp maps non-positive limits to DefaultLimit and caps at MaxLimit.
func Clamp(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Encode renders the cursor as an opaque, URL-safe token.
func (c Cursor) Encode() string {
	raw := strconv.FormatInt(c.CreatedAt.UTC().UnixNano(), 10) + "." + c.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// Decode parses a token produced by Encode. A blank token means the first
// page and yields a nil cursor.
func Decode(token string) (*Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, invalid(err)
	}
	nanos, id, ok := strings.Cut(string(raw), ".")
	if !ok {
		return nil, invalid(fmt.Errorf("missing separator"))
	}
	ns, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return nil, invalid(err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, invalid(err)
	}
	return &Cursor{CreatedAt: time.Unix(0, ns).UTC(), ID: parsed}, nil
}

func invalid(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
}

// Keyset orders q newest first and, when cursor is set, restricts it to
// rows strictly older than the cursor. table qualifies the key columns for
// queries that join other tables.
func Keyset(q *gorm.DB, table string, cursor *Cursor) *gorm.DB {
	createdAt, id := "created_at", "id"
	if table != "" {
		createdAt, id = table+".created_at", table+".id"
	}
	if cursor != nil {
		q = q.Where("("+createdAt+" < ? OR ("+createdAt+" = ? AND "+id+" < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	return q.Order(createdAt + " DESC").Order(id + " DESC")
}

// Fetch is the row count to request: one more than the page so Split can
// tell whether another page exists.
func Fetch(limit int) int {
	return Clamp(limit) + 1
}

// Split trims rows fetched with Fetch(limit) to the page and returns the
// token for the next page, or "" on the last page.
func Split[T any](rows []T, limit int, key func(T) Cursor) ([]T, string) {
	limit = Clamp(limit)
	if len(rows) <= limit {
		return rows, ""
	}
	rows = rows[:limit]
	return rows, key(rows[limit-1]).Encode()
}
