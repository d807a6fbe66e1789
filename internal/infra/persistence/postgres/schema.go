package postgres

import (
	"context"
	"time"

	"ftpadmin/internal/domain/repository"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// The repositories never hardcode table or column names; everything goes
// through the config schema mapping, mirroring the table_*/field_*
// indirection of the admin tools this schema originates from. Row data is
// read through map[string]any and converted with the helpers below, since
// the column set is only known at runtime.

// prober implements the generalized existence probe over the mapped schema.
type prober struct {
	db *gorm.DB
}

// NewExistenceProber returns a repository.ExistenceProber backed by the
// given connection. Table and field names must come from the validated
// schema mapping.
func NewExistenceProber(db *gorm.DB) repository.ExistenceProber {
	return &prober{db: db}
}

func (p *prober) Exists(ctx context.Context, table, field string, value any) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table(table).
		Where(field+" = ?", value).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrapf(err, "existence probe on %s.%s failed", table, field)
	}

	return count > 0, nil
}

// scalarMax reads COALESCE(MAX(field), 0) from table.
func scalarMax(ctx context.Context, db *gorm.DB, table, field string) (int64, error) {
	var max int64
	row := db.WithContext(ctx).
		Table(table).
		Select("COALESCE(MAX(" + field + "), 0)").
		Row()
	if err := row.Scan(&max); err != nil {
		return 0, errors.Wrapf(err, "max(%s.%s) failed", table, field)
	}

	return max, nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case nil:
		return ""
	default:
		return ""
	}
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case uint64:
		return int64(t)
	case float64:
		return int64(t)
	default:
		return 0
	}
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "1" || t == "t" || t == "true"
	case []byte:
		return asBool(string(t))
	default:
		return asInt64(v) != 0
	}
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		return parseTimeString(t)
	case []byte:
		return parseTimeString(string(t))
	default:
		return time.Time{}
	}
}

func parseTimeString(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateTime, time.DateOnly} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}

	return time.Time{}
}

// boolFlag serializes the disabled flag the way the daemon schema stores
// it, as a 0/1 integer column.
func boolFlag(b bool) int16 {
	if b {
		return 1
	}

	return 0
}
