package sqlite

import (
	"fmt"
	"sync/atomic"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open creates a GORM *DB backed by a SQLite file.
func Open(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

var memCounter int64

// OpenMemory creates a private in-memory database. Each call gets its own
// schema, so parallel tests do not see each other's data.
func OpenMemory() (*gorm.DB, error) {
	n := atomic.AddInt64(&memCounter, 1)
	dsn := fmt.Sprintf("file:mem%d?mode=memory&cache=shared", n)
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}
