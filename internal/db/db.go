package db

import (
	"log"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Connect opens the archive database. A DSN containing a tcp address is
// treated as MySQL, anything else as an SQLite file path.
func Connect(dsn string) *gorm.DB {
	var (
		conn *gorm.DB
		err  error
	)
	if strings.Contains(dsn, "@tcp(") {
		conn, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	} else {
		conn, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("db: connect %q: %v", dsn, err)
	}
	return conn
}
