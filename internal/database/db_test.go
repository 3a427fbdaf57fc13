package database

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Billiken-Blueprint/Billiken-Blueprint/internal/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.Config{DBUser: "bb", DBPass: "pw", DBHost: "db", DBPort: "3306", DBName: "blueprint"})
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("parse %q: %v", dsn, err)
	}
	if mc.User != "bb" || mc.Passwd != "pw" || mc.Addr != "db:3306" || mc.DBName != "blueprint" {
		t.Fatalf("unexpected config %+v", mc)
	}
	if !mc.ParseTime {
		t.Fatalf("parseTime must be on")
	}
	if !strings.Contains(dsn, "charset=utf8mb4") {
		t.Fatalf("dsn %q lacks charset", dsn)
	}
}

func TestMigrateSQLiteIsIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := Migrate(ctx, db, DialectSQLite); err != nil {
			t.Fatalf("migrate run %d: %v", i+1, err)
		}
	}
	for _, table := range []string{"courses", "sections", "degrees", "students", "users", "refresh_tokens", "ratings"} {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}
}
