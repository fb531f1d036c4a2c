package internal

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
)

// ErrStoreUnavailable marks a failure to open or reach one of the backup stores.
// It is fatal to the request that hit it; absence of rows is never this error.
var ErrStoreUnavailable = errors.New("store unavailable")

// StorePaths locates the three read-only SQLite stores pulled from an iPhone
// backup. The viewer never writes to any of them.
type StorePaths struct {
	Messages    string `toml:"messages"`     // sms.db
	Calls       string `toml:"calls"`        // CallHistory.storedata
	AddressBook string `toml:"address_book"` // AddressBook.sqlitedb
}

// openStore opens a backup store read-only. Connections are opened per request
// and closed when the request finishes; no pool is shared between requests.
func openStore(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStoreUnavailable, path, err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", ErrStoreUnavailable, path, err)
	}

	// Set busy timeout for better concurrent access
	if _, err = db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: set busy timeout on %s: %v", ErrStoreUnavailable, path, err)
	}

	return db, nil
}

// OpenMessageStore opens the messages database (sms.db).
func (p StorePaths) OpenMessageStore() (*sql.DB, error) {
	return openStore(p.Messages)
}

// OpenCallStore opens the call history database (CallHistory.storedata).
func (p StorePaths) OpenCallStore() (*sql.DB, error) {
	return openStore(p.Calls)
}

// OpenAddressBookStore opens the contacts database (AddressBook.sqlitedb).
func (p StorePaths) OpenAddressBookStore() (*sql.DB, error) {
	return openStore(p.AddressBook)
}

func closeStore(db *sql.DB, name string) {
	if err := db.Close(); err != nil {
		slog.Error("Error closing store", "store", name, "error", err)
	}
}
