package internal

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// Test fixtures mirror the slices of the real iPhone backup schemas the viewer
// reads: ZCALLRECORD from CallHistory.storedata, the message/chat/handle join
// tables from sms.db, and ABPerson/ABMultiValue from AddressBook.sqlitedb.

func newCallStore(t *testing.T) (*sql.DB, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "CallHistory.storedata")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("Failed to open call store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE ZCALLRECORD (
			Z_PK INTEGER PRIMARY KEY AUTOINCREMENT,
			ZADDRESS TEXT,
			ZCALLTYPE INTEGER,
			ZDATE INTEGER,
			ZDURATION INTEGER,
			ZNAME TEXT,
			ZSERVICE_PROVIDER TEXT,
			ZISO_COUNTRY_CODE TEXT
		);
	`)
	if err != nil {
		t.Fatalf("Failed to create ZCALLRECORD: %v", err)
	}

	return db, path
}

func insertCall(t *testing.T, db *sql.DB, address string, callType int, date int64, duration int) {
	t.Helper()

	_, err := db.Exec(
		"INSERT INTO ZCALLRECORD (ZADDRESS, ZCALLTYPE, ZDATE, ZDURATION) VALUES (?, ?, ?, ?)",
		address, callType, date, duration,
	)
	if err != nil {
		t.Fatalf("Failed to insert call record: %v", err)
	}
}

func newMessageStore(t *testing.T) (*sql.DB, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sms.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("Failed to open message store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE message (
			ROWID INTEGER PRIMARY KEY AUTOINCREMENT,
			text TEXT,
			date INTEGER NOT NULL,
			is_from_me INTEGER NOT NULL DEFAULT 0,
			handle_id INTEGER
		);
		CREATE TABLE chat (
			ROWID INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_identifier TEXT
		);
		CREATE TABLE handle (
			ROWID INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT
		);
		CREATE TABLE chat_message_join (
			chat_id INTEGER,
			message_id INTEGER
		);
		CREATE TABLE chat_handle_join (
			chat_id INTEGER,
			handle_id INTEGER
		);
	`)
	if err != nil {
		t.Fatalf("Failed to create message schema: %v", err)
	}

	return db, path
}

func insertChat(t *testing.T, db *sql.DB, chatID int64, identifier string, handles ...string) {
	t.Helper()

	if _, err := db.Exec("INSERT INTO chat (ROWID, chat_identifier) VALUES (?, ?)", chatID, identifier); err != nil {
		t.Fatalf("Failed to insert chat: %v", err)
	}
	for _, handle := range handles {
		var handleRowID int64
		err := db.QueryRow("SELECT ROWID FROM handle WHERE id = ?", handle).Scan(&handleRowID)
		if err == sql.ErrNoRows {
			res, err := db.Exec("INSERT INTO handle (id) VALUES (?)", handle)
			if err != nil {
				t.Fatalf("Failed to insert handle: %v", err)
			}
			handleRowID, _ = res.LastInsertId()
		} else if err != nil {
			t.Fatalf("Failed to look up handle: %v", err)
		}
		if _, err := db.Exec("INSERT INTO chat_handle_join (chat_id, handle_id) VALUES (?, ?)", chatID, handleRowID); err != nil {
			t.Fatalf("Failed to insert chat_handle_join: %v", err)
		}
	}
}

// insertMessage adds a message to a chat. sender is the handle id string for
// incoming messages; pass "" for outgoing (is_from_me) messages.
func insertMessage(t *testing.T, db *sql.DB, chatID int64, text string, dateNS int64, fromMe bool, sender string) {
	t.Helper()

	var handleID interface{}
	if sender != "" {
		var rowID int64
		err := db.QueryRow("SELECT ROWID FROM handle WHERE id = ?", sender).Scan(&rowID)
		if err == sql.ErrNoRows {
			res, err := db.Exec("INSERT INTO handle (id) VALUES (?)", sender)
			if err != nil {
				t.Fatalf("Failed to insert handle: %v", err)
			}
			rowID, _ = res.LastInsertId()
		} else if err != nil {
			t.Fatalf("Failed to look up handle: %v", err)
		}
		handleID = rowID
	}

	fromMeInt := 0
	if fromMe {
		fromMeInt = 1
	}

	var textVal interface{}
	if text != "" {
		textVal = text
	}

	res, err := db.Exec(
		"INSERT INTO message (text, date, is_from_me, handle_id) VALUES (?, ?, ?, ?)",
		textVal, dateNS, fromMeInt, handleID,
	)
	if err != nil {
		t.Fatalf("Failed to insert message: %v", err)
	}

	messageID, _ := res.LastInsertId()
	if _, err := db.Exec("INSERT INTO chat_message_join (chat_id, message_id) VALUES (?, ?)", chatID, messageID); err != nil {
		t.Fatalf("Failed to insert chat_message_join: %v", err)
	}
}

func newAddressBook(t *testing.T) (*sql.DB, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "AddressBook.sqlitedb")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("Failed to open address book: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE ABPerson (
			ROWID INTEGER PRIMARY KEY AUTOINCREMENT,
			first TEXT,
			last TEXT
		);
		CREATE TABLE ABMultiValue (
			UID INTEGER PRIMARY KEY AUTOINCREMENT,
			record_id INTEGER,
			property INTEGER,
			value TEXT
		);
	`)
	if err != nil {
		t.Fatalf("Failed to create address book schema: %v", err)
	}

	return db, path
}

func insertContact(t *testing.T, db *sql.DB, first, last, phone string) {
	t.Helper()

	res, err := db.Exec("INSERT INTO ABPerson (first, last) VALUES (?, ?)", first, last)
	if err != nil {
		t.Fatalf("Failed to insert person: %v", err)
	}
	recordID, _ := res.LastInsertId()

	_, err = db.Exec(
		"INSERT INTO ABMultiValue (record_id, property, value) VALUES (?, 3, ?)",
		recordID, phone,
	)
	if err != nil {
		t.Fatalf("Failed to insert phone entry: %v", err)
	}
}
