package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/agentportal/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateDraftsTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS portal_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL UNIQUE,
		token TEXT NOT NULL,
		user_agent TEXT,
		client_ip TEXT,
		remember_me BOOLEAN DEFAULT FALSE,
		expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS drafts (
		draft_key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		current_step INTEGER NOT NULL DEFAULT 1,
		saved_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		agent_name TEXT NOT NULL,
		agent_role TEXT NOT NULL,
		mls_number TEXT,
		address TEXT,
		closing_date TEXT,
		payload TEXT NOT NULL,
		submitted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateDraftsTable adds columns that older portal databases are missing.
func migrateDraftsTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='drafts'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			if logger.L != nil {
				logger.L.Info("'drafts' table does not exist, no migration needed as table will be created.")
			} else {
				stdlog.Println("'drafts' table does not exist, no migration needed as table will be created.")
			}
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'drafts' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'drafts' table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(drafts)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'drafts'", "error", err)
		} else {
			stdlog.Printf("Error querying table schema for 'drafts': %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}

		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'drafts'", "error", err)
			} else {
				stdlog.Printf("Error scanning column info for 'drafts': %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'drafts'", "error", err)
		} else {
			stdlog.Printf("Error iterating over column info for 'drafts': %v", err)
		}
		return
	}

	if _, ok := columnExists["current_step"]; !ok {
		_, err := DB.Exec("ALTER TABLE drafts ADD COLUMN current_step INTEGER NOT NULL DEFAULT 1")
		if err != nil {
			logger.L.Error("Error adding 'current_step' column to 'drafts' table", "error", err)
		} else {
			logger.L.Info("Added 'current_step' column to 'drafts' table")
		}
	}
}
