package evaluator

// Database driver imports for side-effect registration with database/sql.
// These drivers back db_connect("sqlite"), db_connect("postgres") and
// db_connect("mysql").

import (
	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver, registered as "sqlite"
)
