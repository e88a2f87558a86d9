package evaluator

import (
	"database/sql"
	"strings"
	"time"
)

var databaseBuiltins = map[string]BuiltinFunction{
	"db_connect": builtinDBConnect,
	"db_execute": builtinDBExecute,
	"db_query":   builtinDBQuery,
	"db_close":   builtinDBClose,
}

// driverNames maps the names accepted by db_connect to database/sql drivers
var driverNames = map[string]string{
	"sqlite":     "sqlite",
	"sqlite3":    "sqlite",
	"postgres":   "postgres",
	"postgresql": "postgres",
	"mysql":      "mysql",
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// builtinDBConnect opens db_connect(driver, dsn). Connections to the same
// database share a handle, except in-memory SQLite databases, which are
// private to each call.
func builtinDBConnect(env *Environment, args ...Object) Object {
	if len(args) != 2 {
		return arityError("db_connect", 2, len(args))
	}
	name, ok := args[0].(*String)
	if !ok {
		return argError("db_connect", "a driver name", args[0])
	}
	dsn, ok := args[1].(*String)
	if !ok {
		return argError("db_connect", "a connection string", args[1])
	}
	driver, ok := driverNames[strings.ToLower(name.Value)]
	if !ok {
		return newError("DB-0001", map[string]any{"Driver": name.Value})
	}

	maxOpen := env.DBMaxOpen
	memory := driver == "sqlite" && isMemoryDSN(dsn.Value)
	if memory {
		// every connection to :memory: is a separate database
		maxOpen = 1
	}

	open := func() (*sql.DB, error) {
		db, err := sql.Open(driver, dsn.Value)
		if err != nil {
			return nil, err
		}
		if maxOpen > 0 {
			db.SetMaxOpenConns(maxOpen)
		}
		if err := db.PingContext(env.Context()); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	}

	conn := &DBConnection{Driver: driver, DSN: dsn.Value}
	var err error
	if memory {
		conn.DB, err = open()
	} else {
		conn.key = driver + "|" + dsn.Value
		conn.DB, err = dbPool.acquire(conn.key, open)
	}
	if err != nil {
		return newError("DB-0002", map[string]any{"Operation": "connect", "Reason": err.Error()})
	}
	return conn
}

// connArgs validates (connection, sql, [params]) arguments
func connArgs(fn string, args []Object) (*DBConnection, string, []any, *Error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, "", nil, arityError(fn, "2 or 3", len(args))
	}
	conn, ok := args[0].(*DBConnection)
	if !ok {
		return nil, "", nil, argError(fn, "a database connection", args[0])
	}
	query, ok := args[1].(*String)
	if !ok {
		return nil, "", nil, argError(fn, "an SQL string", args[1])
	}
	var params []any
	if len(args) == 3 {
		arr, ok := args[2].(*Array)
		if !ok {
			return nil, "", nil, argError(fn, "an array of parameters", args[2])
		}
		params = make([]any, len(arr.Elements))
		for i, e := range arr.Elements {
			params[i] = toSQLValue(e)
		}
	}
	return conn, query.Value, params, nil
}

func toSQLValue(obj Object) any {
	switch o := obj.(type) {
	case *Integer:
		return o.Value
	case *Float:
		return o.Value
	case *String:
		return o.Value
	case *Boolean:
		return o.Value
	case *Null:
		return nil
	}
	return obj.Inspect()
}

func fromSQLValue(v any) Object {
	switch v := v.(type) {
	case nil:
		return NULL
	case int64:
		return &Integer{Value: v}
	case float64:
		return &Float{Value: v}
	case bool:
		return nativeBool(v)
	case []byte:
		return &String{Value: string(v)}
	case string:
		return &String{Value: v}
	case time.Time:
		return &String{Value: v.Format(time.RFC3339)}
	}
	return NULL
}

// builtinDBExecute runs a statement and returns the number of rows affected
func builtinDBExecute(env *Environment, args ...Object) Object {
	conn, query, params, errObj := connArgs("db_execute", args)
	if errObj != nil {
		return errObj
	}
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if conn.closed {
		return newError("STATE-0003", nil)
	}

	res, err := conn.DB.ExecContext(env.Context(), query, params...)
	if err != nil {
		return newError("DB-0002", map[string]any{"Operation": "execute", "Reason": err.Error()})
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &Integer{Value: 0}
	}
	return &Integer{Value: n}
}

// builtinDBQuery runs a query and returns its rows as an array of dicts
// keyed by column name
func builtinDBQuery(env *Environment, args ...Object) Object {
	conn, query, params, errObj := connArgs("db_query", args)
	if errObj != nil {
		return errObj
	}
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if conn.closed {
		return newError("STATE-0003", nil)
	}

	rows, err := conn.DB.QueryContext(env.Context(), query, params...)
	if err != nil {
		return newError("DB-0002", map[string]any{"Operation": "query", "Reason": err.Error()})
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return newError("DB-0002", map[string]any{"Operation": "query", "Reason": err.Error()})
	}

	result := []Object{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return newError("DB-0002", map[string]any{"Operation": "query", "Reason": err.Error()})
		}
		row := NewDict()
		for i, col := range columns {
			row.Set(&String{Value: col}, fromSQLValue(values[i]))
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return newError("DB-0002", map[string]any{"Operation": "query", "Reason": err.Error()})
	}
	return &Array{Elements: result}
}

// builtinDBClose closes a connection. Closing twice is allowed.
func builtinDBClose(env *Environment, args ...Object) Object {
	if len(args) != 1 {
		return arityError("db_close", 1, len(args))
	}
	conn, ok := args[0].(*DBConnection)
	if !ok {
		return argError("db_close", "a database connection", args[0])
	}
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if conn.closed {
		return NULL
	}
	conn.closed = true

	var err error
	if conn.key != "" {
		err = dbPool.release(conn.key)
	} else {
		err = conn.DB.Close()
	}
	if err != nil {
		return newError("DB-0002", map[string]any{"Operation": "close", "Reason": err.Error()})
	}
	return NULL
}
