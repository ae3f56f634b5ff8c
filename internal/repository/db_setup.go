package repository

import "database/sql"

// CreateTableIfNotExists brings up the schema. Column sizes mirror the
// model constraints (username/title 50, description 255, password hash
// up to the bcrypt output length) and assignment is nullable by design.
func CreateTableIfNotExists(db *sql.DB) error {
	query := `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    username VARCHAR(50) NOT NULL UNIQUE,
    password VARCHAR(1024) NOT NULL,
    role VARCHAR(16) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
    id SERIAL PRIMARY KEY,
    title VARCHAR(50) NOT NULL,
    description VARCHAR(255) NOT NULL,
    status VARCHAR(16) NOT NULL,
    created_by INT NOT NULL REFERENCES users (id),
    assigned_to INT REFERENCES users (id),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	_, err := db.Exec(query)
	return err
}

// DropTables removes everything; used by the test harness to leave the
// database empty after a run.
func DropTables(db *sql.DB) error {
	query := `
DROP TABLE IF EXISTS tasks;
DROP TABLE IF EXISTS users;
`
	_, err := db.Exec(query)
	return err
}
