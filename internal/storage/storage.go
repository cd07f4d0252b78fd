package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"daily-bible-bot/internal/models"
)

//go:embed schema.sql
var ddl embed.FS

type DB struct{ *sql.DB }

const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// dsn appends the connection pragmas to a plain path or a file: URI.
func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + pragmas
	}
	return path + "?" + pragmas
}

func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite has a single writer
	db.SetMaxOpenConns(1)

	if err = migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &DB{db}, nil
}

func migrate(db *sql.DB) error {
	b, err := ddl.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(string(b))
	return err
}

// ClearData removes everything stored about a user.
func (d *DB) ClearData(userID int64) error {
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tables := []string{
		"user_progress",
		"user_states",
		"users",
	}
	for _, tbl := range tables {
		if _, err := tx.Exec(
			fmt.Sprintf("DELETE FROM %s WHERE user_id = ?", tbl),
			userID,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ---------- users -----------------------------------------------------------

// UpsertUser creates the user or replaces every field of an existing one,
// resetting current_day to 1.
func (d *DB) UpsertUser(u *models.User) error {
	if u.CreatedAt == 0 {
		u.CreatedAt = time.Now().Unix()
	}
	u.CurrentDay = 1

	_, err := d.Exec(`
        INSERT INTO users (user_id, chat_id, username, first_name, plan_key,
                           start_date, current_day, translation, created_at)
        VALUES (?,?,?,?,?,?,1,?,?)
        ON CONFLICT(user_id) DO UPDATE SET chat_id=excluded.chat_id,
            username=excluded.username,
            first_name=excluded.first_name,
            plan_key=excluded.plan_key,
            start_date=excluded.start_date,
            current_day=1,
            translation=excluded.translation
    `, u.UserID, u.ChatID, u.Username, u.FirstName, u.PlanKey,
		u.StartDate, string(u.Translation), u.CreatedAt)
	return err
}

const userColumns = `user_id, chat_id, username, first_name, plan_key,
        start_date, current_day, translation, created_at`

func scanUser(s interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	var tr string
	err := s.Scan(&u.UserID, &u.ChatID, &u.Username, &u.FirstName, &u.PlanKey,
		&u.StartDate, &u.CurrentDay, &tr, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.Translation = models.Translation(tr)
	return &u, nil
}

// GetUser returns nil, nil when the user is not registered.
func (d *DB) GetUser(userID int64) (*models.User, error) {
	u, err := scanUser(d.QueryRow(`SELECT `+userColumns+` FROM users WHERE user_id=?`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (d *DB) ListUsers() ([]models.User, error) {
	rows, err := d.Query(`SELECT ` + userColumns + ` FROM users ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *u)
	}
	return res, rows.Err()
}

// ---------- progress --------------------------------------------------------

// GetProgress returns nil, nil when nothing was delivered on date.
func (d *DB) GetProgress(userID int64, date string) (*models.ProgressRecord, error) {
	var rec models.ProgressRecord
	err := d.QueryRow(`
        SELECT user_id, date, day, book, chapter, reference, completed
        FROM user_progress WHERE user_id=? AND date=?`, userID, date,
	).Scan(&rec.UserID, &rec.Date, &rec.Day, &rec.Book, &rec.Chapter, &rec.Reference, &rec.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListProgress returns the delivery history of a user, newest first.
func (d *DB) ListProgress(userID int64, limit int) ([]models.ProgressRecord, error) {
	rows, err := d.Query(`
        SELECT user_id, date, day, book, chapter, reference, completed
        FROM user_progress WHERE user_id=?
        ORDER BY date DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []models.ProgressRecord
	for rows.Next() {
		var rec models.ProgressRecord
		if err := rows.Scan(&rec.UserID, &rec.Date, &rec.Day, &rec.Book,
			&rec.Chapter, &rec.Reference, &rec.Completed); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// CommitReading records the delivery of rec.Day on rec.Date and advances
// the user's current_day to rec.Day+1 in one transaction. It writes nothing
// and returns false when a record for that date already exists or the user
// is not on rec.Day.
func (d *DB) CommitReading(rec *models.ProgressRecord) (bool, error) {
	tx, err := d.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(`SELECT 1 FROM user_progress WHERE user_id=? AND date=?`,
		rec.UserID, rec.Date).Scan(&exists)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return false, err
	}

	res, err := tx.Exec(`UPDATE users SET current_day = ? WHERE user_id = ? AND current_day = ?`,
		rec.Day+1, rec.UserID, rec.Day)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return false, err
	}

	if _, err := tx.Exec(`
        INSERT INTO user_progress (user_id, date, day, book, chapter, reference, completed)
        VALUES (?,?,?,?,?,?,1)
    `, rec.UserID, rec.Date, rec.Day, rec.Book, rec.Chapter, rec.Reference); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	rec.Completed = true
	return true, nil
}

// ---------- conversation state (fsm) ----------------------------------------

func (d *DB) SetConversation(c *models.Conversation) error {
	_, err := d.Exec(`
        INSERT INTO user_states(user_id, state, plan_key) VALUES (?,?,?)
        ON CONFLICT(user_id) DO UPDATE SET state=excluded.state, plan_key=excluded.plan_key`,
		c.UserID, string(c.State), c.PlanKey)
	return err
}

// GetConversation returns an idle conversation when none is stored.
func (d *DB) GetConversation(userID int64) (*models.Conversation, error) {
	c := models.Conversation{UserID: userID}
	var st string
	err := d.QueryRow(`SELECT state, plan_key FROM user_states WHERE user_id=?`, userID).
		Scan(&st, &c.PlanKey)
	if errors.Is(err, sql.ErrNoRows) {
		return &c, nil
	}
	if err != nil {
		return nil, err
	}
	c.State = models.State(st)
	return &c, nil
}

func (d *DB) ClearConversation(userID int64) error {
	_, err := d.Exec(`DELETE FROM user_states WHERE user_id=?`, userID)
	return err
}
