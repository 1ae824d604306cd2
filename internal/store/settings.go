package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/erazemk/kitreq/internal/model"
)

// Setting keys.
const (
	keyJWTSecret      = "jwt_secret"
	keyMasterPassword = "master_password_hash"
	keyEventName      = "event_name"
	keySurveyEnabled  = "survey_enabled"
	keyRequireLogin   = "require_login"
)

// GetJWTSecret retrieves the JWT secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		keyJWTSecret, candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt_secret: %w", err)
	}

	// Always read back (either our insert or the existing value).
	secret, err := getSetting(ctx, db, keyJWTSecret)
	if err != nil {
		return "", fmt.Errorf("querying jwt_secret: %w", err)
	}
	return secret, nil
}

// GetMasterPasswordHash returns the bcrypt hash guarding the reset
// operation, or "" if none was set.
func GetMasterPasswordHash(ctx context.Context, db *sql.DB) (string, error) {
	hash, err := getSetting(ctx, db, keyMasterPassword)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying master password: %w", err)
	}
	return hash, nil
}

// SetMasterPasswordHash replaces the master password hash.
func SetMasterPasswordHash(ctx context.Context, db *sql.DB, hash string) error {
	if err := putSetting(ctx, db, keyMasterPassword, hash); err != nil {
		return fmt.Errorf("storing master password: %w", err)
	}
	return nil
}

// GetSettings loads the runtime settings. Keys that were never saved keep
// their default values.
func GetSettings(ctx context.Context, db *sql.DB) (model.Settings, error) {
	s := model.DefaultSettings()

	rows, err := db.QueryContext(ctx,
		`SELECT key, value FROM settings WHERE key IN (?, ?, ?)`,
		keyEventName, keySurveyEnabled, keyRequireLogin,
	)
	if err != nil {
		return s, fmt.Errorf("loading settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return s, fmt.Errorf("scanning setting: %w", err)
		}
		switch key {
		case keyEventName:
			s.EventName = value
		case keySurveyEnabled:
			if s.SurveyEnabled, err = strconv.ParseBool(value); err != nil {
				return s, fmt.Errorf("parsing %s: %w", key, err)
			}
		case keyRequireLogin:
			if s.RequireLogin, err = strconv.ParseBool(value); err != nil {
				return s, fmt.Errorf("parsing %s: %w", key, err)
			}
		}
	}
	return s, rows.Err()
}

// SaveSettings stores every runtime setting in one transaction.
func SaveSettings(ctx context.Context, db *sql.DB, s model.Settings) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	values := map[string]string{
		keyEventName:     s.EventName,
		keySurveyEnabled: strconv.FormatBool(s.SurveyEnabled),
		keyRequireLogin:  strconv.FormatBool(s.RequireLogin),
	}
	for key, value := range values {
		if err := putSetting(ctx, tx, key, value); err != nil {
			return fmt.Errorf("storing %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing settings: %w", err)
	}
	return nil
}

func getSetting(ctx context.Context, q queryer, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	return value, err
}

func putSetting(ctx context.Context, db execer, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}
