package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/kitreq/internal/model"
)

const surveyColumns = `id, user_type, would_use_again, prefer_over_excel, feedback, created_at`

func scanSurvey(s rowScanner) (model.SurveyResponse, error) {
	var sr model.SurveyResponse
	err := s.Scan(&sr.ID, &sr.UserType, &sr.WouldUseAgain, &sr.PreferOverExcel, &sr.Feedback, &sr.CreatedAt)
	return sr, err
}

func insertSurvey(ctx context.Context, db execer, s model.SurveyResponse) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO surveys (`+surveyColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserType, s.WouldUseAgain, s.PreferOverExcel, s.Feedback, s.CreatedAt,
	)
	return err
}

// CreateSurvey stores a survey response.
func CreateSurvey(ctx context.Context, db *sql.DB, s model.SurveyResponse) (*model.SurveyResponse, error) {
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()

	if err := insertSurvey(ctx, db, s); err != nil {
		return nil, fmt.Errorf("creating survey response: %w", err)
	}
	return &s, nil
}

// ListSurveys returns all survey responses, oldest first.
func ListSurveys(ctx context.Context, db *sql.DB) ([]model.SurveyResponse, error) {
	return listSurveys(ctx, db)
}

func listSurveys(ctx context.Context, db rowsQueryer) ([]model.SurveyResponse, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+surveyColumns+` FROM surveys ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing surveys: %w", err)
	}
	defer rows.Close()

	var surveys []model.SurveyResponse
	for rows.Next() {
		s, err := scanSurvey(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning survey: %w", err)
		}
		surveys = append(surveys, s)
	}
	return surveys, rows.Err()
}
