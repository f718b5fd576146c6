package predictions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGRepo stores predictions in Postgres: patient_data holds the inputs and
// prediction_results the outcome.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts the patient row and its result in one transaction.
func (r *PGRepo) Create(ctx context.Context, p Prediction) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertPatient = `
INSERT INTO patient_data (
    id,
    pregnancies,
    glucose,
    blood_pressure,
    skin_thickness,
    insulin,
    bmi,
    diabetes_pedigree,
    age,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	f := p.Patient.Features
	if _, err = tx.ExecContext(ctx, insertPatient,
		p.Patient.ID,
		f.Pregnancies,
		f.Glucose,
		f.BloodPressure,
		f.SkinThickness,
		f.Insulin,
		f.BMI,
		f.DiabetesPedigree,
		f.Age,
		p.Patient.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}

	const insertResult = `
INSERT INTO prediction_results (id, patient_id, prediction, probability, created_at)
VALUES ($1, $2, $3, $4, $5)`
	if _, err = tx.ExecContext(ctx, insertResult, p.ID, p.Patient.ID, p.Diabetic, p.Probability, p.CreatedAt); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const selectPrediction = `
SELECT r.id, r.prediction, r.probability, r.created_at,
       p.id, p.pregnancies, p.glucose, p.blood_pressure, p.skin_thickness,
       p.insulin, p.bmi, p.diabetes_pedigree, p.age, p.created_at
FROM prediction_results r
JOIN patient_data p ON p.id = r.patient_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrediction(row rowScanner) (Prediction, error) {
	var out Prediction
	f := &out.Patient.Features
	err := row.Scan(
		&out.ID,
		&out.Diabetic,
		&out.Probability,
		&out.CreatedAt,
		&out.Patient.ID,
		&f.Pregnancies,
		&f.Glucose,
		&f.BloodPressure,
		&f.SkinThickness,
		&f.Insulin,
		&f.BMI,
		&f.DiabetesPedigree,
		&f.Age,
		&out.Patient.CreatedAt,
	)
	return out, err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Prediction, error) {
	p, err := scanPrediction(r.DB.QueryRowContext(ctx, selectPrediction+"\nWHERE r.id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Prediction{}, ErrNotFound
		}
		return Prediction{}, err
	}
	return p, nil
}

// ListRecent returns up to limit predictions, newest first.
func (r *PGRepo) ListRecent(ctx context.Context, limit int) ([]Prediction, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := r.DB.QueryContext(ctx, selectPrediction+"\nORDER BY r.created_at DESC, r.id DESC\nLIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Prediction{}
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ Repo = (*PGRepo)(nil)
