package postgres

import (
	"context"
	"errors"
	"fmt"

	"devconnect/internal/models"
	"devconnect/internal/storage"

	"github.com/jackc/pgx/v5"
)

const profileColumns = `
	p.id, p.user_id, u.name, u.avatar_url,
	p.company, p.website, p.location, p.status, p.skills, p.bio, p.github_username,
	p.youtube, p.twitter, p.facebook, p.linkedin, p.instagram
`

func scanProfile(row pgx.Row) (models.Profile, error) {
	var p models.Profile

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.UserName,
		&p.UserAvatar,
		&p.Company,
		&p.Website,
		&p.Location,
		&p.Status,
		&p.Skills,
		&p.Bio,
		&p.GithubUsername,
		&p.Social.Youtube,
		&p.Social.Twitter,
		&p.Social.Facebook,
		&p.Social.Linkedin,
		&p.Social.Instagram,
	)

	return p, err
}

func (r *PostgresRepo) Profile(ctx context.Context, userID int64) (models.Profile, error) {
	const op = "storage.postgres.Profile"

	query := `
		SELECT ` + profileColumns + `
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1;
	`

	p, err := scanProfile(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Profile{}, storage.ErrProfileNotFound
		}

		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := r.loadSubRecords(ctx, &p); err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

func (r *PostgresRepo) Profiles(ctx context.Context) ([]models.Profile, error) {
	const op = "storage.postgres.Profiles"

	query := `
		SELECT ` + profileColumns + `
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.id;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var profiles []models.Profile

	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		profiles = append(profiles, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: %w", op, rows.Err())
	}

	for i := range profiles {
		if err := r.loadSubRecords(ctx, &profiles[i]); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return profiles, nil
}

// UpsertProfile creates the acting user's profile or overwrites its
// restricted fields; sub-records are untouched.
func (r *PostgresRepo) UpsertProfile(ctx context.Context, p models.Profile) (models.Profile, error) {
	const op = "storage.postgres.UpsertProfile"

	query := `
		INSERT INTO profiles (
			user_id, company, website, location, status, skills, bio, github_username,
			youtube, twitter, facebook, linkedin, instagram
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id) DO UPDATE SET
			company = EXCLUDED.company,
			website = EXCLUDED.website,
			location = EXCLUDED.location,
			status = EXCLUDED.status,
			skills = EXCLUDED.skills,
			bio = EXCLUDED.bio,
			github_username = EXCLUDED.github_username,
			youtube = EXCLUDED.youtube,
			twitter = EXCLUDED.twitter,
			facebook = EXCLUDED.facebook,
			linkedin = EXCLUDED.linkedin,
			instagram = EXCLUDED.instagram;
	`

	_, err := r.pool.Exec(ctx, query,
		p.UserID, p.Company, p.Website, p.Location, p.Status, p.Skills, p.Bio, p.GithubUsername,
		p.Social.Youtube, p.Social.Twitter, p.Social.Facebook, p.Social.Linkedin, p.Social.Instagram,
	)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	return r.Profile(ctx, p.UserID)
}

func (r *PostgresRepo) AddExperience(ctx context.Context, userID int64, exp models.Experience) (models.Profile, error) {
	const op = "storage.postgres.AddExperience"

	profileID, err := r.profileID(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}

	query := `
		INSERT INTO experience (profile_id, title, company, location, from_date, to_date, current, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

	_, err = r.pool.Exec(ctx, query,
		profileID, exp.Title, exp.Company, exp.Location, exp.From, exp.To, exp.Current, exp.Description,
	)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	return r.Profile(ctx, userID)
}

func (r *PostgresRepo) DeleteExperience(ctx context.Context, userID, expID int64) (models.Profile, error) {
	const op = "storage.postgres.DeleteExperience"

	profileID, err := r.profileID(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM experience WHERE id = $1 AND profile_id = $2`, expID, profileID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return models.Profile{}, storage.ErrExperienceNotFound
	}

	return r.Profile(ctx, userID)
}

func (r *PostgresRepo) AddEducation(ctx context.Context, userID int64, edu models.Education) (models.Profile, error) {
	const op = "storage.postgres.AddEducation"

	profileID, err := r.profileID(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}

	query := `
		INSERT INTO education (profile_id, school, degree, field_of_study, from_date, to_date, current, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

	_, err = r.pool.Exec(ctx, query,
		profileID, edu.School, edu.Degree, edu.FieldOfStudy, edu.From, edu.To, edu.Current, edu.Description,
	)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	return r.Profile(ctx, userID)
}

func (r *PostgresRepo) DeleteEducation(ctx context.Context, userID, eduID int64) (models.Profile, error) {
	const op = "storage.postgres.DeleteEducation"

	profileID, err := r.profileID(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM education WHERE id = $1 AND profile_id = $2`, eduID, profileID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return models.Profile{}, storage.ErrEducationNotFound
	}

	return r.Profile(ctx, userID)
}

func (r *PostgresRepo) profileID(ctx context.Context, userID int64) (int64, error) {
	var id int64

	err := r.pool.QueryRow(ctx, `SELECT id FROM profiles WHERE user_id = $1`, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, storage.ErrProfileNotFound
	}

	return id, err
}

// Sub-records come back newest-inserted first, matching the display order
// contract of the profile page.
func (r *PostgresRepo) loadSubRecords(ctx context.Context, p *models.Profile) error {
	expQuery := `
		SELECT id, title, company, location, from_date, to_date, current, description
		FROM experience
		WHERE profile_id = $1
		ORDER BY id DESC;
	`

	rows, err := r.pool.Query(ctx, expQuery, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	p.Experience = []models.Experience{}

	for rows.Next() {
		var e models.Experience
		if err := rows.Scan(&e.ID, &e.Title, &e.Company, &e.Location, &e.From, &e.To, &e.Current, &e.Description); err != nil {
			return err
		}
		p.Experience = append(p.Experience, e)
	}
	if rows.Err() != nil {
		return rows.Err()
	}

	eduQuery := `
		SELECT id, school, degree, field_of_study, from_date, to_date, current, description
		FROM education
		WHERE profile_id = $1
		ORDER BY id DESC;
	`

	rows, err = r.pool.Query(ctx, eduQuery, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	p.Education = []models.Education{}

	for rows.Next() {
		var e models.Education
		if err := rows.Scan(&e.ID, &e.School, &e.Degree, &e.FieldOfStudy, &e.From, &e.To, &e.Current, &e.Description); err != nil {
			return err
		}
		p.Education = append(p.Education, e)
	}

	return rows.Err()
}
