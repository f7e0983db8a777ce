package postgres

import (
	"context"
	"errors"
	"fmt"

	"devconnect/internal/models"
	"devconnect/internal/storage"

	"github.com/jackc/pgx/v5"
)

func (r *PostgresRepo) SavePost(ctx context.Context, post models.Post) (models.Post, error) {
	const op = "storage.postgres.SavePost"

	query := `
		INSERT INTO posts (user_id, text, name, avatar)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at;
	`

	err := r.pool.QueryRow(ctx, query, post.UserID, post.Text, post.Name, post.Avatar).
		Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return models.Post{}, fmt.Errorf("%s: %w", op, err)
	}

	post.Likes = []models.Like{}
	post.Comments = []models.Comment{}

	return post, nil
}

func (r *PostgresRepo) Post(ctx context.Context, id int64) (models.Post, error) {
	const op = "storage.postgres.Post"

	query := `
		SELECT id, user_id, text, name, avatar, created_at
		FROM posts
		WHERE id = $1;
	`

	var p models.Post

	err := r.pool.QueryRow(ctx, query, id).
		Scan(&p.ID, &p.UserID, &p.Text, &p.Name, &p.Avatar, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Post{}, storage.ErrPostNotFound
		}

		return models.Post{}, fmt.Errorf("%s: %w", op, err)
	}

	if p.Likes, err = r.likes(ctx, id); err != nil {
		return models.Post{}, fmt.Errorf("%s: %w", op, err)
	}
	if p.Comments, err = r.comments(ctx, id); err != nil {
		return models.Post{}, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

func (r *PostgresRepo) Posts(ctx context.Context) ([]models.Post, error) {
	const op = "storage.postgres.Posts"

	query := `
		SELECT id, user_id, text, name, avatar, created_at
		FROM posts
		ORDER BY created_at DESC, id DESC;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	posts := []models.Post{}

	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Text, &p.Name, &p.Avatar, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		posts = append(posts, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: %w", op, rows.Err())
	}

	for i := range posts {
		if posts[i].Likes, err = r.likes(ctx, posts[i].ID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if posts[i].Comments, err = r.comments(ctx, posts[i].ID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return posts, nil
}

func (r *PostgresRepo) DeletePost(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeletePost"

	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrPostNotFound
	}

	return nil
}

// AddLike inserts at most one like per (post, user); the primary key decides
// concurrent attempts and the loser maps to ErrAlreadyLiked.
func (r *PostgresRepo) AddLike(ctx context.Context, postID, userID int64) ([]models.Like, error) {
	const op = "storage.postgres.AddLike"

	query := `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1, $2);
	`

	if _, err := r.pool.Exec(ctx, query, postID, userID); err != nil {
		switch pgErrCode(err) {
		case "23505":
			return nil, storage.ErrAlreadyLiked
		case "23503":
			return nil, storage.ErrPostNotFound
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r.likes(ctx, postID)
}

// RemoveLike removes the like owned by the acting user.
func (r *PostgresRepo) RemoveLike(ctx context.Context, postID, userID int64) ([]models.Like, error) {
	const op = "storage.postgres.RemoveLike"

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, storage.ErrNotLiked
	}

	return r.likes(ctx, postID)
}

func (r *PostgresRepo) AddComment(ctx context.Context, postID int64, comment models.Comment) ([]models.Comment, error) {
	const op = "storage.postgres.AddComment"

	query := `
		INSERT INTO post_comments (post_id, user_id, text, name, avatar)
		VALUES ($1, $2, $3, $4, $5);
	`

	if _, err := r.pool.Exec(ctx, query, postID, comment.UserID, comment.Text, comment.Name, comment.Avatar); err != nil {
		if pgErrCode(err) == "23503" {
			return nil, storage.ErrPostNotFound
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return r.comments(ctx, postID)
}

func (r *PostgresRepo) Comment(ctx context.Context, postID, commentID int64) (models.Comment, error) {
	const op = "storage.postgres.Comment"

	query := `
		SELECT id, user_id, text, name, avatar, created_at
		FROM post_comments
		WHERE id = $1 AND post_id = $2;
	`

	var c models.Comment

	err := r.pool.QueryRow(ctx, query, commentID, postID).
		Scan(&c.ID, &c.UserID, &c.Text, &c.Name, &c.Avatar, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Comment{}, storage.ErrCommentNotFound
		}

		return models.Comment{}, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

func (r *PostgresRepo) DeleteComment(ctx context.Context, postID, commentID int64) ([]models.Comment, error) {
	const op = "storage.postgres.DeleteComment"

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM post_comments WHERE id = $1 AND post_id = $2`, commentID, postID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, storage.ErrCommentNotFound
	}

	return r.comments(ctx, postID)
}

func (r *PostgresRepo) likes(ctx context.Context, postID int64) ([]models.Like, error) {
	query := `
		SELECT user_id
		FROM post_likes
		WHERE post_id = $1
		ORDER BY created_at DESC;
	`

	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	likes := []models.Like{}

	for rows.Next() {
		var l models.Like
		if err := rows.Scan(&l.UserID); err != nil {
			return nil, err
		}
		likes = append(likes, l)
	}

	return likes, rows.Err()
}

func (r *PostgresRepo) comments(ctx context.Context, postID int64) ([]models.Comment, error) {
	query := `
		SELECT id, user_id, text, name, avatar, created_at
		FROM post_comments
		WHERE post_id = $1
		ORDER BY id DESC;
	`

	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.Comment{}

	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.UserID, &c.Text, &c.Name, &c.Avatar, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}
