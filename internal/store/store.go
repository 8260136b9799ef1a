package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"outreach/internal/content"
)

// ContentStore is the persistence boundary for drafts. One table per
// platform, serial integer IDs assigned by the database. Inserts are
// append-only; racing runs inserting the same draft twice is tolerated.
type ContentStore struct {
	db *sql.DB
}

func New(db *sql.DB) *ContentStore {
	return &ContentStore{db: db}
}

var errUnavailable = errors.New("content store unavailable")

// ListLinkedIn returns all LinkedIn drafts. Rows missing a title or body
// are treated as corrupt and skipped, not errored.
func (s *ContentStore) ListLinkedIn(ctx context.Context) ([]content.LinkedInPost, error) {
	if s == nil || s.db == nil {
		return nil, errUnavailable
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, post, status, post_date
		FROM linkedin_posts
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list linkedin posts: %w", err)
	}
	defer rows.Close()

	var posts []content.LinkedInPost
	for rows.Next() {
		var post content.LinkedInPost
		var title, body sql.NullString
		var status sql.NullString
		var postAt sql.NullTime
		if err := rows.Scan(&post.ID, &title, &body, &status, &postAt); err != nil {
			return nil, fmt.Errorf("scan linkedin post: %w", err)
		}
		if !title.Valid || title.String == "" || !body.Valid || body.String == "" {
			continue
		}
		post.Title = title.String
		post.Body = body.String
		post.Status = statusOrPosted(status)
		if postAt.Valid {
			t := postAt.Time
			post.PostAt = &t
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate linkedin posts: %w", err)
	}
	return posts, nil
}

func (s *ContentStore) GetLinkedIn(ctx context.Context, id int64) (content.LinkedInPost, error) {
	if s == nil || s.db == nil {
		return content.LinkedInPost{}, errUnavailable
	}
	var post content.LinkedInPost
	var status sql.NullString
	var postAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, post, status, post_date
		FROM linkedin_posts
		WHERE id = $1
	`, id).Scan(&post.ID, &post.Title, &post.Body, &status, &postAt)
	if err != nil {
		return content.LinkedInPost{}, fmt.Errorf("get linkedin post %d: %w", id, err)
	}
	post.Status = statusOrPosted(status)
	if postAt.Valid {
		t := postAt.Time
		post.PostAt = &t
	}
	return post, nil
}

func (s *ContentStore) InsertLinkedIn(ctx context.Context, posts []content.LinkedInPost) error {
	if s == nil || s.db == nil {
		return errUnavailable
	}
	for _, post := range posts {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO linkedin_posts (title, post, status, post_date, created_at)
			VALUES ($1, $2, $3, $4, NOW())
		`, post.Title, post.Body, string(post.Status), post.PostAt)
		if err != nil {
			return fmt.Errorf("insert linkedin post: %w", err)
		}
	}
	return nil
}

func (s *ContentStore) UpdateLinkedInStatus(ctx context.Context, id int64, status content.Status) error {
	return s.updateStatus(ctx, "linkedin_posts", id, status)
}

func (s *ContentStore) DeleteLinkedIn(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "linkedin_posts", id)
}

// ListTwitter returns all tweet drafts, skipping rows with an empty body.
func (s *ContentStore) ListTwitter(ctx context.Context) ([]content.TwitterPost, error) {
	if s == nil || s.db == nil {
		return nil, errUnavailable
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, post, status, post_date
		FROM twitter_posts
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list twitter posts: %w", err)
	}
	defer rows.Close()

	var posts []content.TwitterPost
	for rows.Next() {
		var post content.TwitterPost
		var body, status sql.NullString
		var postAt sql.NullTime
		if err := rows.Scan(&post.ID, &body, &status, &postAt); err != nil {
			return nil, fmt.Errorf("scan twitter post: %w", err)
		}
		if !body.Valid || body.String == "" {
			continue
		}
		post.Body = body.String
		post.Status = statusOrPosted(status)
		if postAt.Valid {
			t := postAt.Time
			post.PostAt = &t
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate twitter posts: %w", err)
	}
	return posts, nil
}

func (s *ContentStore) GetTwitter(ctx context.Context, id int64) (content.TwitterPost, error) {
	if s == nil || s.db == nil {
		return content.TwitterPost{}, errUnavailable
	}
	var post content.TwitterPost
	var status sql.NullString
	var postAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, post, status, post_date
		FROM twitter_posts
		WHERE id = $1
	`, id).Scan(&post.ID, &post.Body, &status, &postAt)
	if err != nil {
		return content.TwitterPost{}, fmt.Errorf("get twitter post %d: %w", id, err)
	}
	post.Status = statusOrPosted(status)
	if postAt.Valid {
		t := postAt.Time
		post.PostAt = &t
	}
	return post, nil
}

func (s *ContentStore) InsertTwitter(ctx context.Context, posts []content.TwitterPost) error {
	if s == nil || s.db == nil {
		return errUnavailable
	}
	for _, post := range posts {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO twitter_posts (post, status, post_date, created_at)
			VALUES ($1, $2, $3, NOW())
		`, post.Body, string(post.Status), post.PostAt)
		if err != nil {
			return fmt.Errorf("insert twitter post: %w", err)
		}
	}
	return nil
}

func (s *ContentStore) UpdateTwitterStatus(ctx context.Context, id int64, status content.Status) error {
	return s.updateStatus(ctx, "twitter_posts", id, status)
}

func (s *ContentStore) DeleteTwitter(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "twitter_posts", id)
}

// ListYouTube returns all video description drafts, skipping rows
// missing a title, description, or video URL.
func (s *ContentStore) ListYouTube(ctx context.Context) ([]content.YouTubePost, error) {
	if s == nil || s.db == nil {
		return nil, errUnavailable
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, video_url, status, post_date
		FROM youtube_posts
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list youtube posts: %w", err)
	}
	defer rows.Close()

	var posts []content.YouTubePost
	for rows.Next() {
		var post content.YouTubePost
		var title, description, videoURL, status sql.NullString
		var postAt sql.NullTime
		if err := rows.Scan(&post.ID, &title, &description, &videoURL, &status, &postAt); err != nil {
			return nil, fmt.Errorf("scan youtube post: %w", err)
		}
		if !title.Valid || title.String == "" ||
			!description.Valid || description.String == "" ||
			!videoURL.Valid || videoURL.String == "" {
			continue
		}
		post.Title = title.String
		post.Description = description.String
		post.VideoURL = videoURL.String
		post.Status = statusOrPosted(status)
		if postAt.Valid {
			t := postAt.Time
			post.PostAt = &t
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate youtube posts: %w", err)
	}
	return posts, nil
}

func (s *ContentStore) GetYouTube(ctx context.Context, id int64) (content.YouTubePost, error) {
	if s == nil || s.db == nil {
		return content.YouTubePost{}, errUnavailable
	}
	var post content.YouTubePost
	var status sql.NullString
	var postAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, video_url, status, post_date
		FROM youtube_posts
		WHERE id = $1
	`, id).Scan(&post.ID, &post.Title, &post.Description, &post.VideoURL, &status, &postAt)
	if err != nil {
		return content.YouTubePost{}, fmt.Errorf("get youtube post %d: %w", id, err)
	}
	post.Status = statusOrPosted(status)
	if postAt.Valid {
		t := postAt.Time
		post.PostAt = &t
	}
	return post, nil
}

func (s *ContentStore) InsertYouTube(ctx context.Context, posts []content.YouTubePost) error {
	if s == nil || s.db == nil {
		return errUnavailable
	}
	for _, post := range posts {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO youtube_posts (title, description, video_url, status, post_date, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
		`, post.Title, post.Description, post.VideoURL, string(post.Status), post.PostAt)
		if err != nil {
			return fmt.Errorf("insert youtube post: %w", err)
		}
	}
	return nil
}

func (s *ContentStore) UpdateYouTubeStatus(ctx context.Context, id int64, status content.Status) error {
	return s.updateStatus(ctx, "youtube_posts", id, status)
}

func (s *ContentStore) DeleteYouTube(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "youtube_posts", id)
}

// ListByDateRange returns the scheduled post dates for one platform
// within [from, to), for calendar views.
func (s *ContentStore) ListByDateRange(ctx context.Context, platform content.Platform, from, to time.Time) ([]time.Time, error) {
	if s == nil || s.db == nil {
		return nil, errUnavailable
	}
	table, err := tableFor(platform)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT post_date FROM `+table+`
		WHERE post_date >= $1 AND post_date < $2
		ORDER BY post_date
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list %s by date range: %w", table, err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan %s post date: %w", table, err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s post dates: %w", table, err)
	}
	return dates, nil
}

func (s *ContentStore) updateStatus(ctx context.Context, table string, id int64, status content.Status) error {
	if s == nil || s.db == nil {
		return errUnavailable
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE `+table+` SET status = $1 WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("update %s status: %w", table, err)
	}
	return nil
}

func (s *ContentStore) deleteByID(ctx context.Context, table string, id int64) error {
	if s == nil || s.db == nil {
		return errUnavailable
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}

func tableFor(platform content.Platform) (string, error) {
	switch platform {
	case content.PlatformLinkedIn:
		return "linkedin_posts", nil
	case content.PlatformTwitter:
		return "twitter_posts", nil
	case content.PlatformYouTube:
		return "youtube_posts", nil
	default:
		return "", fmt.Errorf("unknown platform %q", platform)
	}
}

// Rows predating the status column are treated as already posted.
func statusOrPosted(status sql.NullString) content.Status {
	if status.Valid && status.String != "" {
		return content.Status(status.String)
	}
	return content.StatusPosted
}
