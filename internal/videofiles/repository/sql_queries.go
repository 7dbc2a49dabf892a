package repository

const (
	createVideoQuery = `INSERT INTO videos (title, description, genre, video_url, thumbnail_url, views)
					VALUES ($1, $2, $3, $4, $5, $6)
					RETURNING id, title, description, genre, video_url, thumbnail_url, views, created_at`
	getVideoByIDQuery = `SELECT id, title, description, genre, video_url, thumbnail_url, views, created_at
					FROM videos WHERE id = $1`
)
