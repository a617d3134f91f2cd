package mysql

// seq preserves insertion order, which the read path relies on for stable sorting.
const createReviewsTableSQL = `
CREATE TABLE IF NOT EXISTS reviews (
  seq         BIGINT       NOT NULL AUTO_INCREMENT,
  review_id   VARCHAR(64)  NOT NULL,
  location    VARCHAR(255) NOT NULL,
  review_body TEXT         NOT NULL,
  created_at  DATETIME     NOT NULL,
  PRIMARY KEY (seq),
  UNIQUE KEY uq_reviews_review_id (review_id),
  KEY idx_reviews_location_created (location, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`

const insertReviewSQL = "INSERT INTO reviews (review_id, location, review_body, created_at) VALUES (?, ?, ?, ?)"

const insertReviewsPrefix = "INSERT INTO reviews (review_id, location, review_body, created_at) VALUES "

// Re-running an ingest must not duplicate rows or overwrite accepted reviews.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE review_id = review_id"

// created_at is formatted server-side so the driver never has to parse DATETIME.
const selectReviewsSQL = "SELECT review_id, location, review_body, DATE_FORMAT(created_at, '%Y-%m-%d %H:%i:%s') FROM reviews"

const countReviewsSQL = "SELECT COUNT(*) FROM reviews"
