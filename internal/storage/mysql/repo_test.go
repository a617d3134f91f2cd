package mysql_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review_analyzer/internal/domain"
	mysqlrepo "review_analyzer/internal/storage/mysql"
)

func newMock(t *testing.T) (*mysqlrepo.Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return mysqlrepo.New(db), mock
}

func TestRepo_ListWithoutFilters(t *testing.T) {
	repo, mock := newMock(t)

	rows := sqlmock.NewRows([]string{"review_id", "location", "review_body", "created_at"}).
		AddRow("a", "Denver, Colorado", "Great", "2023-01-01 10:00:00").
		AddRow("b", "New York, New York", "Bad", "2023-01-02 11:00:00")
	mock.ExpectQuery(`FROM reviews ORDER BY seq$`).WillReturnRows(rows)

	got, err := repo.List(context.Background(), domain.ReviewFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.Review{ReviewID: "a", Location: "Denver, Colorado", ReviewBody: "Great", Timestamp: "2023-01-01 10:00:00"}, got[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_ListTranslatesFilter(t *testing.T) {
	repo, mock := newMock(t)

	f, err := domain.ParseFilter("Denver, Colorado", "2023-01-01", "2023-01-31")
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE location = ? AND created_at >= ? AND created_at < ? ORDER BY seq")).
		WithArgs("Denver, Colorado", "2023-01-01 00:00:00", "2023-02-01 00:00:00").
		WillReturnRows(sqlmock.NewRows([]string{"review_id", "location", "review_body", "created_at"}))

	got, err := repo.List(context.Background(), f)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_ListQueryError(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("SELECT").WillReturnError(errors.New("boom"))

	_, err := repo.List(context.Background(), domain.ReviewFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRepo_AppendAndCount(t *testing.T) {
	repo, mock := newMock(t)
	rv := domain.Review{ReviewID: "id-1", Location: "Denver, Colorado", ReviewBody: "Nice", Timestamp: "2024-05-01 09:00:00"}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reviews (review_id, location, review_body, created_at) VALUES (?, ?, ?, ?)")).
		WithArgs(rv.ReviewID, rv.Location, rv.ReviewBody, rv.Timestamp).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reviews")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(7))

	require.NoError(t, repo.Append(context.Background(), rv))
	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_AppendBatch(t *testing.T) {
	repo, mock := newMock(t)
	rs := []domain.Review{
		{ReviewID: "a", Location: "Denver, Colorado", ReviewBody: "x", Timestamp: "2023-01-01 00:00:00"},
		{ReviewID: "b", Location: "Denver, Colorado", ReviewBody: "y", Timestamp: "2023-01-02 00:00:00"},
	}
	mock.ExpectExec(regexp.QuoteMeta("VALUES (?, ?, ?, ?), (?, ?, ?, ?) ON DUPLICATE KEY UPDATE")).
		WithArgs("a", "Denver, Colorado", "x", "2023-01-01 00:00:00", "b", "Denver, Colorado", "y", "2023-01-02 00:00:00").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.AppendBatch(context.Background(), rs))
	require.NoError(t, repo.AppendBatch(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
