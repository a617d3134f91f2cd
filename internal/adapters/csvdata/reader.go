package csvdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"review_analyzer/internal/domain"
)

/********** header alias registry (single source of truth) **********/

var columnAliases = map[string][]string{
	"id":        {"ReviewId", "review_id", "reviewid", "id"},
	"location":  {"Location", "location", "city"},
	"body":      {"ReviewBody", "review_body", "body", "review", "text"},
	"timestamp": {"Timestamp", "timestamp", "created_at", "date"},
}

var requiredColumns = []string{"location", "body", "timestamp"}

// Load reads the review data file at path.
func Load(path string) ([]domain.Review, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()
	rs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// Read parses CSV with a header row. Location, ReviewBody and Timestamp are
// required; rows without a ReviewId get a generated UUID.
func Read(r io.Reader) ([]domain.Review, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("data file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Review, 0, 64)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		rv := domain.Review{
			Location:   field(rec, cols, "location"),
			ReviewBody: field(rec, cols, "body"),
			Timestamp:  field(rec, cols, "timestamp"),
			ReviewID:   field(rec, cols, "id"),
		}
		if _, err := time.Parse(domain.TimestampLayout, rv.Timestamp); err != nil {
			return nil, fmt.Errorf("line %d: Timestamp %q is not YYYY-MM-DD HH:MM:SS", line, rv.Timestamp)
		}
		if rv.ReviewID == "" {
			rv.ReviewID = uuid.NewString()
		}
		out = append(out, rv)
	}
	return out, nil
}

func resolveColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		// tolerate a UTF-8 BOM on the first column
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	cols := make(map[string]int, len(columnAliases))
	for key, aliases := range columnAliases {
		for _, a := range aliases {
			if i, ok := idx[strings.ToLower(a)]; ok {
				cols[key] = i
				break
			}
		}
	}
	var missing []string
	for _, k := range requiredColumns {
		if _, ok := cols[k]; !ok {
			missing = append(missing, columnAliases[k][0])
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required column(s): %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func field(rec []string, cols map[string]int, key string) string {
	i, ok := cols[key]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
