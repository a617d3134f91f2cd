package csvdata_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review_analyzer/internal/adapters/csvdata"
)

func TestRead_MapsColumnsByHeader(t *testing.T) {
	in := "ReviewId,Location,Timestamp,ReviewBody\n" +
		"r1,\"Denver, Colorado\",2023-01-01 10:00:00,\"Great, really great\"\n" +
		"r2,\"New York, New York\",2023-02-01 11:30:00,Meh\n"

	rs, err := csvdata.Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, "r1", rs[0].ReviewID)
	assert.Equal(t, "Denver, Colorado", rs[0].Location)
	assert.Equal(t, "Great, really great", rs[0].ReviewBody)
	assert.Equal(t, "2023-01-01 10:00:00", rs[0].Timestamp)
}

func TestRead_GeneratesMissingIDs(t *testing.T) {
	in := "location,body,timestamp\n" +
		"\"Denver, Colorado\",ok,2023-01-01 10:00:00\n"

	rs, err := csvdata.Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rs, 1)
	_, err = uuid.Parse(rs[0].ReviewID)
	assert.NoError(t, err)
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: "empty"},
		{name: "missing column", in: "ReviewId,Location,Timestamp\nr1,x,2023-01-01 00:00:00\n", want: "ReviewBody"},
		{name: "bad timestamp", in: "Location,ReviewBody,Timestamp\nx,y,2023-01-01\nx,y,01/02/2023\n", want: "line 2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := csvdata.Read(strings.NewReader(tc.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.csv")
	require.NoError(t, os.WriteFile(path, []byte("Location,ReviewBody,Timestamp\nx,y,2023-01-01 00:00:00\n"), 0o600))

	rs, err := csvdata.Load(path)
	require.NoError(t, err)
	assert.Len(t, rs, 1)

	_, err = csvdata.Load(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
