package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFindOneExcludesFields(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryDatabase().Collection("Staff")

	id, err := c.InsertOne(ctx, Document{"staff_id": "T01", "face_vector": []any{}})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := c.FindOne(ctx, Filter{"staff_id": "T01"}, Exclude("face_vector"))
	require.NoError(t, err)
	assert.Equal(t, id, doc.String(IDField))
	assert.NotContains(t, doc, "face_vector")

	_, err = c.FindOne(ctx, Filter{"staff_id": "nobody"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUpdateReportsModified(t *testing.T) {
	ctx := context.Background()
	db := NewMemoryDatabase()
	db.Seed("Rooms", Document{"room_id": "R1", "lock_status": "LOCK"})
	c := db.Collection("Rooms")

	res, err := c.UpdateOne(ctx, Filter{"room_id": "R1"}, Document{"lock_status": "LOCK"})
	require.NoError(t, err)
	assert.Equal(t, UpdateResult{Matched: 1, Modified: 0}, res)

	res, err = c.UpdateOne(ctx, Filter{"room_id": "R1"}, Document{"lock_status": "UNLOCK"})
	require.NoError(t, err)
	assert.Equal(t, UpdateResult{Matched: 1, Modified: 1}, res)

	res, err = c.UpdateOne(ctx, Filter{"room_id": "R9"}, Document{"lock_status": "UNLOCK"})
	require.NoError(t, err)
	assert.Equal(t, UpdateResult{}, res)
}

func TestMemoryUniqueAndDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryDatabase().Collection("Students")
	require.NoError(t, c.EnsureUnique(ctx, "student_id"))

	for _, id := range []string{"S1", "S2", "S3"} {
		_, err := c.InsertOne(ctx, Document{"student_id": id})
		require.NoError(t, err)
	}
	_, err := c.InsertOne(ctx, Document{"student_id": "S2"})
	assert.ErrorIs(t, err, ErrDuplicate)

	n, err := c.DeleteMany(ctx, Filter{"student_id": In{"S1", "S3", "S404"}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = c.DeleteOne(ctx, Filter{"student_id": "S1"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	rest, err := c.FindMany(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "S2", rest[0].String("student_id"))
}

func TestMemoryFindManySortAndLimit(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryDatabase().Collection("Attendance")
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := c.InsertOne(ctx, Document{"n": i, "timestamp": base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}

	docs, err := c.FindMany(ctx, Filter{}, SortDesc("timestamp"), Limit(2))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, 4, docs[0]["n"])
	assert.Equal(t, 3, docs[1]["n"])
}

func TestWhereClause(t *testing.T) {
	where, args, err := whereClause(Filter{"staff_id": In{"a", "b"}}, []any{"patch"})
	require.NoError(t, err)
	assert.Equal(t, "doc->>($2::text) = ANY($3::text[])", where)
	assert.Equal(t, []any{"patch", "staff_id", []string{"a", "b"}}, args)

	where, args, err = whereClause(Filter{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "TRUE", where)
	assert.Empty(t, args)
}

func TestOrderClause(t *testing.T) {
	order, args := orderClause(FindOptions{SortDesc: "timestamp"}, []any{"a"})
	assert.Equal(t, " ORDER BY doc->($2::text) DESC, seq DESC", order)
	assert.Equal(t, []any{"a", "timestamp"}, args)

	order, args = orderClause(FindOptions{}, nil)
	assert.Equal(t, " ORDER BY seq", order)
	assert.Empty(t, args)
}

func TestPostgresTimestampsSortChronologically(t *testing.T) {
	older := time.Date(2025, 6, 2, 7, 45, 0, 120_000_000, time.UTC)
	newer := time.Date(2025, 6, 2, 7, 45, 0, 123_000_000, time.UTC)
	whole := time.Date(2025, 6, 2, 7, 45, 1, 0, time.FixedZone("ICT", 7*3600)).Add(7 * time.Hour)

	o, n, w := pgValue(older).(string), pgValue(newer).(string), pgValue(whole).(string)
	assert.Less(t, o, n)
	assert.Less(t, n, w)
	assert.Len(t, o, len(w))
	assert.Equal(t, "2025-06-02T07:45:00.120000000Z", o)

	parsed, err := time.Parse(time.RFC3339Nano, n)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(newer))

	doc := pgDocument(Document{"timestamp": older, "room_id": "R101"})
	assert.Equal(t, Document{"timestamp": o, "room_id": "R101"}, doc)

	where, args, err := whereClause(Filter{"timestamp": older}, nil)
	require.NoError(t, err)
	assert.Equal(t, "doc @> $1::jsonb", where)
	assert.Equal(t, []any{`{"timestamp":"2025-06-02T07:45:00.120000000Z"}`}, args)
}
