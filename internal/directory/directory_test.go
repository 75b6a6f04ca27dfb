package directory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NutMontree/kiosk/internal/apperr"
	"github.com/NutMontree/kiosk/internal/store"
)

func TestOptionalTracksPresence(t *testing.T) {
	var p StudentPatch
	require.NoError(t, json.Unmarshal([]byte(`{"full_name":"Nok","phone":null,"year_level":4}`), &p))

	assert.True(t, p.FullName.Present())
	assert.Equal(t, "Nok", p.FullName.Value())
	assert.False(t, p.Phone.Present())
	assert.False(t, p.Email.Present())
	assert.True(t, p.YearLevel.Present())

	assert.Equal(t, store.Document{"full_name": "Nok", "year_level": float64(4)}, p.set())
}

func TestStaffLifecycle(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryDatabase()
	svc := NewStaffService(db.Collection(StaffCollection))

	require.NoError(t, svc.Add(ctx, NewStaff{StaffID: "T100", FullName: "Ajarn Malee", Department: "Science"}))
	err := svc.Add(ctx, NewStaff{StaffID: "T100"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ajarn Malee", list[0]["full_name"])
	assert.NotContains(t, list[0], FaceField)
	assert.Contains(t, list[0], "schedule")

	require.NoError(t, svc.Update(ctx, "T100", StaffPatch{Department: Some("Math")}))
	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Math", list[0]["department"])
	assert.Equal(t, "Ajarn Malee", list[0]["full_name"])

	require.NoError(t, svc.Delete(ctx, "T100"))
	err = svc.Delete(ctx, "T100")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestStaffUpdateWithoutFieldsDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryDatabase()
	svc := NewStaffService(db.Collection(StaffCollection))
	require.NoError(t, svc.Add(ctx, NewStaff{StaffID: "T1", FullName: "A"}))

	err := svc.Update(ctx, "T1", StaffPatch{FullName: Null[string]()})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	err = svc.Update(ctx, "", StaffPatch{FullName: Some("B")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	err = svc.Update(ctx, "T404", StaffPatch{FullName: Some("B")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", list[0]["full_name"])
}

func TestStaffBulkDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewStaffService(store.NewMemoryDatabase().Collection(StaffCollection))
	for _, id := range []string{"T1", "T2", "T3"} {
		require.NoError(t, svc.Add(ctx, NewStaff{StaffID: ID(id)}))
	}

	_, err := svc.DeleteMany(ctx, nil)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	n, err := svc.DeleteMany(ctx, []string{"X1", "X2"})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = svc.DeleteMany(ctx, []string{"T1", "T3", "X1"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestStudentGetStripsIDAndFace(t *testing.T) {
	ctx := context.Background()
	svc := NewStudentService(store.NewMemoryDatabase().Collection(StudentCollection))
	require.NoError(t, svc.Add(ctx, NewStudent{StudentID: "65001", FullName: "Nok", ClassCode: "M4/2", YearLevel: 4, Phone: "0812345678"}))

	doc, err := svc.Get(ctx, "65001")
	require.NoError(t, err)
	assert.NotContains(t, doc, store.IDField)
	assert.NotContains(t, doc, FaceField)
	assert.Equal(t, "M4/2", doc["class_code"])
	assert.Contains(t, doc, "created_at")

	_, err = svc.Get(ctx, "00000")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0], store.IDField)
	assert.NotContains(t, list[0], FaceField)
}

type brokenCollection struct{ store.Collection }

func (brokenCollection) FindOne(context.Context, store.Filter, ...store.FindOption) (store.Document, error) {
	return nil, errors.New("server selection timeout")
}

func TestStudentGetStoreFaultIsInternal(t *testing.T) {
	svc := NewStudentService(brokenCollection{})
	_, err := svc.Get(context.Background(), "65001")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, "Server error", apperr.Message(err))
}
