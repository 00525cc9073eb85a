package forms

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/evote/internal/common"
	"github.com/dmitrijs2005/evote/internal/filex"
	"github.com/dmitrijs2005/evote/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixNow(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func validRegistration(t *testing.T) RegistrationForm {
	return RegistrationForm{
		NationalID:  "12345678901",
		FirstName:   "Ada",
		LastName:    "Obi",
		DateOfBirth: "1990-04-01",
		State:       "Lagos",
		LGA:         "Ikeja",
		VIN:         "90F5B0A1C2D3E4F56",
		PhotoPath:   testutil.WritePhoto(t),
		Password:    "secret1",
	}
}

func TestLoginForm_Validate(t *testing.T) {
	require.NoError(t, LoginForm{NationalID: "1", Password: "p"}.Validate())

	err := LoginForm{}.Validate()

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "National ID is required.", verr.First())
	assert.Equal(t, map[string]string{
		"national_id": "National ID is required.",
		"password":    "Password is required.",
	}, verr.Map())
}

func TestLoginForm_NoFormatChecks(t *testing.T) {
	// any non-empty input is accepted
	require.NoError(t, LoginForm{NationalID: "x", Password: "1"}.Validate())
}

func TestRegistrationForm_Valid(t *testing.T) {
	fixNow(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local))
	require.NoError(t, validRegistration(t).Validate())
}

func TestRegistrationForm_Empty_ReportsEveryFieldInOrder(t *testing.T) {
	err := RegistrationForm{}.Validate()

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	var fields []string
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{
		"national_id", "first_name", "last_name", "date_of_birth",
		"state", "lga", "vin", "profile_pic", "password",
	}, fields)
	assert.Equal(t, "National ID is required.", verr.First())
	assert.Equal(t, "Profile picture is required.", verr.Map()["profile_pic"])
	assert.Equal(t, "First Name is required.", verr.Map()["first_name"])
}

func TestRegistrationForm_Rules(t *testing.T) {
	fixNow(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local))

	tests := []struct {
		name   string
		mutate func(f *RegistrationForm)
		field  string
		want   string
	}{
		{"short vin", func(f *RegistrationForm) { f.VIN = "ABC" }, "vin", "VIN must be 17 characters."},
		{"long vin", func(f *RegistrationForm) { f.VIN = "90F5B0A1C2D3E4F567" }, "vin", "VIN must be 17 characters."},
		{"short password", func(f *RegistrationForm) { f.Password = "12345" }, "password", "Password must be at least 6 characters."},
		{"bad date", func(f *RegistrationForm) { f.DateOfBirth = "01/04/1990" }, "date_of_birth", "Date of birth must be in YYYY-MM-DD format."},
		{"minor", func(f *RegistrationForm) { f.DateOfBirth = "2010-01-01" }, "date_of_birth", "You must be at least 18 years old."},
		{"turns 18 tomorrow", func(f *RegistrationForm) { f.DateOfBirth = "2007-06-02" }, "date_of_birth", "You must be at least 18 years old."},
		{"missing photo file", func(f *RegistrationForm) { f.PhotoPath = filepath.Join(os.TempDir(), "does-not-exist.png") }, "profile_pic", "Profile picture must be an existing file."},
		{"missing lga", func(f *RegistrationForm) { f.LGA = "" }, "lga", "LGA is required."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validRegistration(t)
			tt.mutate(&f)

			err := f.Validate()

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
			assert.Equal(t, tt.want, verr.First())
		})
	}
}

func TestRegistrationForm_Turns18Today(t *testing.T) {
	fixNow(t, time.Date(2025, 6, 1, 0, 0, 1, 0, time.Local))
	f := validRegistration(t)
	f.DateOfBirth = "2007-06-01"
	require.NoError(t, f.Validate())
}

func TestRegistrationForm_FirstErrorIsNotice(t *testing.T) {
	fixNow(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local))
	f := validRegistration(t)
	f.VIN = "short"
	f.Password = "123"

	err := f.Validate()

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "VIN must be 17 characters.", verr.First())
	assert.Len(t, verr.Map(), 2)
	assert.Contains(t, err.Error(), "VIN must be 17 characters.")
}

func TestRegistrationForm_Registration(t *testing.T) {
	f := validRegistration(t)
	photo := &filex.Photo{Name: "photo.png"}

	reg := f.Registration(photo)
	assert.Equal(t, f.NationalID, reg.NationalID)
	assert.Equal(t, f.LGA, reg.LGA)
	assert.Equal(t, f.Password, reg.Password)
	assert.Same(t, photo, reg.Photo)
}

func TestAge(t *testing.T) {
	dob := time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 17, Age(dob, time.Date(2018, 2, 28, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 18, Age(dob, time.Date(2018, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 25, Age(dob, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)))
}
