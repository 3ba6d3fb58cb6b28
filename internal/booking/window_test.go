package booking

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-06-01", want: "2024-06-01"},
		{in: " 2024-06-01 ", want: "2024-06-01"},
		{in: "2024-06-01T10:00:00Z", want: "2024-06-01"},
		{in: "2024-06-01T10:00:00.000Z", want: "2024-06-01"},
		{in: "2024-06-01T23:30:00-02:00", want: "2024-06-02"},
		{in: "2024-06-01T08:00:00", want: "2024-06-01"},
		{in: "2024-02-30", wantErr: true},
		{in: "06/01/2024", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeDate(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "09:00", want: "09:00"},
		{in: "9:00", want: "09:00"},
		{in: "23:59", want: "23:59"},
		{in: "00:00", want: "00:00"},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "1200", wantErr: true},
		{in: "9:5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeTime(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWindow_Validate(t *testing.T) {
	assert.NoError(t, Window{Start: "10:00", End: "11:00"}.Validate())
	assert.ErrorIs(t, Window{Start: "11:00", End: "11:00"}.Validate(), ErrInvalidTimeRange)
	assert.ErrorIs(t, Window{Start: "23:00", End: "01:00"}.Validate(), ErrInvalidTimeRange)
}

func TestWindow_Overlaps(t *testing.T) {
	base := Window{Start: "10:00", End: "11:00"}

	tests := []struct {
		name  string
		other Window
		want  bool
	}{
		{"identical", Window{Start: "10:00", End: "11:00"}, true},
		{"inside", Window{Start: "10:15", End: "10:45"}, true},
		{"containing", Window{Start: "09:00", End: "12:00"}, true},
		{"partial start", Window{Start: "09:30", End: "10:30"}, true},
		{"partial end", Window{Start: "10:30", End: "11:30"}, true},
		{"touching after", Window{Start: "11:00", End: "12:00"}, false},
		{"touching before", Window{Start: "09:00", End: "10:00"}, false},
		{"disjoint", Window{Start: "13:00", End: "14:00"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base), "overlap must be symmetric")
		})
	}
}

// The string comparison must agree with comparing minutes since midnight.
func TestWindow_OverlapsMatchesMinuteArithmetic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	fmtMin := func(m int) string {
		out, err := NormalizeTime(formatMinutes(m))
		require.NoError(t, err)
		return out
	}

	for i := 0; i < 2000; i++ {
		s1 := rng.Intn(24*60 - 1)
		e1 := s1 + 1 + rng.Intn(24*60-1-s1)
		s2 := rng.Intn(24*60 - 1)
		e2 := s2 + 1 + rng.Intn(24*60-1-s2)

		a := Window{Start: fmtMin(s1), End: fmtMin(e1)}
		b := Window{Start: fmtMin(s2), End: fmtMin(e2)}
		want := s1 < e2 && s2 < e1
		require.Equal(t, want, a.Overlaps(b), "%v vs %v", a, b)
	}
}

func formatMinutes(m int) string {
	h := m / 60
	mm := m % 60
	return string([]byte{byte('0' + h/10), byte('0' + h%10), ':', byte('0' + mm/10), byte('0' + mm%10)})
}

func TestWindow_Normalize(t *testing.T) {
	w, err := Window{CourtID: " c1 ", Date: "2024-06-01T10:00:00Z", Start: "9:00", End: "10:30", CoachID: " k "}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, Window{CourtID: "c1", Date: "2024-06-01", Start: "09:00", End: "10:30", CoachID: "k"}, w)
}
