package delta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v int64) *int64 { return &v }

func TestCounter_Process(t *testing.T) {
	tests := []struct {
		name   string
		inputs []*int64
		want   []int64
		wantOK []bool
	}{
		{
			name:   "first reading has no delta",
			inputs: []*int64{ptr(42)},
			want:   []int64{0},
			wantOK: []bool{false},
		},
		{
			name:   "increasing readings",
			inputs: []*int64{ptr(10), ptr(15), ptr(30)},
			want:   []int64{0, 5, 15},
			wantOK: []bool{false, true, true},
		},
		{
			name:   "unchanged reading is a zero delta",
			inputs: []*int64{ptr(7), ptr(7)},
			want:   []int64{0, 0},
			wantOK: []bool{false, true},
		},
		{
			name:   "reset is suppressed and rebased",
			inputs: []*int64{ptr(200), ptr(170), ptr(180)},
			want:   []int64{0, 0, 10},
			wantOK: []bool{false, false, true},
		},
		{
			name:   "nil keeps the previous reading",
			inputs: []*int64{ptr(5), nil, ptr(8)},
			want:   []int64{0, 0, 3},
			wantOK: []bool{false, false, true},
		},
		{
			name:   "nil before any reading",
			inputs: []*int64{nil, ptr(3), ptr(4)},
			want:   []int64{0, 0, 1},
			wantOK: []bool{false, false, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Counter
			for i, in := range tt.inputs {
				got, ok := c.Process(in)
				assert.Equal(t, tt.want[i], got, "step %d", i)
				assert.Equal(t, tt.wantOK[i], ok, "step %d", i)
			}
		})
	}
}

func TestCounter_Process_Properties(t *testing.T) {
	values := []int64{0, 1, 2, 17, 1000, 1 << 40}

	for _, a := range values {
		for _, b := range values {
			var c Counter
			_, ok := c.Process(ptr(a))
			assert.False(t, ok)

			got, ok := c.Process(ptr(b))
			if a <= b {
				assert.True(t, ok)
				assert.Equal(t, b-a, got)
				continue
			}

			assert.False(t, ok, "reset %d -> %d must be suppressed", a, b)
			got, ok = c.Process(ptr(b + 3))
			assert.True(t, ok)
			assert.Equal(t, int64(3), got)
		}
	}
}
