package warehouse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateValue(t *testing.T) {
	assert.Equal(t, int32(0), DateValue(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, int32(16892), DateValue(time.Date(2016, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, int32(-3653), DateValue(time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, int32(16892), DateValue(time.Date(2016, 4, 1, 18, 30, 0, 0, time.UTC)))
}

func TestDateOf_RoundTrip(t *testing.T) {
	for _, d := range []time.Time{
		time.Date(1959, 12, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2016, 2, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2099, 7, 4, 0, 0, 0, 0, time.UTC),
	} {
		assert.Equal(t, d, DateOf(DateValue(d)))
	}
}

func TestAssignIDs(t *testing.T) {
	type row struct {
		key string
		id  int64
	}
	in := []row{{key: "c"}, {key: "a"}, {key: "b"}}
	got := AssignIDs(in, func(a, b row) bool { return a.key < b.key }, func(r *row, id int64) { r.id = id })

	assert.Equal(t, []row{{"a", 1}, {"b", 2}, {"c", 3}}, got)
	assert.Equal(t, "c", in[0].key)
	assert.Zero(t, in[0].id)
}

func TestColumnNames(t *testing.T) {
	assert.Equal(t, []string{"country", "average_temperature", "id"}, columnNames[TemperatureRecord]())
}
