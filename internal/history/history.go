// FilePath: internal/history/history.go
package history

import (
	"time"

	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/models"
)

// DefaultCapacity bounds how many readings a device retains.
const DefaultCapacity = 100

// Buffer is a bounded FIFO log of readings for one device, oldest first.
// Append is the only mutation; once capacity is exceeded the oldest
// reading is evicted.
//
// Buffer is not safe for concurrent use on its own. The owning device
// task and the registry share one lock that covers every access, so the
// buffer itself stays lock-free.
type Buffer struct {
	readings []models.Reading
	capacity int
}

// NewBuffer creates a buffer holding at most capacity readings. A
// non-positive capacity falls back to DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		readings: make([]models.Reading, 0, capacity),
		capacity: capacity,
	}
}

// Append adds a reading to the tail, evicting the head when full.
func (b *Buffer) Append(r models.Reading) {
	if len(b.readings) >= b.capacity {
		copy(b.readings, b.readings[1:])
		b.readings = b.readings[:len(b.readings)-1]
	}
	b.readings = append(b.readings, r)
}

// Len returns the number of retained readings.
func (b *Buffer) Len() int {
	return len(b.readings)
}

// Latest returns the most recent reading, or false when empty.
func (b *Buffer) Latest() (models.Reading, bool) {
	if len(b.readings) == 0 {
		return models.Reading{}, false
	}
	return b.readings[len(b.readings)-1], true
}

// Readings returns a copy of the retained readings, oldest first.
func (b *Buffer) Readings() []models.Reading {
	out := make([]models.Reading, len(b.readings))
	copy(out, b.readings)
	return out
}

// Snapshot builds the presentation view: one timestamps array plus one
// series per metric, aligned by index. A metric absent from a reading
// reports as nil at that index rather than an error.
func (b *Buffer) Snapshot() models.HistorySnapshot {
	snap := models.HistorySnapshot{
		Timestamps: make([]time.Time, 0, len(b.readings)),
		Series:     make(map[string][]*float64),
	}

	for i, r := range b.readings {
		snap.Timestamps = append(snap.Timestamps, r.Timestamp)
		for name, value := range r.Values {
			series, ok := snap.Series[name]
			if !ok {
				series = make([]*float64, 0, len(b.readings))
			}
			// Pad metrics that appeared late so indexes stay aligned.
			for len(series) < i {
				series = append(series, nil)
			}
			v := value
			snap.Series[name] = append(series, &v)
		}
		// Pad metrics missing from this reading.
		for name, series := range snap.Series {
			if len(series) <= i {
				snap.Series[name] = append(series, nil)
			}
		}
	}

	return snap
}
