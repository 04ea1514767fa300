package analysis

import (
	"bytes"
	"encoding/gob"
	"encoding/hex"

	"lukechampine.com/blake3"

	"github.com/openrhythm/rox/model"
)

func gobBytes(v any) []byte {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		panic("Could not encode chart content because: " + err.Error())
	}
	return buf.Bytes()
}

// Hash is the BLAKE3 digest of the whole chart (metadata included), hex
// encoded. Two charts hash equal exactly when their decoded forms are
// equal, regardless of the file format they came from.
func Hash(chart *model.Chart) string {
	sum := blake3.Sum256(gobBytes(chart))
	return hex.EncodeToString(sum[:])
}

// NotesHash digests only the note list, so re-tagged uploads of the same
// chart can be matched.
func NotesHash(chart *model.Chart) string {
	sum := blake3.Sum256(gobBytes(chart.Notes))
	return hex.EncodeToString(sum[:])
}

// TimingsHash digests only the timing points.
func TimingsHash(chart *model.Chart) string {
	sum := blake3.Sum256(gobBytes(chart.TimingPoints))
	return hex.EncodeToString(sum[:])
}

// ShortHash is the first 16 hex characters of Hash, enough for display
// and log lines.
func ShortHash(chart *model.Chart) string {
	h := Hash(chart)
	if len(h) >= 16 {
		return h[:16]
	}
	return h
}
