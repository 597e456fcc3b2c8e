package dbio

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRespectsDimMask(t *testing.T) {
	assert := assert.New(t)

	db, err := Generate(64, 7, nil)
	assert.NoError(err)
	for _, e := range db.Entries {
		assert.Less(e, uint64(1<<7))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	assert := assert.New(t)

	db, err := Generate(37, 5, nil)
	assert.NoError(err)

	f, err := os.CreateTemp("", "certified-dp-db-*.bin")
	assert.NoError(err)
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	assert.NoError(db.Save(path))

	loaded, err := Load(path, 37, 5)
	assert.NoError(err)
	assert.Equal(db.Entries, loaded.Entries)
}

func TestGenerateRejectsOversizedDim(t *testing.T) {
	assert := assert.New(t)

	_, err := Generate(1, 65, nil)
	assert.ErrorIs(err, ErrDimTooLarge)
}

func TestLoadPackedRowsUnpacksOneWordPerRow(t *testing.T) {
	assert := assert.New(t)

	width := 0
	for _, w := range CensusFieldWidths {
		width += w
	}

	f, err := os.CreateTemp("", "certified-dp-census-*.bin")
	assert.NoError(err)
	path := f.Name()
	defer os.Remove(path)

	rows := []uint64{0, 1, 1<<width - 1, 0x1A2B3C}
	buf := make([]byte, 0, 8*len(rows))
	for _, r := range rows {
		var word [8]byte
		for i := 0; i < 8; i++ {
			word[i] = byte(r >> uint(8*i))
		}
		buf = append(buf, word[:]...)
	}
	_, err = f.Write(buf)
	assert.NoError(err)
	f.Close()

	db, err := LoadPackedRows(path, len(rows), width)
	assert.NoError(err)
	assert.Equal(rows, db.Entries)
}
