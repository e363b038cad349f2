package fingerprint

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestFile_KnownDigest(t *testing.T) {
	dir := t.TempDir()

	empty := writeFile(t, dir, "empty.pdf", nil)
	fp, err := File(empty)
	require.NoError(t, err)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", fp.String())
	assert.True(t, fp.IsValid())

	abc := writeFile(t, dir, "abc.pdf", []byte("abc"))
	fp, err = File(abc)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", fp.String())
}

func TestFile_IndependentOfName(t *testing.T) {
	dir := t.TempDir()
	content := []byte("%PDF-1.7 power purchase agreement")

	a, err := File(writeFile(t, dir, "contract.pdf", content))
	require.NoError(t, err)
	b, err := File(writeFile(t, dir, "renamed copy.PDF", content))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := File(writeFile(t, dir, "other.pdf", append(content, '!')))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestFile_LargerThanChunk(t *testing.T) {
	dir := t.TempDir()
	data := []byte(strings.Repeat("x", ChunkSize*3+17))

	fromFile, err := File(writeFile(t, dir, "big.pdf", data))
	require.NoError(t, err)
	fromReader, err := Reader(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, fromReader, fromFile)
}

func TestFile_Missing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "nope.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open file")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestReader_Error(t *testing.T) {
	_, err := Reader(failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read file")
}
