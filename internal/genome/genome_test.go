package genome

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	input := "# assembly sizes\nchr2\t2000\n\nchr1 1000 extra\nchrM\t16569\n"

	g, err := Read(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"chr2", "chr1", "chrM"}, g.Names(), "table order preserved")
	assert.Equal(t, 3, g.Len())

	l, ok := g.Length("chr1")
	assert.True(t, ok)
	assert.Equal(t, int64(1000), l)

	_, ok = g.Length("chr3")
	assert.False(t, ok)
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing length", "chr1\n"},
		{"not a number", "chr1\tabc\n"},
		{"zero length", "chr1\t0\n"},
		{"negative length", "chr1\t-5\n"},
		{"duplicate", "chr1\t10\nchr1\t20\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestNew(t *testing.T) {
	g, err := New([]string{"a", "b"}, []int64{10, 20})
	require.NoError(t, err)
	l, _ := g.Length("b")
	assert.Equal(t, int64(20), l)

	_, err = New([]string{"a"}, []int64{10, 20})
	assert.Error(t, err)
}

func TestLoad_Gzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte("chrI\t230218\nchrII\t813184\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	path := filepath.Join(t.TempDir(), "sizes.tsv.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	g, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"chrI", "chrII"}, g.Names())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.tsv"))
	assert.Error(t, err)
}
