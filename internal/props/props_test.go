package props

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKeys []string
		want     map[string]string
	}{
		{
			name:     "empty input",
			input:    "",
			wantKeys: []string{},
			want:     map[string]string{},
		},
		{
			name:     "plain pairs",
			input:    "VERSION_MAJOR=1\nVERSION_MINOR=2\n",
			wantKeys: []string{"VERSION_MAJOR", "VERSION_MINOR"},
			want:     map[string]string{"VERSION_MAJOR": "1", "VERSION_MINOR": "2"},
		},
		{
			name:     "whitespace trimmed",
			input:    "  VERSION_PATCH =  7  \n",
			wantKeys: []string{"VERSION_PATCH"},
			want:     map[string]string{"VERSION_PATCH": "7"},
		},
		{
			name:     "comments and blanks skipped",
			input:    "# generated\n\n! legacy comment\nBUILD_NUMBER=4\n   \n",
			wantKeys: []string{"BUILD_NUMBER"},
			want:     map[string]string{"BUILD_NUMBER": "4"},
		},
		{
			name:     "line without separator",
			input:    "FLAG\n",
			wantKeys: []string{"FLAG"},
			want:     map[string]string{"FLAG": ""},
		},
		{
			name:     "value keeps later equals signs",
			input:    "URL=https://example.com/?a=b\n",
			wantKeys: []string{"URL"},
			want:     map[string]string{"URL": "https://example.com/?a=b"},
		},
		{
			name:     "duplicate keeps first position and last value",
			input:    "A=1\nB=2\nA=3\n",
			wantKeys: []string{"A", "B"},
			want:     map[string]string{"A": "3", "B": "2"},
		},
		{
			name:     "crlf line endings",
			input:    "VERSION_MAJOR=1\r\nBUILD_NUMBER=4\r\n",
			wantKeys: []string{"VERSION_MAJOR", "BUILD_NUMBER"},
			want:     map[string]string{"VERSION_MAJOR": "1", "BUILD_NUMBER": "4"},
		},
		{
			name:     "leading byte order mark dropped",
			input:    "\uFEFFVERSION_MAJOR=2\nVERSION_MINOR=1\n",
			wantKeys: []string{"VERSION_MAJOR", "VERSION_MINOR"},
			want:     map[string]string{"VERSION_MAJOR": "2", "VERSION_MINOR": "1"},
		},
		{
			name:     "byte order mark only at start",
			input:    "A=1\n\uFEFFB=2\n",
			wantKeys: []string{"A", "\uFEFFB"},
			want:     map[string]string{"A": "1", "\uFEFFB": "2"},
		},
		{
			name:     "line longer than 64 KiB",
			input:    "VERSION_MAJOR=1\nNOTES=" + strings.Repeat("x", 70*1024) + "\nBUILD_NUMBER=4\n",
			wantKeys: []string{"VERSION_MAJOR", "NOTES", "BUILD_NUMBER"},
			want: map[string]string{
				"VERSION_MAJOR": "1",
				"NOTES":         strings.Repeat("x", 70*1024),
				"BUILD_NUMBER":  "4",
			},
		},
		{
			name:     "missing trailing newline",
			input:    "A=1",
			wantKeys: []string{"A"},
			want:     map[string]string{"A": "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Load(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.wantKeys, s.Keys())
			for k, v := range tt.want {
				got, ok := s.Get(k)
				assert.True(t, ok, "key %s", k)
				assert.Equal(t, v, got, "key %s", k)
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestLoadReadError(t *testing.T) {
	_, err := Load(failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"components", "VERSION_MAJOR=1\nVERSION_MINOR=2\nVERSION_PATCH=3\nBUILD_NUMBER=4\n"},
		{"unrecognized keys", "APP_NAME=vista\nVERSION_MAJOR=1\nCHANNEL=beta\nBUILD_NUMBER=9\nOWNER=\n"},
		{"malformed value", "VERSION_MAJOR=notanumber\n"},
		{"value with equals", "JAVA_OPTS=-Dfoo=bar -Dx=y\nVERSION_MAJOR=1\n"},
		{"long line", "VERSION_MAJOR=1\nNOTES=" + strings.Repeat("x", 200*1024) + "\nBUILD_NUMBER=4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Load(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.input, s.String())
		})
	}
}

func TestLoadNormalizesLineEndings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"crlf", "VERSION_MAJOR=1\r\nBUILD_NUMBER=4\r\n", "VERSION_MAJOR=1\nBUILD_NUMBER=4\n"},
		{"byte order mark", "\uFEFFVERSION_MAJOR=1\n", "VERSION_MAJOR=1\n"},
		{"no trailing newline", "VERSION_MAJOR=1", "VERSION_MAJOR=1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Load(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.String())
		})
	}
}

func TestSetKeepsPosition(t *testing.T) {
	s, err := Load(strings.NewReader("A=1\nB=2\nC=3\n"))
	require.NoError(t, err)

	s.Set("B", "20")
	s.Set("D", "4")

	assert.Equal(t, "A=1\nB=20\nC=3\nD=4\n", s.String())
	assert.Equal(t, 4, s.Len())
}

func TestInt(t *testing.T) {
	s, err := Load(strings.NewReader("A=5\nB=abc\nC=-2\nD= 12 \nE=\nF=99999999999999999999999\n"))
	require.NoError(t, err)

	tests := []struct {
		key  string
		def  int
		want int
	}{
		{"A", 0, 5},
		{"B", 0, 0},
		{"C", 0, 0},
		{"D", 0, 12},
		{"E", 7, 7},
		{"F", 0, 0},
		{"MISSING", 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Int(tt.key, tt.def))
		})
	}
}

func TestClone(t *testing.T) {
	s := New()
	s.Set("A", "1")

	c := s.Clone()
	c.Set("A", "2")
	c.Set("B", "3")

	v, _ := s.Get("A")
	assert.Equal(t, "1", v)
	assert.False(t, s.Has("B"))
	assert.True(t, c.Has("B"))
}
