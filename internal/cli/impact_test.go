package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s-hayashi/lawgraph/internal/law"
)

func TestParseArticleArg(t *testing.T) {
	tests := []struct {
		in   string
		want law.ArticleNumber
		ok   bool
	}{
		{"32", law.ArticleNumber{Base: 32}, true},
		{"32-2", law.ArticleNumber{Base: 32, Branch: 2}, true},
		{"三十二", law.ArticleNumber{Base: 32}, true},
		{"三十二の二", law.ArticleNumber{Base: 32, Branch: 2}, true},
		{"abc", law.ArticleNumber{}, false},
		{"0", law.ArticleNumber{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseArticleArg(tt.in)
			if !tt.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "短い", truncate("短い", 10))
	assert.Equal(t, "あいう…", truncate("あいうえお", 3))
}
