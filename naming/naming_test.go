package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"User", "user"},
		{"BlogPost", "blog_post"},
		{"HTTPRequest", "http_request"},
		{"Oauth2Token", "oauth2_token"},
		{"ID", "id"},
		{"already_snake", "already_snake"},
		{"userID", "user_id"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SnakeCase(tt.input))
		})
	}
}

func TestTableName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"User", "users"},
		{"BlogPost", "blog_posts"},
		{"Person", "people"},
		{"Category", "categories"},
		{"QueryJob", "query_jobs"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, TableName(tt.input))
		})
	}
}
