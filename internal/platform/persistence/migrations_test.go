package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunMigrations_RejectsMissingInput(t *testing.T) {
	tests := []struct {
		name, url, dir, want string
	}{
		{"no path", "postgres://wallet@localhost/wallet", "", "migrations path cannot be empty"},
		{"no url", "", "migrations/postgres", "database URL cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, RunMigrations(testLogger(), tt.url, tt.dir), tt.want)
		})
	}
}

func TestSourceURL(t *testing.T) {
	assert.Equal(t, "file://migrations/postgres", sourceURL("migrations/postgres"))
	assert.Equal(t, "file:///srv/migrations", sourceURL("file:///srv/migrations"))
}
