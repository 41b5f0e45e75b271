package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "full",
			cfg:  Config{Host: "db", Port: 5433, User: "tp", Password: "s3cret", Database: "tradepulse", SSLMode: "require"},
			want: "postgres://tp:s3cret@db:5433/tradepulse?sslmode=require",
		},
		{
			name: "no password",
			cfg:  Config{Host: "localhost", Port: 5432, User: "tp", SSLMode: "disable"},
			want: "postgres://tp@localhost:5432?sslmode=disable",
		},
		{
			name: "explicit dsn",
			cfg:  Config{DSN: "host=x user=y", Host: "ignored"},
			want: "host=x user=y",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.dsn())
		})
	}
}

func TestConfigDSNParams(t *testing.T) {
	cfg := Config{Host: "h", Port: 1, SSLMode: "disable", Params: map[string]string{"application_name": "tradepulse", "": "x"}}
	assert.Equal(t, "postgres://h:1?application_name=tradepulse&sslmode=disable", cfg.dsn())
}
