package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/dongyar/internal/auth"
)

func TestLoggingInterceptor_Subject(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Hour)
	token, err := manager.Generate("zahra")
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
		wantMsg       string
		wantSubject   string
	}{
		{"authenticated", "Bearer " + token, "RPC ok", "zahra"},
		{"anonymous", "", "RPC ok", ""},
		{"rejected", "Bearer not-a-jwt", "RPC error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&logs, nil))

			var subject string
			handler := LoggingInterceptor(logger)(OptionalAuth(manager, nil)(captureSubject(&subject)))
			_, _ = handler(context.Background(), newRequest(tt.authorization))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
			assert.Equal(t, tt.wantMsg, entry["msg"])
			assert.Equal(t, tt.wantSubject, entry["subject"])
		})
	}
}
