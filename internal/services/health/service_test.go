package health

import (
	"context"
	"errors"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestCheck(t *testing.T) {
	tests := []struct {
		name   string
		db     Pinger
		wantOK bool
		wantDB string
	}{
		{name: "memory", db: nil, wantOK: true, wantDB: "memory"},
		{name: "up", db: pingFunc(func(context.Context) error { return nil }), wantOK: true, wantDB: "up"},
		{name: "down", db: pingFunc(func(context.Context) error { return errors.New("refused") }), wantOK: false, wantDB: "down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewService(tt.db, "default").Check(context.Background())
			if st.OK != tt.wantOK || st.Database != tt.wantDB || st.Model != "default" {
				t.Fatalf("unexpected status %+v", st)
			}
		})
	}
}
