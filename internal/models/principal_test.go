package models

import (
	"reflect"
	"testing"
)

func TestNewPrincipal(t *testing.T) {
	type args struct {
		username       string
		hashedPassword string
	}
	tests := []struct {
		name string
		args args
		want *Principal
	}{
		{
			name: "Create new principal with username and hash",
			args: args{
				username:       "naruto",
				hashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
			},
			want: &Principal{
				ID:             "", // ID is left empty for the store to populate
				Username:       "naruto",
				HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
			},
		},
		{
			name: "Create new principal with empty fields",
			args: args{
				username:       "",
				hashedPassword: "",
			},
			want: &Principal{
				ID:             "",
				Username:       "",
				HashedPassword: "",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewPrincipal(tt.args.username, tt.args.hashedPassword); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NewPrincipal() = %v, want %v", got, tt.want)
			}
		})
	}
}
