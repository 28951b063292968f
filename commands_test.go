package main

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseFields(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    map[string]string
		wantErr bool
	}{
		{
			"simple pairs",
			[]string{"name=Iron Sword", "type_name=sword"},
			map[string]string{"name": "Iron Sword", "type_name": "sword"},
			false,
		},
		{
			"value containing equals",
			[]string{"effect=absorb=life"},
			map[string]string{"effect": "absorb=life"},
			false,
		},
		{
			"empty value",
			[]string{"forge_perk="},
			map[string]string{"forge_perk": ""},
			false,
		},
		{"missing separator", []string{"name"}, nil, true},
		{"empty column", []string{"=sword"}, nil, true},
		{"duplicate column", []string{"name=a", "name=b"}, nil, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := parseFields(test.args)
			if test.wantErr {
				var usage usageError
				require.True(t, errors.As(err, &usage), "expected a usage error, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func Test_validateFields(t *testing.T) {
	def := entities["weapon"]

	tests := []struct {
		name      string
		fields    map[string]string
		forInsert bool
		wantErr   string
	}{
		{
			"insert with all required",
			map[string]string{"id": "000fff01", "name": "Test Blade", "type_name": "sword", "material_name": "iron"},
			true,
			"",
		},
		{
			"insert missing required",
			map[string]string{"id": "000fff01", "name": "Test Blade"},
			true,
			`requires column "type_name"`,
		},
		{
			"insert unknown column",
			map[string]string{"id": "000fff01", "sharpness": "9"},
			true,
			`unknown column "sharpness"`,
		},
		{
			"update may be partial",
			map[string]string{"name": "Renamed Blade"},
			false,
			"",
		},
		{
			"update cannot touch the identifier",
			map[string]string{"id": "000fff02"},
			false,
			"cannot be changed",
		},
		{
			"update needs at least one column",
			map[string]string{},
			false,
			"at least one",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := validateFields(def, "weapon", test.fields, test.forInsert)
			if test.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var usage usageError
			require.True(t, errors.As(err, &usage))
			assert.Contains(t, err.Error(), test.wantErr)
		})
	}
}

func Test_unknownEntity(t *testing.T) {
	conn := dbConnection{}

	var usage usageError
	require.True(t, errors.As(conn.insert("spellbook", map[string]string{"name": "x"}), &usage))
	require.True(t, errors.As(conn.update("spellbook", "x", map[string]string{"name": "y"}), &usage))
	require.True(t, errors.As(conn.deleteRow("spellbook", "x"), &usage))
}
