package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"provisioning": map[string]any{
			"maxUserIdLength": 16,
			"passwdEncryption": "pbkdf2",
		},
		"schema": map[string]any{
			"tables": map[string]any{
				"users": "ftpuser",
			},
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "PROVISIONING_MAXUSERIDLENGTH", want: "provisioning.maxUserIdLength"},
		{envKey: "PROVISIONING_PASSWDENCRYPTION", want: "provisioning.passwdEncryption"},
		{envKey: "SCHEMA_TABLES_USERS", want: "schema.tables.users"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestSchemaConfig_DefaultsAndValidation(t *testing.T) {
	s := &SchemaConfig{}
	s.ApplyDefaults()

	if s.Tables.Users != "ftpuser" || s.Tables.Groups != "ftpgroup" {
		t.Fatalf("unexpected default tables: %+v", s.Tables)
	}
	if s.Fields.Login != "userid" || s.Fields.Members != "members" {
		t.Fatalf("unexpected default fields: %+v", s.Fields)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	s.Fields.Members = `members"; DROP TABLE ftpuser; --`
	if err := s.Validate(); err == nil {
		t.Fatal("expected validation error for hostile identifier")
	}
}
