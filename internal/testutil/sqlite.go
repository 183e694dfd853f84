package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// schema mirrors migrations/ in SQLite syntax. uuid columns are stored as
// text; the partial unique index keeps CNPJ reusable after a soft delete.
var schema = []string{
	`CREATE TABLE empresas (
		id TEXT PRIMARY KEY,
		razao_social VARCHAR(255) NOT NULL,
		nome_fantasia VARCHAR(255) NOT NULL,
		cnpj VARCHAR(18),
		email VARCHAR(255) NOT NULL,
		endereco_id TEXT REFERENCES enderecos (id) ON DELETE SET NULL,
		telefone VARCHAR(20),
		logo_path VARCHAR(500),
		ativo BOOLEAN NOT NULL DEFAULT 1,
		data_adesao DATETIME,
		data_expiracao DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		deleted_at DATETIME
	)`,
	`CREATE UNIQUE INDEX ux_empresas_cnpj_live ON empresas (cnpj) WHERE deleted_at IS NULL`,
	`CREATE TABLE estados (
		id TEXT PRIMARY KEY,
		nome VARCHAR(100) NOT NULL,
		uf CHAR(2) NOT NULL UNIQUE
	)`,
	`CREATE TABLE municipios (
		id TEXT PRIMARY KEY,
		estado_id TEXT NOT NULL REFERENCES estados (id),
		nome VARCHAR(150) NOT NULL,
		codigo_ibge VARCHAR(7)
	)`,
	`CREATE TABLE enderecos (
		id TEXT PRIMARY KEY,
		cep VARCHAR(9),
		logradouro VARCHAR(255),
		numero VARCHAR(20),
		complemento VARCHAR(255),
		bairro VARCHAR(255),
		municipio_id TEXT REFERENCES municipios (id),
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE lojas (
		id TEXT PRIMARY KEY,
		empresa_id TEXT NOT NULL REFERENCES empresas (id),
		nome VARCHAR(255) NOT NULL,
		cnpj VARCHAR(18),
		telefone VARCHAR(20),
		email VARCHAR(255),
		cep VARCHAR(9),
		logradouro VARCHAR(255),
		numero VARCHAR(20),
		complemento VARCHAR(255),
		bairro VARCHAR(255),
		cidade VARCHAR(255),
		estado VARCHAR(2),
		endereco_id TEXT REFERENCES enderecos (id),
		ativo BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		deleted_at DATETIME
	)`,
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		cpf VARCHAR(11),
		password VARCHAR(255) NOT NULL,
		empresa_id TEXT REFERENCES empresas (id),
		tipo VARCHAR(50),
		ativo BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE user_lojas (
		user_id TEXT NOT NULL REFERENCES users (id),
		loja_id TEXT NOT NULL REFERENCES lojas (id),
		created_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, loja_id)
	)`,
	`CREATE TABLE roles (
		id TEXT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		guard_name VARCHAR(50) NOT NULL DEFAULT 'web',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (name, guard_name)
	)`,
	`CREATE TABLE permissions (
		id TEXT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		guard_name VARCHAR(50) NOT NULL DEFAULT 'web',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (name, guard_name)
	)`,
	`CREATE TABLE user_roles (
		user_id TEXT NOT NULL REFERENCES users (id),
		role_id TEXT NOT NULL REFERENCES roles (id),
		created_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, role_id)
	)`,
	`CREATE TABLE role_permissions (
		role_id TEXT NOT NULL REFERENCES roles (id),
		permission_id TEXT NOT NULL REFERENCES permissions (id),
		created_at DATETIME NOT NULL,
		PRIMARY KEY (role_id, permission_id)
	)`,
}

// NewSQLiteDB opens a private in-memory database with the full schema. The
// pool is pinned to one connection so every statement sees the same
// in-memory database.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err, "Failed to open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error, "Failed to apply schema")
	}
	return db
}
