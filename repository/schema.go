package repository

// PostgresSchema creates the owner and license tables on Postgres
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS owners (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    nik VARCHAR(16) NOT NULL,
    name TEXT NOT NULL,
    address TEXT,
    birth_date DATE NOT NULL,
    birth_place TEXT NOT NULL,
    gender VARCHAR(6) NOT NULL CHECK (gender IN ('MALE', 'FEMALE')),
    occupation TEXT NOT NULL,
    height_cm INTEGER NOT NULL CHECK (height_cm > 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT owners_nik_unique UNIQUE (nik)
);

CREATE TABLE IF NOT EXISTS licenses (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    owner_id UUID NOT NULL REFERENCES owners(id) ON DELETE RESTRICT,
    license_number VARCHAR(64) NOT NULL,
    name TEXT NOT NULL,
    birth_place TEXT NOT NULL,
    birth_date DATE NOT NULL,
    gender VARCHAR(6) NOT NULL CHECK (gender IN ('MALE', 'FEMALE')),
    height_cm INTEGER NOT NULL CHECK (height_cm > 0),
    occupation TEXT NOT NULL,
    valid_until DATE,
    photo TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT licenses_number_unique UNIQUE (license_number)
);

CREATE INDEX IF NOT EXISTS idx_licenses_created_at ON licenses(created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_licenses_owner_id ON licenses(owner_id);
`

// SQLiteSchema creates the owner and license tables on SQLite.
// Dates are stored as YYYY-MM-DD text and timestamps as unix nanoseconds.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS owners (
    id TEXT PRIMARY KEY,
    nik TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    address TEXT,
    birth_date TEXT NOT NULL,
    birth_place TEXT NOT NULL,
    gender TEXT NOT NULL CHECK (gender IN ('MALE', 'FEMALE')),
    occupation TEXT NOT NULL,
    height_cm INTEGER NOT NULL CHECK (height_cm > 0),
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS licenses (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL REFERENCES owners(id) ON DELETE RESTRICT,
    license_number TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    birth_place TEXT NOT NULL,
    birth_date TEXT NOT NULL,
    gender TEXT NOT NULL CHECK (gender IN ('MALE', 'FEMALE')),
    height_cm INTEGER NOT NULL CHECK (height_cm > 0),
    occupation TEXT NOT NULL,
    valid_until TEXT,
    photo TEXT,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_licenses_created_at ON licenses(created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_licenses_owner_id ON licenses(owner_id);
`

// DropSchemaSQL removes both tables, licenses first for the foreign key
const DropSchemaSQL = `
DROP TABLE IF EXISTS licenses;
DROP TABLE IF EXISTS owners;
`
