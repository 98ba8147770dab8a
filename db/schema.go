package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables and seeds the package catalog.
// Safe to call on every start.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, seedPackagePlans); err != nil {
		return fmt.Errorf("failed to seed package plans: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'creator', 'admin')),
    photo_url TEXT,
    photo_key TEXT,
    bio TEXT NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '',
    participated_count INT NOT NULL DEFAULT 0 CHECK (participated_count >= 0),
    won_count INT NOT NULL DEFAULT 0 CHECK (won_count >= 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT users_email_key UNIQUE (email)
);

CREATE INDEX IF NOT EXISTS idx_users_ranking ON users (won_count DESC, created_at ASC, id ASC);

CREATE TABLE IF NOT EXISTS contests (
    id SERIAL PRIMARY KEY,
    creator_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    slug TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    task_instruction TEXT NOT NULL DEFAULT '',
    image_url TEXT,
    image_key TEXT,
    type TEXT NOT NULL CHECK (type IN ('Logo Design', 'Article Writing', 'Web Design', 'UI/UX', 'Image Design')),
    price NUMERIC(12, 2) NOT NULL DEFAULT 0 CHECK (price >= 0),
    prize NUMERIC(12, 2) NOT NULL DEFAULT 0 CHECK (prize >= 0),
    deadline TIMESTAMPTZ NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'confirmed', 'rejected')),
    winner_id INT REFERENCES users(id) ON DELETE SET NULL,
    winner_declared_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_contests_status ON contests (status);
CREATE INDEX IF NOT EXISTS idx_contests_creator ON contests (creator_id);
CREATE INDEX IF NOT EXISTS idx_contests_winner ON contests (winner_id) WHERE winner_id IS NOT NULL;

CREATE TABLE IF NOT EXISTS contest_participants (
    contest_id INT NOT NULL REFERENCES contests(id) ON DELETE CASCADE,
    user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    payment_ref TEXT NOT NULL,
    joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT contest_participants_pkey PRIMARY KEY (contest_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_contest_participants_user ON contest_participants (user_id);

CREATE TABLE IF NOT EXISTS submissions (
    id SERIAL PRIMARY KEY,
    contest_id INT NOT NULL,
    user_id INT NOT NULL,
    payload TEXT NOT NULL,
    submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT submissions_contest_user_key UNIQUE (contest_id, user_id),
    CONSTRAINT submissions_participant_fkey FOREIGN KEY (contest_id, user_id)
        REFERENCES contest_participants (contest_id, user_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS package_plans (
    id SERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    price NUMERIC(12, 2) NOT NULL CHECK (price >= 0),
    contest_limit INT NOT NULL CHECK (contest_limit = -1 OR contest_limit > 0),
    duration_days INT NOT NULL CHECK (duration_days > 0),
    features TEXT[] NOT NULL DEFAULT '{}',
    color TEXT NOT NULL DEFAULT '',
    popular BOOLEAN NOT NULL DEFAULT FALSE,
    CONSTRAINT package_plans_name_key UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS creator_packages (
    id SERIAL PRIMARY KEY,
    user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    plan_id INT NOT NULL REFERENCES package_plans(id),
    plan_name TEXT NOT NULL,
    contest_limit INT NOT NULL,
    contests_used INT NOT NULL DEFAULT 0 CHECK (contests_used >= 0),
    payment_ref TEXT NOT NULL,
    purchased_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_creator_packages_user ON creator_packages (user_id, purchased_at DESC);

CREATE TABLE IF NOT EXISTS payments (
    id SERIAL PRIMARY KEY,
    reference TEXT NOT NULL,
    user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    purpose TEXT NOT NULL CHECK (purpose IN ('contest_entry', 'package')),
    subject_id INT NOT NULL,
    amount NUMERIC(12, 2) NOT NULL CHECK (amount >= 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT payments_reference_key UNIQUE (reference)
);
`

const seedPackagePlans = `
INSERT INTO package_plans (name, description, price, contest_limit, duration_days, features, color, popular)
VALUES
    ('Basic', 'For creators getting started', 9.99, 3, 30,
        ARRAY['Create up to 3 contests', 'Basic analytics', 'Email support'], 'blue', FALSE),
    ('Pro', 'For regular contest hosts', 24.99, 10, 30,
        ARRAY['Create up to 10 contests', 'Advanced analytics', 'Priority support', 'Featured listing'], 'purple', TRUE),
    ('Enterprise', 'Unlimited contests for teams', 79.99, -1, 30,
        ARRAY['Unlimited contests', 'Full analytics suite', 'Dedicated support', 'Featured listing', 'Custom branding'], 'gold', FALSE)
ON CONFLICT (name) DO NOTHING;
`
