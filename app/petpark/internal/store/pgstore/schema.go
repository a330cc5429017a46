package pgstore

// Schema 建表语句，幂等
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS pets (
		id                        BIGINT PRIMARY KEY,
		owner_id                  BIGINT NOT NULL,
		name                      VARCHAR(64) NOT NULL,
		level                     INT NOT NULL DEFAULT 1 CHECK (level >= 1),
		experience                BIGINT NOT NULL DEFAULT 0 CHECK (experience >= 0),
		mood                      INT NOT NULL DEFAULT 0,
		hunger                    INT NOT NULL DEFAULT 0,
		stamina                   INT NOT NULL DEFAULT 0,
		cleanliness               INT NOT NULL DEFAULT 0,
		health                    INT NOT NULL DEFAULT 0,
		skin_color                VARCHAR(32) NOT NULL DEFAULT 'default',
		background_color          VARCHAR(32) NOT NULL DEFAULT 'default',
		last_skin_change_at       TIMESTAMPTZ,
		last_background_change_at TIMESTAMPTZ,
		version                   BIGINT NOT NULL DEFAULT 1,
		created_at                TIMESTAMPTZ NOT NULL,
		updated_at                TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pets_owner ON pets (owner_id)`,

	`CREATE TABLE IF NOT EXISTS wallets (
		owner_id      BIGINT PRIMARY KEY,
		point_balance BIGINT NOT NULL DEFAULT 0 CHECK (point_balance >= 0),
		version       BIGINT NOT NULL DEFAULT 1,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS ledger_entries (
		id            BIGINT PRIMARY KEY,
		owner_id      BIGINT NOT NULL,
		delta         BIGINT NOT NULL CHECK (delta <> 0),
		balance_after BIGINT NOT NULL CHECK (balance_after >= 0),
		reason        VARCHAR(64) NOT NULL,
		ref_id        BIGINT NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_owner_created ON ledger_entries (owner_id, created_at DESC, id DESC)`,

	`CREATE TABLE IF NOT EXISTS interaction_rules (
		interaction_type VARCHAR(32) PRIMARY KEY,
		display_name     VARCHAR(50) NOT NULL,
		points_cost      BIGINT NOT NULL CHECK (points_cost >= 0),
		happiness_gain   INT NOT NULL CHECK (happiness_gain BETWEEN 0 AND 100),
		exp_gain         BIGINT NOT NULL CHECK (exp_gain >= 0),
		cooldown_minutes INT NOT NULL CHECK (cooldown_minutes >= 0),
		is_active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS level_up_tiers (
		id            BIGSERIAL PRIMARY KEY,
		min_level     INT NOT NULL,
		max_level     INT NOT NULL,
		formula_type  VARCHAR(16) NOT NULL,
		formula       VARCHAR(128) NOT NULL,
		reward_points BIGINT NOT NULL DEFAULT 0,
		description   VARCHAR(200) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS tier_set (
		id      INT PRIMARY KEY,
		version BIGINT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS interaction_history (
		id               BIGINT PRIMARY KEY,
		pet_id           BIGINT NOT NULL,
		interaction_type VARCHAR(32) NOT NULL,
		occurred_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_history_pet_type_time ON interaction_history (pet_id, interaction_type, occurred_at DESC)`,

	`CREATE TABLE IF NOT EXISTS game_plays (
		id            BIGINT PRIMARY KEY,
		pet_id        BIGINT NOT NULL,
		owner_id      BIGINT NOT NULL,
		game_type     VARCHAR(32) NOT NULL,
		exp_gained    BIGINT NOT NULL DEFAULT 0,
		points_gained BIGINT NOT NULL DEFAULT 0,
		played_at     TIMESTAMPTZ NOT NULL,
		adjusted_at   TIMESTAMPTZ
	)`,

	`CREATE TABLE IF NOT EXISTS color_options (
		id          BIGINT PRIMARY KEY,
		kind        VARCHAR(16) NOT NULL,
		name        VARCHAR(30) NOT NULL,
		hex         VARCHAR(9) NOT NULL,
		points_cost BIGINT NOT NULL DEFAULT 0,
		is_active   BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS sign_ins (
		owner_id      BIGINT NOT NULL,
		sign_date     DATE NOT NULL,
		streak        INT NOT NULL,
		reward_points BIGINT NOT NULL,
		PRIMARY KEY (owner_id, sign_date)
	)`,
}
