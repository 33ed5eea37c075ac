package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema holds the CREATE TABLE statements applied at startup.  Each
// statement is idempotent so repeated boots are harmless.  Amount
// columns use DECIMAL(10,2); remaining counts are UNSIGNED so the
// database itself refuses to go below zero.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(20)  NOT NULL DEFAULT 'CUSTOMER',
		is_active     TINYINT(1)   NOT NULL DEFAULT 1,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY idx_refresh_tokens_user (user_id),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS events (
		id              BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		organizer_id    BIGINT UNSIGNED NOT NULL,
		title           VARCHAR(255) NOT NULL,
		description     TEXT NOT NULL,
		venue           VARCHAR(255) NOT NULL,
		category        VARCHAR(100) NOT NULL DEFAULT '',
		date            DATETIME NOT NULL,
		base_price      DECIMAL(10,2) NOT NULL DEFAULT 0,
		capacity        INT UNSIGNED NOT NULL DEFAULT 0,
		is_published    TINYINT(1) NOT NULL DEFAULT 0,
		booking_open    TINYINT(1) NOT NULL DEFAULT 1,
		is_cancelled    TINYINT(1) NOT NULL DEFAULT 0,
		approval_status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_events_organizer (organizer_id),
		KEY idx_events_public (is_published, approval_status, date),
		CONSTRAINT fk_events_organizer FOREIGN KEY (organizer_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS event_tiers (
		id                 BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		event_id           BIGINT UNSIGNED NOT NULL,
		name               VARCHAR(100) NOT NULL,
		unit_price         DECIMAL(10,2) NOT NULL DEFAULT 0,
		total_quantity     INT UNSIGNED NOT NULL DEFAULT 0,
		remaining_quantity INT UNSIGNED NOT NULL DEFAULT 0,
		position           INT UNSIGNED NOT NULL DEFAULT 0,
		UNIQUE KEY uq_event_tiers_name (event_id, name),
		CONSTRAINT fk_event_tiers_event FOREIGN KEY (event_id) REFERENCES events (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id               BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		booking_ref      VARCHAR(40) NOT NULL,
		user_id          BIGINT UNSIGNED NOT NULL,
		event_id         BIGINT UNSIGNED NOT NULL,
		tier_name        VARCHAR(100) NOT NULL,
		quantity         INT UNSIGNED NOT NULL,
		price_per_ticket DECIMAL(10,2) NOT NULL,
		convenience_fee  DECIMAL(10,2) NOT NULL DEFAULT 0,
		tax              DECIMAL(10,2) NOT NULL DEFAULT 0,
		total_amount     DECIMAL(10,2) NOT NULL,
		status           VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		payment_id       VARCHAR(100) NULL,
		created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_bookings_ref (booking_ref),
		KEY idx_bookings_user (user_id),
		KEY idx_bookings_event (event_id, status),
		CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_bookings_event FOREIGN KEY (event_id) REFERENCES events (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS platform_settings (
		id                   TINYINT UNSIGNED NOT NULL PRIMARY KEY,
		convenience_fee_rate DECIMAL(6,4) NOT NULL DEFAULT 0.0500,
		tax_rate             DECIMAL(6,4) NOT NULL DEFAULT 0.1800,
		updated_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates all tables the application needs.  It is called
// once at startup, before any repository is used.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
