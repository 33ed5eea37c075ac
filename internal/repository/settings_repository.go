package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/eventhub-live/eventhub/internal/pricing"
)

// SettingsRepo reads and updates the platform-wide pricing rates.  The
// rates live in a single platform_settings row so admins can adjust
// them at runtime; when the row is absent the configured defaults
// apply.  Callers fetch rates per booking rather than caching them, so
// rate changes take effect for new bookings without a restart.
type SettingsRepo struct {
	db       *sql.DB
	defaults pricing.Rates
}

// NewSettingsRepo returns a SettingsRepo with fallback rates used when
// no settings row exists yet.
func NewSettingsRepo(db *sql.DB, defaults pricing.Rates) *SettingsRepo {
	return &SettingsRepo{db: db, defaults: defaults}
}

// PricingRates returns the current convenience-fee and tax rates.
func (r *SettingsRepo) PricingRates(ctx context.Context) (pricing.Rates, error) {
	const q = `SELECT convenience_fee_rate, tax_rate FROM platform_settings WHERE id = 1`
	var rates pricing.Rates
	err := r.db.QueryRowContext(ctx, q).Scan(&rates.ConvenienceFee, &rates.Tax)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.defaults, nil
		}
		return pricing.Rates{}, err
	}
	return rates, nil
}

// UpdatePricingRates stores new platform rates, creating the settings
// row on first use.
func (r *SettingsRepo) UpdatePricingRates(ctx context.Context, rates pricing.Rates) error {
	const q = `INSERT INTO platform_settings (id, convenience_fee_rate, tax_rate)
               VALUES (1, ?, ?)
               ON DUPLICATE KEY UPDATE convenience_fee_rate = VALUES(convenience_fee_rate),
                                       tax_rate = VALUES(tax_rate)`
	_, err := r.db.ExecContext(ctx, q, rates.ConvenienceFee, rates.Tax)
	return err
}
