package factstore

import "context"

type seedRow struct {
	industry string
	category string
	content  string
}

var seedRows = []seedRow{
	{"SAAS", CategoryLegal, "Terms of service and privacy policy compliant with GDPR/CCPA"},
	{"SAAS", CategoryLegal, "Data processing agreements for any subprocessors"},
	{"SAAS", CategoryCosts, "$8,000-$40,000 for MVP development and first-year hosting"},
	{"SAAS", CategoryTools, "Stripe Billing for subscription management"},
	{"SAAS", CategoryTools, "PostHog or Amplitude for product analytics"},

	{"ECOMMERCE", CategoryLegal, "Sales tax registration in nexus states"},
	{"ECOMMERCE", CategoryLegal, "Consumer protection and returns policy disclosures"},
	{"ECOMMERCE", CategoryCosts, "$5,000-$25,000 for storefront, initial inventory, and packaging"},
	{"ECOMMERCE", CategoryTools, "Shopify or WooCommerce storefront"},
	{"ECOMMERCE", CategoryTools, "ShipStation for fulfillment"},

	{"SERVICE", CategoryLegal, "Professional liability (errors and omissions) insurance"},
	{"SERVICE", CategoryLegal, "Client engagement contracts with scope and payment terms"},
	{"SERVICE", CategoryCosts, "$2,000-$10,000 for licensing, insurance, and basic tooling"},
	{"SERVICE", CategoryTools, "QuickBooks for invoicing and bookkeeping"},
	{"SERVICE", CategoryTools, "Calendly for client scheduling"},

	{"PHYSICAL", CategoryLegal, "Local business license and zoning clearance"},
	{"PHYSICAL", CategoryLegal, "Health department permit where food is handled"},
	{"PHYSICAL", CategoryCosts, "$10,000-$60,000 for equipment, deposits, and build-out"},
	{"PHYSICAL", CategoryTools, "Square point-of-sale"},

	{"MARKETPLACE", CategoryLegal, "Payment facilitation terms and seller agreements"},
	{"MARKETPLACE", CategoryCosts, "$15,000-$80,000 for two-sided platform build"},
	{"MARKETPLACE", CategoryTools, "Stripe Connect for split payments"},

	{"MOBILE_APP", CategoryLegal, "App store developer agreements and privacy labels"},
	{"MOBILE_APP", CategoryCosts, "$10,000-$50,000 for cross-platform v1"},
	{"MOBILE_APP", CategoryTools, "RevenueCat for in-app subscription management"},
}

// Seed loads the default fact rows. It is idempotent per database file:
// an already-populated store is left untouched.
func (s *Store) Seed(ctx context.Context) error {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM verified_facts`); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	for _, row := range seedRows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO verified_facts (industry, category, content) VALUES (?, ?, ?)`,
			row.industry, row.category, row.content); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
