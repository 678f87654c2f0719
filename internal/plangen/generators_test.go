package plangen

import (
	"strings"
	"testing"
)

func TestGenerateRisksPrioritiesSequential(t *testing.T) {
	risks := GenerateRisks("saas", 50000)
	if len(risks) != 5 {
		t.Fatalf("got %d risks, want 5", len(risks))
	}
	for i, r := range risks {
		if r.Priority != i+1 {
			t.Fatalf("risk %d has priority %d", i, r.Priority)
		}
	}
	for i := 1; i < len(risks); i++ {
		if riskScore(risks[i]) > riskScore(risks[i-1]) {
			t.Fatalf("risks not sorted by score: %d before %d", riskScore(risks[i-1]), riskScore(risks[i]))
		}
	}
}

func TestGenerateRisksLowBudgetRaisesFinancialProbability(t *testing.T) {
	find := func(risks []Risk) Risk {
		for _, r := range risks {
			if r.Category == "Financial" {
				return r
			}
		}
		t.Fatal("no financial risk generated")
		return Risk{}
	}
	if got := find(GenerateRisks("retail", 5000)).Probability; got != LevelHigh {
		t.Fatalf("low budget probability = %s, want High", got)
	}
	if got := find(GenerateRisks("retail", 50000)).Probability; got != LevelMedium {
		t.Fatalf("normal budget probability = %s, want Medium", got)
	}
}

func TestGenerateFinancialsShape(t *testing.T) {
	f := GenerateFinancials("saas", 30000)
	if len(f.Year1Monthly) != 12 {
		t.Fatalf("year 1 has %d months, want 12", len(f.Year1Monthly))
	}
	if len(f.Year2Quarterly) != 4 || len(f.Year3Quarterly) != 4 {
		t.Fatalf("quarterly shape %d/%d, want 4/4", len(f.Year2Quarterly), len(f.Year3Quarterly))
	}
	if len(f.Assumptions) == 0 {
		t.Fatal("no assumptions recorded")
	}
}

func TestGenerateFinancialsProfitDerivation(t *testing.T) {
	f := GenerateFinancials("ecommerce", 40000)
	check := func(entries []FinancialProjection) {
		for _, e := range entries {
			if e.Profit != e.Revenue-e.Costs {
				t.Fatalf("%s: profit %f != revenue %f - costs %f", e.Period, e.Profit, e.Revenue, e.Costs)
			}
			if e.Customers < 0 {
				t.Fatalf("%s: negative customers %d", e.Period, e.Customers)
			}
		}
	}
	check(f.Year1Monthly)
	check(f.Year2Quarterly)
	check(f.Year3Quarterly)
}

func TestGenerateFinancialsRevenueCompounds(t *testing.T) {
	f := GenerateFinancials("service", 20000)
	for i := 1; i < len(f.Year1Monthly); i++ {
		if f.Year1Monthly[i].Revenue <= f.Year1Monthly[i-1].Revenue {
			t.Fatalf("revenue not growing at month %d", i+1)
		}
	}
	if f.Year1Monthly[0].Revenue != 2000 {
		t.Fatalf("month 1 revenue %f, want 2000", f.Year1Monthly[0].Revenue)
	}
}

func TestGenerateMarketingChannelMixes(t *testing.T) {
	saas := GenerateMarketing("saas", 30000)
	if len(saas.Channels) != 4 {
		t.Fatalf("saas channels = %d, want 4", len(saas.Channels))
	}
	food := GenerateMarketing("food_beverage", 30000)
	foundLocal := false
	for _, ch := range food.Channels {
		if strings.Contains(ch.Channel, "Local") {
			foundLocal = true
		}
	}
	if !foundLocal {
		t.Fatal("food and beverage mix should include a local channel")
	}
}

func TestGenerateRoadmapValidDAG(t *testing.T) {
	for _, timeline := range []string{"", "3 months", "6 months", "1 year", "2 years"} {
		ms := GenerateRoadmap("saas", timeline)
		if len(ms) != 5 {
			t.Fatalf("timeline %q: %d milestones, want 5", timeline, len(ms))
		}
		if err := ValidateRoadmap(ms); err != nil {
			t.Fatalf("timeline %q: %v", timeline, err)
		}
		for _, m := range ms {
			if m.DurationWeeks < 1 {
				t.Fatalf("timeline %q: milestone %s has duration %d", timeline, m.ID, m.DurationWeeks)
			}
		}
	}
}

func TestGenerateRoadmapScalesWithTimeline(t *testing.T) {
	short := GenerateRoadmap("retail", "3 months")
	long := GenerateRoadmap("retail", "2 years")
	if short[4].DurationWeeks >= long[4].DurationWeeks {
		t.Fatalf("short %d weeks should be less than long %d weeks", short[4].DurationWeeks, long[4].DurationWeeks)
	}
}

func TestValidateRoadmapRejectsBadDeps(t *testing.T) {
	if err := ValidateRoadmap([]Milestone{{ID: "a", DependsOn: []string{"missing"}}}); err == nil {
		t.Fatal("unknown dependency accepted")
	}
	if err := ValidateRoadmap([]Milestone{{ID: "a", DependsOn: []string{"a"}}}); err == nil {
		t.Fatal("self dependency accepted")
	}
}

func TestParseBudgetUSD(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"$10,000", 10000},
		{"10k", 10000},
		{"10k-25k", 17500},
		{"under 50k", 50000},
		{"1.5m", 1500000},
		{"10-25", 17500},
		{"", DefaultBudgetUSD},
		{"whatever it takes", DefaultBudgetUSD},
	}
	for _, tc := range cases {
		if got := ParseBudgetUSD(tc.in); got != tc.want {
			t.Errorf("ParseBudgetUSD(%q) = %f, want %f", tc.in, got, tc.want)
		}
	}
}
