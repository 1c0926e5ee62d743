package risk

import "testing"

func TestCalculateUserRisk(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		user UserContext
		want int
	}{
		{name: "regular user", user: UserContext{Email: "dev@example.com"}, want: 0},
		{name: "admin", user: UserContext{IsAdmin: true}, want: 25},
		{name: "super admin does not stack with admin", user: UserContext{IsAdmin: true, IsSuperAdmin: true}, want: 40},
		{name: "external", user: UserContext{IsExternal: true}, want: 30},
		{name: "vp role", user: UserContext{Role: "VP of Sales"}, want: 20},
		{name: "cto in title", user: UserContext{Role: "Chief Technology Officer (CTO)"}, want: 20},
		{name: "engineer", user: UserContext{Role: "Senior Engineer"}, want: 0},
		{name: "hr department", user: UserContext{Department: "Human Resources (HR)"}, want: 15},
		{name: "hr is a whole word", user: UserContext{Department: "Three Rivers"}, want: 0},
		{name: "finance", user: UserContext{Department: "Corporate Finance"}, want: 15},
		{
			name: "capped",
			user: UserContext{IsSuperAdmin: true, IsExternal: true, Role: "CEO", Department: "Legal"},
			want: 100,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CalculateUserRisk(tc.user); got.TotalScore != tc.want {
				t.Fatalf("CalculateUserRisk() = %d, want %d (concerns %v)", got.TotalScore, tc.want, got.Concerns)
			}
		})
	}
}

func TestCalculateUserRisk_SuperAdminConcernIsCritical(t *testing.T) {
	t.Parallel()

	got := CalculateUserRisk(UserContext{Email: "root@example.com", IsSuperAdmin: true})
	if len(got.Concerns) != 1 || got.Concerns[0].Kind != KindSuperAdminAuthorizer || got.Concerns[0].Severity != SeverityCritical {
		t.Fatalf("Concerns = %v, want one critical super admin concern", got.Concerns)
	}
}
