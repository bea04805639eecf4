package domain

import "testing"

func TestTransitionPredicates(t *testing.T) {
	cases := []struct {
		from    AssetStatus
		issue   bool
		ret     bool
		dispose bool
	}{
		{StatusPOCreated, false, false, false},
		{StatusReceived, true, false, true},
		{StatusIssued, false, true, false},
		{StatusReturned, true, false, true},
		{StatusDisposed, false, false, false},
	}
	for _, c := range cases {
		if CanIssue(c.from) != c.issue {
			t.Errorf("CanIssue(%s) = %v, want %v", c.from, !c.issue, c.issue)
		}
		if CanReturn(c.from) != c.ret {
			t.Errorf("CanReturn(%s) = %v, want %v", c.from, !c.ret, c.ret)
		}
		if CanDispose(c.from) != c.dispose {
			t.Errorf("CanDispose(%s) = %v, want %v", c.from, !c.dispose, c.dispose)
		}
	}
}

func TestKnownRole(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleGA, RoleIT, RoleUser, RoleAudit} {
		if !KnownRole(r) {
			t.Errorf("KnownRole(%s) = false", r)
		}
	}
	if KnownRole("MANAGER") {
		t.Error("KnownRole(MANAGER) = true")
	}
}
