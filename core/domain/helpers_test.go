package domain

// plainSecret is a Password stand-in comparing plaintext directly, so tests
// exercise guard orderings without a real hasher.
type plainSecret struct {
	value string
}

func (p plainSecret) IsMatch(attempt string) bool { return p.value == attempt }

func (p plainSecret) Encoded() string { return "plain$" + p.value }

func mustTenant(t interface{ Fatalf(string, ...any) }, value string) TenantID {
	tenant, err := NewTenantID(value)
	if err != nil {
		t.Fatalf("NewTenantID(%q): %v", value, err)
	}
	return tenant
}

func mustUniqueName(t interface{ Fatalf(string, ...any) }, value string) UniqueName {
	name, err := NewUniqueName(value)
	if err != nil {
		t.Fatalf("NewUniqueName(%q): %v", value, err)
	}
	return name
}

func mustDisplayName(t interface{ Fatalf(string, ...any) }, value string) DisplayName {
	name, err := NewDisplayName(value)
	if err != nil {
		t.Fatalf("NewDisplayName(%q): %v", value, err)
	}
	return name
}
