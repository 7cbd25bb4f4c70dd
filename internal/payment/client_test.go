package payment

import "testing"

func TestConfigured(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"live key", "pk_live_abc", true},
		{"test key", "pk_test_abc", true},
		{"empty", "", false},
		{"wrong prefix", "sk_live_abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewClient(tt.key, "sk_x").Configured(); got != tt.want {
				t.Errorf("Configured() with %q: expected %v, got %v", tt.key, tt.want, got)
			}
		})
	}
}

func TestReturnURL(t *testing.T) {
	got := ReturnURL("https://pages.example.com/", "c1", "d1")
	want := "https://pages.example.com/donate/c1/thank-you?donation_id=d1"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	t.Run("escapes identifiers", func(t *testing.T) {
		got := ReturnURL("https://pages.example.com", "c 1", "d&1")
		want := "https://pages.example.com/donate/c%201/thank-you?donation_id=d%261"
		if got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	})
}
