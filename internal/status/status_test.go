package status

import "testing"

func TestMapToBackend(t *testing.T) {
	cases := []struct {
		in   string
		want Canonical
	}{
		{"assigned", InProgress},
		{"offer_sent", InProgress},
		{"offer_accepted", InProgress},
		{"scheduled", InProgress},
		{"in_progress", InProgress},
		{"offer_rejected", Cancelled},
		{"partially_done", PartiallyDone},
		{"completed", Completed},
		{"cancelled", Cancelled},
		{"pending", Pending},
		{"garbage", Pending},
		{"", Pending},
		{"COMPLETED", Pending},
	}
	for _, tc := range cases {
		if got := MapToBackend(tc.in); got != tc.want {
			t.Errorf("MapToBackend(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMapToBackendIsTotal(t *testing.T) {
	inputs := []string{"", " ", "null", "undefined", "in progress", "☃", "offer_sent ", "cancelled\n"}
	for _, in := range inputs {
		got := MapToBackend(in)
		if !IsCanonical(string(got)) {
			t.Fatalf("MapToBackend(%q) returned non-canonical %q", in, got)
		}
	}
}

func TestResolveFlagsUnknown(t *testing.T) {
	if r := Resolve("pending"); !r.Known || r.Status != Pending {
		t.Fatalf("explicit pending: got %+v", r)
	}
	if r := Resolve("garbage"); r.Known || r.Status != Pending {
		t.Fatalf("unknown status: got %+v", r)
	}
}

func TestTranslatedLabel(t *testing.T) {
	catalog := map[string]string{
		"status.pending":   "Pending",
		"status.completed": "Completed",
	}
	translate := func(key string) string {
		if v, ok := catalog[key]; ok {
			return v
		}
		return key
	}

	if got := TranslatedLabel("offer_sent", translate); got != "Pending" {
		t.Fatalf("offer_sent label = %q, want Pending", got)
	}
	if got := TranslatedLabel("completed", translate); got != "Completed" {
		t.Fatalf("completed label = %q", got)
	}
	if got := TranslatedLabel("scheduled", translate); got != "scheduled" {
		t.Fatalf("missing translation should fall back to raw status, got %q", got)
	}
	if got := TranslatedLabel("scheduled", func(string) string { return "" }); got != "scheduled" {
		t.Fatalf("empty translation should fall back to raw status, got %q", got)
	}
	if got := TranslatedLabel("offer_sent", nil); got != "pending" {
		t.Fatalf("nil translator: got %q", got)
	}
}

func TestColor(t *testing.T) {
	if Color("completed") != "green" {
		t.Fatal("completed should be green")
	}
	if Color("whatever") != "gray" {
		t.Fatal("unknown should be gray")
	}
}

func TestAllUIIsKnown(t *testing.T) {
	seen := map[UI]bool{}
	for _, s := range AllUI() {
		if !IsKnownUI(string(s)) {
			t.Errorf("%q is not known", s)
		}
		seen[s] = true
	}
	if len(seen) != len(canonicalByUI) {
		t.Fatalf("AllUI has %d statuses, vocabulary has %d", len(seen), len(canonicalByUI))
	}
}
