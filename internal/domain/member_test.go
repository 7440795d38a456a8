package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/apedo/eglise-console/internal/domain"
)

func TestMember_RoundTripKeepsBothNamings(t *testing.T) {
	in := domain.Member{
		ID:          4,
		FirstName:   "Marie",
		LastName:    "Kouassi",
		PhoneNumber: "0707070707",
		BirthDate:   "1985-02-10",
		MemberGroup: "Chorale",
	}

	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var wire map[string]any
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("unmarshal wire: %v", err)
	}
	for _, key := range []string{"memberGroup", "group"} {
		if wire[key] != "Chorale" {
			t.Errorf("%s = %v, want Chorale", key, wire[key])
		}
	}
	for _, key := range []string{"firstName", "firstname"} {
		if wire[key] != "Marie" {
			t.Errorf("%s = %v, want Marie", key, wire[key])
		}
	}
	if wire["dob"] != "1985-02-10" || wire["phone"] != "0707070707" {
		t.Errorf("legacy names missing: %v", wire)
	}

	var out domain.Member
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal member: %v", err)
	}
	if out != in {
		t.Errorf("round trip changed the record:\n got %+v\nwant %+v", out, in)
	}
}

func TestMember_ReadsLegacyNames(t *testing.T) {
	var m domain.Member
	err := json.Unmarshal([]byte(`{"id":2,"firstname":"Jean","lastname":"Dupont","dob":"1990-04-12","group":"Jeunesse","phone":"0102030405","baptismPlace":"Abidjan"}`), &m)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.FirstName != "Jean" || m.LastName != "Dupont" || m.BirthDate != "1990-04-12" ||
		m.MemberGroup != "Jeunesse" || m.PhoneNumber != "0102030405" || m.BaptismLocation != "Abidjan" {
		t.Errorf("legacy names not reconciled: %+v", m)
	}
}

func TestMember_CanonicalNameWins(t *testing.T) {
	var m domain.Member
	json.Unmarshal([]byte(`{"memberGroup":"Chorale","group":"Jeunesse"}`), &m)
	if m.MemberGroup != "Chorale" {
		t.Errorf("expected canonical memberGroup, got %q", m.MemberGroup)
	}
}

func TestMember_EmptyDatesAreNull(t *testing.T) {
	raw, _ := json.Marshal(domain.Member{FirstName: "Jean"})
	s := string(raw)
	for _, key := range []string{`"birthDate":null`, `"marriageDate":null`, `"arrivalDate":null`} {
		if !strings.Contains(s, key) {
			t.Errorf("expected %s in %s", key, s)
		}
	}
}

func TestDraftFromMember_RoundTrip(t *testing.T) {
	m := domain.Member{FirstName: "Paul", LastName: "Yao", MemberGroup: "Hommes", BirthDate: "1970-01-01", PhoneNumber: "0101010101"}
	if got := domain.DraftFromMember(m).Member(); got != m {
		t.Errorf("draft round trip: got %+v want %+v", got, m)
	}
}

func TestGenerateMatricule(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		got := domain.GenerateMatricule(now)
		if !strings.HasPrefix(got, "2024-") || len(got) != len("2024-1234") {
			t.Fatalf("unexpected matricule %q", got)
		}
	}
}

func TestSession_IsAdmin(t *testing.T) {
	cases := map[string]bool{"ADMIN": true, "ROLE_ADMIN": true, "SUPER_MEMBER": false, "": false}
	for role, want := range cases {
		if got := (&domain.Session{Role: role}).IsAdmin(); got != want {
			t.Errorf("IsAdmin(%q) = %v, want %v", role, got, want)
		}
	}
	var nilSession *domain.Session
	if nilSession.IsAdmin() {
		t.Error("nil session must not be admin")
	}
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2024-06-15", "2024-06-15T10:00:00Z", "2024-06-15T10:00:00.123"} {
		if _, ok := domain.ParseDate(s); !ok {
			t.Errorf("ParseDate(%q) failed", s)
		}
	}
	if _, ok := domain.ParseDate(""); ok {
		t.Error("empty date should not parse")
	}
}
