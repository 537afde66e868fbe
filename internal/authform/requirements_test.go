package authform

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestPasswordRequirements_Length(t *testing.T) {
	for n := 0; n < 20; n++ {
		pw := strings.Repeat("a", n)
		reqs := PasswordRequirements(pw)
		assert.Equal(t, RequirementLength, reqs[0].ID)
		assert.Equal(t, n >= 12, reqs[0].Satisfied, "length %d", n)
	}
}

func TestPasswordRequirements_CountsRunesNotBytes(t *testing.T) {
	// 12 runes, 24 bytes.
	pw := strings.Repeat("é", 12)
	assert.True(t, PasswordRequirements(pw)[0].Satisfied)
	assert.False(t, PasswordRequirements(strings.Repeat("é", 11))[0].Satisfied)
}

func TestPasswordRequirements_AllSatisfied(t *testing.T) {
	got := PasswordRequirements("Abcdefghijk1!")
	want := []Requirement{
		{ID: RequirementLength, Text: "At least 12 characters long", Satisfied: true},
		{ID: RequirementUppercase, Text: "At least one uppercase letter", Satisfied: true},
		{ID: RequirementLowercase, Text: "At least one lowercase letter", Satisfied: true},
		{ID: RequirementNumber, Text: "At least one number", Satisfied: true},
		{ID: RequirementSpecial, Text: "At least one special character", Satisfied: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PasswordRequirements mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, PasswordAcceptable("Abcdefghijk1!"))
}

func TestPasswordRequirements_Individual(t *testing.T) {
	tests := []struct {
		name     string
		password string
		id       RequirementID
		want     bool
	}{
		{"no uppercase", "abcdefghijk1!", RequirementUppercase, false},
		{"uppercase", "Z", RequirementUppercase, true},
		{"no lowercase", "ABCDEFGHIJK1!", RequirementLowercase, false},
		{"lowercase", "z", RequirementLowercase, true},
		{"no digit", "Abcdefghijkl!", RequirementNumber, false},
		{"digit", "7", RequirementNumber, true},
		{"no symbol", "Abcdefghijk12", RequirementSpecial, false},
		{"space is a symbol", "a b", RequirementSpecial, true},
		{"non-ascii letter is a symbol", "ß", RequirementSpecial, true},
		{"non-ascii upper is not uppercase", "Ä", RequirementUppercase, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, req := range PasswordRequirements(tt.password) {
				if req.ID == tt.id {
					assert.Equal(t, tt.want, req.Satisfied)
					return
				}
			}
			t.Fatalf("requirement %s not reported", tt.id)
		})
	}
}

func TestPasswordAcceptable_RejectsPartial(t *testing.T) {
	assert.False(t, PasswordAcceptable("short"))
	assert.False(t, PasswordAcceptable(""))
	assert.False(t, RequirementsMet(nil))
}

func TestPasswordsMatch(t *testing.T) {
	assert.Equal(t, MatchUnknown, PasswordsMatch("x", ""))
	assert.Equal(t, MatchFalse, PasswordsMatch("x", "y"))
	assert.Equal(t, MatchTrue, PasswordsMatch("x", "x"))
	assert.Equal(t, MatchUnknown, PasswordsMatch("", ""))
	assert.Equal(t, "unknown", MatchUnknown.String())
}
