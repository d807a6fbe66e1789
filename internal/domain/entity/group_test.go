package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMembers_DropsEmptyTokens(t *testing.T) {
	tests := []struct {
		raw  string
		want MemberList
	}{
		{raw: "", want: nil},
		{raw: "bob", want: MemberList{"bob"}},
		{raw: "bob,alice", want: MemberList{"bob", "alice"}},
		{raw: ",bob,,alice,", want: MemberList{"bob", "alice"}},
		{raw: ",,,", want: nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseMembers(tt.raw), "raw=%q", tt.raw)
	}
}

func TestMemberList_AddIsIdempotent(t *testing.T) {
	list := ParseMembers("")
	list = list.Add("bob")
	list = list.Add("bob")

	assert.Equal(t, "bob", list.String())
}

func TestMemberList_AddRemoveRoundTrip(t *testing.T) {
	for _, prior := range []string{"", "alice", "alice,carol"} {
		list := ParseMembers(prior)
		after := list.Add("bob").Remove("bob")
		assert.Equal(t, prior, after.String(), "prior=%q", prior)
	}
}

func TestMemberList_ExactTokenMatch(t *testing.T) {
	list := ParseMembers("bobby,alice")

	assert.False(t, list.Contains("bob"))
	assert.Equal(t, "bobby,alice", list.Remove("bob").String())
}

func TestMemberList_RemoveLastLeavesEmptyString(t *testing.T) {
	list := ParseMembers("bob")
	after := list.Remove("bob")

	assert.Equal(t, "", after.String())
	assert.Nil(t, after)
}

func TestMemberList_PreservesOrder(t *testing.T) {
	list := ParseMembers("carol,alice").Add("bob")

	assert.Equal(t, "carol,alice,bob", list.String())
	assert.Equal(t, "carol,bob", list.Remove("alice").String())
}
