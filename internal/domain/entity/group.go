package entity

import "strings"

// Group is an FTP group row. Members carries supplementary membership as
// an ordered list serialized to a single comma-delimited column, the
// format the FTP daemon expects. Primary membership is not recorded here;
// it lives on each user row's gid column.
type Group struct {
	GID     int64
	Name    string
	Members MemberList
}

// MemberList is the ordered set of login names stored in a group's
// members column. Operations keep the list free of duplicates and empty
// tokens so the serialized form never grows stray commas.
type MemberList []string

// ParseMembers splits a comma-delimited members column into a MemberList,
// dropping empty tokens left behind by leading, trailing or doubled commas.
func ParseMembers(raw string) MemberList {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	list := make(MemberList, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		list = append(list, part)
	}

	if len(list) == 0 {
		return nil
	}

	return list
}

// String serializes the list back to the comma-delimited column format.
func (m MemberList) String() string {
	return strings.Join(m, ",")
}

// Contains reports whether login is present as an exact token.
// Substring matches do not count: "bob" is not a member of "bobby,alice".
func (m MemberList) Contains(login string) bool {
	for _, member := range m {
		if member == login {
			return true
		}
	}

	return false
}

// Add appends login unless it is already present. Idempotent.
func (m MemberList) Add(login string) MemberList {
	if login == "" || m.Contains(login) {
		return m
	}

	return append(m, login)
}

// Remove deletes the exact token login, preserving the order of the rest.
func (m MemberList) Remove(login string) MemberList {
	if login == "" {
		return m
	}

	out := m[:0:0]
	for _, member := range m {
		if member == login {
			continue
		}
		out = append(out, member)
	}

	if len(out) == 0 {
		return nil
	}

	return out
}
